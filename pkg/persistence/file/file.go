// Package file provides file-based result store implementation for development and tests.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/carrierops/chorus/pkg/models"
	"github.com/carrierops/chorus/pkg/persistence"
)

const executionsDir = "executions"

// ResultStore implements persistence.ResultStore on the local file system,
// one JSON document per execution. Writes go through a temp file and rename
// so a concurrent reader never observes a partial record.
type ResultStore struct {
	root string
	mu   sync.RWMutex
}

// NewResultStore creates a file-backed result store rooted at the given
// directory. A "file://" prefix on the root is accepted and stripped. The
// root is created eagerly; a failure here surfaces through HealthCheck and
// the first persist.
func NewResultStore(root string) *ResultStore {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	_ = os.MkdirAll(filepath.Join(cleanRoot, executionsDir), 0o755)

	return &ResultStore{root: cleanRoot}
}

func (s *ResultStore) PersistExecution(ctx context.Context, execution *models.WorkflowExecution) error {
	if execution == nil || execution.ID == "" {
		return persistence.NewExecutionError("Persist", "", persistence.ErrInvalidExecution)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, executionsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	finalPath := filepath.Join(dir, execution.ID+".json")
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return persistence.NewExecutionError("Persist", execution.ID, err)
	}

	return nil
}

func (s *ResultStore) ExecutionByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readExecution(id)
}

func (s *ResultStore) Executions(ctx context.Context) ([]*models.WorkflowExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.root, executionsDir)

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil || len(jsonFiles) == 0 {
		return []*models.WorkflowExecution{}, nil
	}

	executions := make([]*models.WorkflowExecution, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := strings.TrimSuffix(file, ".json")

		execution, err := s.readExecution(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load execution %s: %w", id, err)
		}

		executions = append(executions, execution)
	}

	sort.Slice(executions, func(i, j int) bool {
		return executions[i].StartedAt.After(executions[j].StartedAt)
	})

	return executions, nil
}

func (s *ResultStore) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based storage there is nothing to clean up.
func (s *ResultStore) Close(_ context.Context) error {
	return nil
}

func (s *ResultStore) readExecution(id string) (*models.WorkflowExecution, error) {
	path := filepath.Join(s.root, executionsDir, id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewExecutionError("GetByID", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	var execution models.WorkflowExecution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, persistence.NewExecutionError("GetByID", id, err)
	}

	return &execution, nil
}
