package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflow_executions (
				id VARCHAR(255) PRIMARY KEY,
				status VARCHAR(50) NOT NULL CHECK (status IN ('running', 'completed', 'failed', 'cancelled')),
				execution_date VARCHAR(10) NOT NULL,
				requested_agents JSONB NOT NULL,
				parameters JSONB,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE,
				overall_progress INT NOT NULL DEFAULT 0,
				summary JSONB
			);

			CREATE INDEX idx_workflow_executions_status ON workflow_executions(status);
			CREATE INDEX idx_workflow_executions_execution_date ON workflow_executions(execution_date);
			CREATE INDEX idx_workflow_executions_started_at ON workflow_executions(started_at);

			CREATE TABLE workflow_steps (
				execution_id VARCHAR(255) NOT NULL REFERENCES workflow_executions(id) ON DELETE CASCADE,
				position INT NOT NULL,
				agent_name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('completed', 'failed')),
				start_time TIMESTAMP WITH TIME ZONE NOT NULL,
				end_time TIMESTAMP WITH TIME ZONE NOT NULL,
				result JSONB,
				error_message TEXT,
				PRIMARY KEY (execution_id, position)
			);

			CREATE INDEX idx_workflow_steps_execution_id ON workflow_steps(execution_id);
		`,
	}
}
