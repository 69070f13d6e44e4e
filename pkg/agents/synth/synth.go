// Package synth provides deterministic sample generation for analytics agents.
//
// Agents compute over synthetic interconnect data. Samples are seeded from
// the logical execution date and the agent name so that re-running a
// workflow for the same date reproduces the same figures.
package synth

import (
	"hash/fnv"
	"math/rand"
)

type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a sampler seeded by the execution date and agent name.
func NewSampler(executionDate, agentName string) *Sampler {
	h := fnv.New64a()
	_, _ = h.Write([]byte(executionDate))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(agentName))

	return &Sampler{rng: rand.New(rand.NewSource(int64(h.Sum64())))}
}

// IntBetween returns an integer in [low, high].
func (s *Sampler) IntBetween(low, high int) int {
	if high <= low {
		return low
	}

	return low + s.rng.Intn(high-low+1)
}

// FloatBetween returns a float in [low, high).
func (s *Sampler) FloatBetween(low, high float64) float64 {
	return low + s.rng.Float64()*(high-low)
}

// Percentage returns a percentage in [low, high) rounded to two decimals.
func (s *Sampler) Percentage(low, high float64) float64 {
	return Round2(s.FloatBetween(low, high))
}

// Pick returns one of the given choices.
func (s *Sampler) Pick(choices []string) string {
	if len(choices) == 0 {
		return ""
	}

	return choices[s.rng.Intn(len(choices))]
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
