package rl

import (
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

// StateActionMap stores action values per encoded state hash.
type StateActionMap struct {
	m    map[string]map[int]float64
	lock *sync.Mutex
}

// NewStateActionMap creates an empty value table.
func NewStateActionMap() *StateActionMap {
	return &StateActionMap{
		m:    make(map[string]map[int]float64),
		lock: new(sync.Mutex),
	}
}

// Get returns the value of (state, action).
func (s *StateActionMap) Get(state string, action int) (float64, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	actions, ok := s.m[state]
	if !ok {
		return 0, false
	}
	val, ok := actions[action]
	return val, ok
}

// Update sets the value of (state, action).
func (s *StateActionMap) Update(state string, action int, val float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.m[state]; !ok {
		s.m[state] = make(map[int]float64)
	}
	s.m[state][action] = val
}

// MaxQ returns the maximum action value at state.
func (s *StateActionMap) MaxQ(state string) (float64, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	actions, ok := s.m[state]
	if !ok || len(actions) == 0 {
		return 0, false
	}
	max := math.Inf(-1)
	for _, v := range actions {
		if v > max {
			max = v
		}
	}
	return max, true
}

// BestAction returns the highest valued action index below numActions.
// Unvisited actions count as zero; ties resolve to the lowest index.
func (s *StateActionMap) BestAction(state string, numActions int) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	actions := s.m[state]
	best := 0
	bestVal := math.Inf(-1)
	for i := 0; i < numActions; i++ {
		v := actions[i]
		if v > bestVal {
			best, bestVal = i, v
		}
	}
	return best
}

// Values returns the values of the first numActions actions at state,
// defaulting to zero for unvisited ones.
func (s *StateActionMap) Values(state string, numActions int) []float64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	actions := s.m[state]
	vals := make([]float64, numActions)
	for i := 0; i < numActions; i++ {
		vals[i] = actions[i]
	}
	return vals
}

// StateCount returns the number of distinct states seen.
func (s *StateActionMap) StateCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.m)
}

// HashState collapses an encoded feature vector into a table key. The
// features are quantized to two decimals first so that nearby continuous
// states share an entry.
func HashState(state []float64) string {
	h := fnv.New64a()
	for _, f := range state {
		fmt.Fprintf(h, "%.2f|", f)
	}
	return fmt.Sprintf("%x", h.Sum64())
}
