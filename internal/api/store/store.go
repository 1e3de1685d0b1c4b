// Package store keeps the stacks of the in-process agent.
package store

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/balaji-balu/lizzy-client/pkg/model"
)

// Failure is a canned error response.
type Failure struct {
	Code int
	Body string
}

// Store is an in-memory stack table. Scripted statuses are handed out one
// per GET; the last one sticks.
type Store struct {
	mu       sync.Mutex
	stacks   map[string]model.Stack
	regions  map[string]string
	scripts  map[string][]string
	traffic  map[string]float64
	failures []Failure
	clock    func() time.Time
}

func New() *Store {
	return &Store{
		stacks:  make(map[string]model.Stack),
		regions: make(map[string]string),
		scripts: make(map[string][]string),
		traffic: make(map[string]float64),
		clock:   time.Now,
	}
}

// Put adds or replaces a stack and returns it as stored.
func (s *Store) Put(stack model.Stack, region string) model.Stack {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stack.CreationTime.IsZero() {
		stack.CreationTime = model.Timestamp{Time: s.clock().UTC()}
	}
	s.stacks[stack.ID()] = stack
	s.regions[stack.ID()] = region
	return stack
}

// Script queues the statuses GET returns for id. An empty string makes the
// agent answer without a status field.
func (s *Store) Script(id string, statuses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[id] = append(s.scripts[id], statuses...)
}

// FailNext makes the next requests fail, in order.
func (s *Store) FailNext(failures ...Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failures...)
}

// TakeFailure pops the next canned failure.
func (s *Store) TakeFailure() (Failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.failures) == 0 {
		return Failure{}, false
	}
	f := s.failures[0]
	s.failures = s.failures[1:]
	return f, true
}

// Get returns the stack, advancing its status script.
func (s *Store) Get(id string) (model.Stack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack, ok := s.stacks[id]
	if !ok {
		return model.Stack{}, false
	}
	if script := s.scripts[id]; len(script) > 0 {
		stack.Status = script[0]
		if len(script) > 1 {
			s.scripts[id] = script[1:]
		}
		s.stacks[id] = stack
	}
	return stack, true
}

// List returns the stacks whose name or id is in references, all of them
// when references is empty, sorted by creation time.
func (s *Store) List(references []string, region string) []model.Stack {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Stack
	for id, stack := range s.stacks {
		if region != "" && s.regions[id] != "" && s.regions[id] != region {
			continue
		}
		if len(references) > 0 && !slices.Contains(references, stack.StackName) && !slices.Contains(references, id) {
			continue
		}
		out = append(out, stack)
	}
	slices.SortFunc(out, func(a, b model.Stack) int {
		if c := a.CreationTime.Compare(b.CreationTime.Time); c != 0 {
			return c
		}
		return strings.Compare(a.ID(), b.ID())
	})
	return out
}

// Delete marks the stack as removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack, ok := s.stacks[id]
	if !ok {
		return false
	}
	stack.Status = model.StatusDeleteComplete
	s.stacks[id] = stack
	delete(s.scripts, id)
	return true
}

// SetTraffic records the weight of the stack.
func (s *Store) SetTraffic(id string, weight float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stacks[id]; !ok {
		return false
	}
	s.traffic[id] = weight
	return true
}

// Traffic is the recorded weight of the stack.
func (s *Store) Traffic(id string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stacks[id]; !ok {
		return 0, false
	}
	return s.traffic[id], true
}

// Deleted reports whether the stack was removed.
func (s *Store) Deleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stacks[id].Status == model.StatusDeleteComplete
}
