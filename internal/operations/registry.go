package operations

import (
	"fmt"
	"sync"
)

// Registry manages registered pipeline steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string // Maintains registration order
}

// NewRegistry creates an empty Step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
		order: make([]string, 0),
	}
}

// Register adds a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a Step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, fmt.Errorf("step with ID %s not found", id)
	}
	return step, nil
}

// Has checks if a Step is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.steps[id]
	return exists
}

// ListIDs returns all registered Step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.steps)
}

// Plan returns the requested steps plus everything they depend on, in
// dependency order. Ties keep registration order. An empty request plans
// every registered step.
func (r *Registry) Plan(ids []string) ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make(map[string]bool, len(r.steps))
	if len(ids) == 0 {
		for id := range r.steps {
			selected[id] = true
		}
	}
	var include func(id string) error
	include = func(id string) error {
		if selected[id] {
			return nil
		}
		step, ok := r.steps[id]
		if !ok {
			return NewNotFoundError(id)
		}
		selected[id] = true
		for _, dep := range step.GetDependencies() {
			if err := include(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, id := range ids {
		if err := include(id); err != nil {
			return nil, err
		}
	}

	// Kahn's algorithm over the selected subgraph
	graph := make(map[string][]string)
	inDegree := make(map[string]int)
	for id := range selected {
		for _, dep := range r.steps[id].GetDependencies() {
			if _, exists := r.steps[dep]; !exists {
				return nil, NewDependencyError(id, dep, fmt.Sprintf("depends on unregistered step %s", dep))
			}
			graph[dep] = append(graph[dep], id)
			inDegree[id]++
		}
	}

	queue := make([]string, 0, len(selected))
	for _, id := range r.order {
		if selected[id] && inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	ordered := make([]Step, 0, len(selected))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		ordered = append(ordered, r.steps[current])

		released := make(map[string]bool)
		for _, dependent := range graph[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				released[dependent] = true
			}
		}
		for _, id := range r.order {
			if released[id] {
				queue = append(queue, id)
			}
		}
	}

	if len(ordered) != len(selected) {
		return nil, NewFatalError("dependency cycle detected", nil)
	}
	return ordered, nil
}
