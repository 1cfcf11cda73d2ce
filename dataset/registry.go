package dataset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/revelaction/absaset/adapter"
	"github.com/revelaction/absaset/derive"
)

var (
	// ErrNotFound is returned for unknown dataset names.
	ErrNotFound = errors.New("dataset not found")

	// ErrUnsupportedTask is returned when a dataset has no rules for a task.
	ErrUnsupportedTask = errors.New("task not supported by dataset")
)

// Entry describes a dataset: where its resources live, which adapter reads
// them and how each supported task is derived.
type Entry struct {
	Name string

	// Locators relative to the data directory
	Locators adapter.Locators

	New func(adapter.Deps) adapter.Adapter

	Tasks map[derive.Task]derive.Rules
}

// SupportedTasks returns the tasks of the entry in a fixed order.
func (e Entry) SupportedTasks() []derive.Task {
	tasks := []derive.Task{}
	for _, t := range derive.Tasks() {
		if _, ok := e.Tasks[t]; ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Rules returns the derivation rules of task.
func (e Entry) Rules(task derive.Task) (derive.Rules, error) {
	if _, err := derive.ParseTask(string(task)); err != nil {
		return derive.Rules{}, err
	}
	rules, ok := e.Tasks[task]
	if !ok {
		return derive.Rules{}, fmt.Errorf("%w: %s does not support %s", ErrUnsupportedTask, e.Name, task)
	}
	return rules, nil
}

// Registry maps dataset names to entries.
type Registry struct {
	entries map[string]Entry
}

func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: map[string]Entry{}}
	for _, e := range entries {
		r.Register(e)
	}
	return r
}

// Register adds e, replacing any entry of the same name.
func (r *Registry) Register(e Entry) {
	r.entries[e.Name] = e
}

func (r *Registry) Resolve(name string) (Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
