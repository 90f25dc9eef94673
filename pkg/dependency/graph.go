// Package dependency validates declared question dependencies and compiles
// them into a graph keyed by target question, the structure a client
// evaluator walks to decide visibility, enablement and requiredness.
package dependency

import (
	"github.com/goliatone/go-formdef/pkg/model"
)

// Graph is the resolved, acyclic dependency graph of a form.
type Graph struct {
	byTarget map[string][]model.DependencyEdge
	targets  []string
}

// For returns the ordered edges that affect target. The slice is a copy and
// never nil.
func (g *Graph) For(target string) []model.DependencyEdge {
	if g == nil {
		return []model.DependencyEdge{}
	}
	edges := g.byTarget[target]
	out := make([]model.DependencyEdge, len(edges))
	copy(out, edges)
	return out
}

// Targets lists the questions controlled by at least one dependency, in the
// order they were first declared.
func (g *Graph) Targets() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.targets...)
}

// Len reports the number of edges in the graph.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	total := 0
	for _, edges := range g.byTarget {
		total += len(edges)
	}
	return total
}

// Resolve validates deps against the known question ids and builds the
// graph. Checks run per dependency in declaration order: unknown source or
// target (ReferenceError), self-dependency and unsupported action
// (ConfigurationError). Cycle detection runs last over the whole graph.
//
// Every dependency must have TargetQuestionID set; the compiler fills it in
// for dependencies declared on their owning question.
func Resolve(deps []model.QuestionDependency, questionIDs []string) (*Graph, error) {
	known := make(map[string]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		known[id] = struct{}{}
	}

	graph := &Graph{
		byTarget: make(map[string][]model.DependencyEdge),
	}
	adjacency := make(map[string][]string)

	for _, dep := range deps {
		if _, ok := known[dep.SourceQuestionID]; !ok {
			return nil, &model.ReferenceError{Dependency: dep, MissingID: dep.SourceQuestionID}
		}
		if _, ok := known[dep.TargetQuestionID]; !ok {
			return nil, &model.ReferenceError{Dependency: dep, MissingID: dep.TargetQuestionID}
		}
		if dep.SourceQuestionID == dep.TargetQuestionID {
			return nil, model.Configf(dep.TargetQuestionID, "question cannot depend on itself (%s)", dep)
		}
		if !dep.Action.Valid() {
			return nil, model.Configf(dep.TargetQuestionID, "unsupported dependency action %q", dep.Action)
		}

		if _, seen := graph.byTarget[dep.TargetQuestionID]; !seen {
			graph.targets = append(graph.targets, dep.TargetQuestionID)
		}
		graph.byTarget[dep.TargetQuestionID] = append(graph.byTarget[dep.TargetQuestionID], model.DependencyEdge{
			SourceQuestionID: dep.SourceQuestionID,
			TriggerValue:     dep.TriggerValue,
			Action:           dep.Action,
		})
		if !contains(adjacency[dep.SourceQuestionID], dep.TargetQuestionID) {
			adjacency[dep.SourceQuestionID] = append(adjacency[dep.SourceQuestionID], dep.TargetQuestionID)
		}
	}

	if path := findCycle(adjacency, questionIDs); path != nil {
		return nil, &model.CycleError{Path: path}
	}
	return graph, nil
}

const (
	white = iota
	gray
	black
)

// findCycle runs a depth-first traversal from each question in form order.
// Gray nodes are on the recursion stack; reaching one closes a cycle. The
// returned path starts and ends at the same id.
func findCycle(adjacency map[string][]string, order []string) []string {
	color := make(map[string]int, len(order))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = gray
		stack = append(stack, id)
		for _, next := range adjacency[id] {
			switch color[next] {
			case gray:
				start := indexOf(stack, next)
				path := append([]string(nil), stack[start:]...)
				return append(path, next)
			case white:
				if path := visit(next); path != nil {
					return path
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, id := range order {
		if color[id] != white {
			continue
		}
		if path := visit(id); path != nil {
			return path
		}
	}
	return nil
}

func indexOf(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}

func contains(values []string, target string) bool {
	return indexOf(values, target) >= 0
}
