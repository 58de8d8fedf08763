package stage

import (
	"fmt"
	"sort"
	"strings"
)

// CatalogError reports an internally inconsistent stage catalog, such as a
// duplicate stage ID or a dependency on a stage that does not exist. These
// are programming errors, not user-recoverable configuration problems.
type CatalogError struct {
	StageID string
	Reason  string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("stage catalog: %s: %s", e.StageID, e.Reason)
}

// CycleError reports a dependency cycle. Path holds the full cycle with the
// starting stage repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("stage dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// Order returns the stages sorted so every stage appears after all of its
// predecessors. Ties between independent stages break on Number, then ID, so
// the order is identical across runs and platforms.
func Order(stages []Stage) ([]Stage, error) {
	byID := make(map[string]Stage, len(stages))
	for _, s := range stages {
		if _, dup := byID[s.ID]; dup {
			return nil, &CatalogError{StageID: s.ID, Reason: "duplicate stage ID"}
		}
		byID[s.ID] = s
	}
	for _, s := range stages {
		for _, dep := range s.DependsOn {
			if _, ok := byID[dep]; !ok {
				return nil, &CatalogError{
					StageID: s.ID,
					Reason:  fmt.Sprintf("depends on unknown stage %q", dep),
				}
			}
		}
	}

	indegree := make(map[string]int, len(stages))
	dependents := make(map[string][]string, len(stages))
	for _, s := range stages {
		indegree[s.ID] = len(s.DependsOn)
		for _, dep := range s.DependsOn {
			dependents[dep] = append(dependents[dep], s.ID)
		}
	}

	var ready []string
	for _, s := range stages {
		if indegree[s.ID] == 0 {
			ready = append(ready, s.ID)
		}
	}

	less := func(a, b string) bool {
		sa, sb := byID[a], byID[b]
		if sa.Number != sb.Number {
			return sa.Number < sb.Number
		}
		return sa.ID < sb.ID
	}

	ordered := make([]Stage, 0, len(stages))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		next := ready[0]
		ready = ready[1:]

		ordered = append(ordered, byID[next])
		for _, dependent := range dependents[next] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(ordered) != len(stages) {
		return nil, &CycleError{Path: findCycle(stages, byID)}
	}
	return ordered, nil
}

// findCycle walks the dependency edges from an arbitrary stage still on a
// cycle and returns the full path, closing the loop on the repeated stage.
func findCycle(stages []Stage, byID map[string]Stage) []string {
	const (
		white = iota // unvisited
		grey         // on the current path
		black        // fully explored
	)
	state := make(map[string]int, len(stages))

	var path []string
	var cycle []string
	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = grey
		path = append(path, id)
		deps := append([]string(nil), byID[id].DependsOn...)
		sort.Strings(deps)
		for _, dep := range deps {
			switch state[dep] {
			case grey:
				for i, on := range path {
					if on == dep {
						cycle = append(append([]string(nil), path[i:]...), dep)
						return true
					}
				}
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = black
		return false
	}

	ids := make([]string, 0, len(stages))
	for _, s := range stages {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if state[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}
