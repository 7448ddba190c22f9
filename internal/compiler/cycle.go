package compiler

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/vector/internal/ir"
)

// Warning levels.
const (
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// CycleWarning reports tables whose handlers dispatch back into themselves.
//
// Recursion through tables is legal (a clause may recurse on a smaller
// argument) so it is a warning, not an error.
type CycleWarning struct {
	Path    []string `json:"path"` // ["a", "b", "a"]
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// ShadowWarning reports a clause that can never be selected because an
// earlier clause of the same length accepts everything it accepts.
type ShadowWarning struct {
	Table   string `json:"table"`
	Clause  int    `json:"clause"`
	By      int    `json:"by"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

// AnalyzeCycles builds the table reference graph (an edge a -> b when a
// clause of a names table b as its handler) and reports every strongly
// connected component that forms a cycle.
//
// Output is ordered by table name so repeated runs are identical.
func AnalyzeCycles(tables []ir.TableSpec) []CycleWarning {
	if len(tables) == 0 {
		return []CycleWarning{}
	}

	graph := buildReferenceGraph(tables)
	sccs := tarjanSCC(graph)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return strings.Compare(a.Path[0], b.Path[0])
	})
	return warnings
}

// referenceGraph maps table name -> tables its handlers dispatch to.
type referenceGraph map[string][]string

func buildReferenceGraph(tables []ir.TableSpec) referenceGraph {
	graph := make(referenceGraph, len(tables))
	for _, t := range tables {
		graph[t.Name] = []string{}
	}
	for _, t := range tables {
		for _, c := range t.Clauses {
			fn := c.Handler.Fn
			if _, isTable := graph[fn]; isTable && !slices.Contains(graph[t.Name], fn) {
				graph[t.Name] = append(graph[t.Name], fn)
			}
		}
	}
	return graph
}

func hasSelfLoop(node string, graph referenceGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order; each SCC is rotated to start at its
// smallest name.
func tarjanSCC(graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func cycleSCCToWarning(scc []string, graph referenceGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("table %s dispatches to itself", name),
			Level:   LevelInfo,
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("mutually recursive tables: %s", strings.Join(path, " -> ")),
		Level:   LevelWarning,
	}
}

// reconstructCyclePath walks SCC members from scc[0] until it returns
// to the start.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if neighbor == start && len(path) > 1 {
				next = start
				break
			}
			if next == "" && members[neighbor] && !visited[neighbor] {
				next = neighbor
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}

// AnalyzeShadowing reports clauses made unreachable by an earlier clause
// with the same number of patterns whose every pattern subsumes the
// later one's. Only wildcards and identical patterns count as subsuming;
// predicates are opaque.
func AnalyzeShadowing(tables []ir.TableSpec) []ShadowWarning {
	warnings := []ShadowWarning{}
	for _, t := range tables {
		for later := range t.Clauses {
			for earlier := 0; earlier < later; earlier++ {
				if !subsumesClause(t.Clauses[earlier], t.Clauses[later]) {
					continue
				}
				warnings = append(warnings, ShadowWarning{
					Table:   t.Name,
					Clause:  later,
					By:      earlier,
					Message: fmt.Sprintf("table %s: clause %d is unreachable, clause %d always matches first", t.Name, later, earlier),
					Level:   LevelWarning,
				})
				break
			}
		}
	}
	return warnings
}

func subsumesClause(a, b ir.ClauseSpec) bool {
	if len(a.Patterns) != len(b.Patterns) {
		return false
	}
	for i := range a.Patterns {
		if !subsumes(a.Patterns[i], b.Patterns[i]) {
			return false
		}
	}
	return true
}

func subsumes(a, b ir.PatternSpec) bool {
	if a.Kind == ir.PatternWildcard {
		return true
	}
	if a.Kind == ir.PatternPredicate {
		return false
	}
	return reflect.DeepEqual(a, b)
}
