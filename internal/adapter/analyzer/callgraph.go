package analyzer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cobolscan/internal/domain"
	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// NodeKind classifies call graph vertices.
type NodeKind string

const (
	NodeParagraph NodeKind = "paragraph"
	// NodeMissing is a PERFORM target with no paragraph body in the program.
	NodeMissing NodeKind = "missing"
	// NodeExternal is a CALL target outside the program.
	NodeExternal NodeKind = "external"
)

const externalPrefix = "ext:"

// Node is a call graph vertex as seen by callers of this package.
type Node struct {
	Name string   `json:"name"`
	Kind NodeKind `json:"kind"`
}

// CallGraph is the directed PERFORM/CALL graph of one program.
type CallGraph struct {
	g     graph.Graph[string, string]
	kinds map[string]NodeKind
	rank  map[string]int // source order of paragraphs
	order []string
	adj   map[string]map[string]graph.Edge[string]
	pred  map[string]map[string]graph.Edge[string]
}

// BuildCallGraph builds the call graph for a scanned program. Every paragraph
// is a vertex even if it has no edges.
func BuildCallGraph(m *domain.Model) (*CallGraph, error) {
	cg := &CallGraph{
		g:     graph.New(graph.StringHash, graph.Directed()),
		kinds: make(map[string]NodeKind),
		rank:  make(map[string]int),
	}

	for i, name := range m.ParagraphNames() {
		if err := cg.addVertex(name, NodeParagraph); err != nil {
			return nil, err
		}
		cg.rank[name] = i
		cg.order = append(cg.order, name)
	}

	for pair := m.Dependencies.Oldest(); pair != nil; pair = pair.Next() {
		for _, edge := range pair.Value {
			target := edge.Target
			kind := NodeMissing
			if edge.Kind == domain.EdgeExternalCall {
				target = externalPrefix + edge.Target
				kind = NodeExternal
			}
			if _, known := cg.kinds[target]; !known {
				if err := cg.addVertex(target, kind); err != nil {
					return nil, err
				}
			}
			err := cg.g.AddEdge(pair.Key, target, graph.EdgeAttribute("kind", string(edge.Kind)))
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", pair.Key, target, err)
			}
		}
	}

	var err error
	if cg.adj, err = cg.g.AdjacencyMap(); err != nil {
		return nil, err
	}
	if cg.pred, err = cg.g.PredecessorMap(); err != nil {
		return nil, err
	}
	return cg, nil
}

func (cg *CallGraph) addVertex(key string, kind NodeKind) error {
	attrs := []func(*graph.VertexProperties){
		graph.VertexAttribute("label", displayName(key)),
	}
	switch kind {
	case NodeExternal:
		attrs = append(attrs, graph.VertexAttribute("shape", "box"))
	case NodeMissing:
		attrs = append(attrs, graph.VertexAttribute("style", "dashed"))
	}
	if err := cg.g.AddVertex(key, attrs...); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to add vertex %s: %w", key, err)
	}
	cg.kinds[key] = kind
	return nil
}

func displayName(key string) string {
	return strings.TrimPrefix(key, externalPrefix)
}

func (cg *CallGraph) node(key string) Node {
	return Node{Name: displayName(key), Kind: cg.kinds[key]}
}

// sortKeys orders paragraphs by source position, then missing and external
// targets by name.
func (cg *CallGraph) sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := cg.rank[keys[i]]
		rj, jok := cg.rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
}

// Paragraphs returns paragraph names in source order.
func (cg *CallGraph) Paragraphs() []string {
	return append([]string(nil), cg.order...)
}

// EntryPoint returns the first paragraph in source order, which is where
// control enters the procedure division.
func (cg *CallGraph) EntryPoint() (string, bool) {
	if len(cg.order) == 0 {
		return "", false
	}
	return cg.order[0], true
}

// Callees returns the direct PERFORM and CALL targets of a paragraph.
func (cg *CallGraph) Callees(name string) []Node {
	keys := make([]string, 0, len(cg.adj[name]))
	for k := range cg.adj[name] {
		keys = append(keys, k)
	}
	cg.sortKeys(keys)

	nodes := make([]Node, len(keys))
	for i, k := range keys {
		nodes[i] = cg.node(k)
	}
	return nodes
}

// Callers returns the paragraphs that PERFORM name, or CALL it when name is
// an external program.
func (cg *CallGraph) Callers(name string) []string {
	preds := cg.pred[name]
	if len(preds) == 0 {
		preds = cg.pred[externalPrefix+name]
	}
	keys := make([]string, 0, len(preds))
	for k := range preds {
		keys = append(keys, k)
	}
	cg.sortKeys(keys)
	return keys
}

// Reachable returns every paragraph transitively performed from start,
// start itself excluded unless it is part of a cycle. External programs are
// not included.
func (cg *CallGraph) Reachable(start string) ([]string, error) {
	if _, ok := cg.kinds[start]; !ok {
		return nil, fmt.Errorf("unknown paragraph %s", start)
	}

	seen := make(map[string]bool)
	err := graph.BFS(cg.g, start, func(k string) bool {
		if k != start && cg.kinds[k] != NodeExternal {
			seen[k] = true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	if cg.reaches(start, start) {
		seen[start] = true
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	cg.sortKeys(out)
	return out, nil
}

func (cg *CallGraph) reaches(from, to string) bool {
	visited := map[string]bool{}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range cg.adj[cur] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// Unreachable returns paragraphs with a body that cannot be reached from the
// entry point.
func (cg *CallGraph) Unreachable() ([]string, error) {
	entry, ok := cg.EntryPoint()
	if !ok {
		return nil, nil
	}
	reached, err := cg.Reachable(entry)
	if err != nil {
		return nil, err
	}
	in := make(map[string]bool, len(reached)+1)
	in[entry] = true
	for _, r := range reached {
		in[r] = true
	}

	var out []string
	for _, p := range cg.order {
		if !in[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

// Missing returns PERFORM targets that have no paragraph in the program.
func (cg *CallGraph) Missing() []string {
	return cg.keysOfKind(NodeMissing)
}

// ExternalCalls returns every CALL target.
func (cg *CallGraph) ExternalCalls() []string {
	keys := cg.keysOfKind(NodeExternal)
	for i, k := range keys {
		keys[i] = displayName(k)
	}
	return keys
}

func (cg *CallGraph) keysOfKind(kind NodeKind) []string {
	var keys []string
	for k, kd := range cg.kinds {
		if kd == kind {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Cycles returns groups of paragraphs that perform each other, including a
// paragraph that performs itself.
func (cg *CallGraph) Cycles() ([][]string, error) {
	sccs, err := graph.StronglyConnectedComponents(cg.g)
	if err != nil {
		return nil, err
	}

	var cycles [][]string
	for _, scc := range sccs {
		if len(scc) == 1 {
			if _, self := cg.adj[scc[0]][scc[0]]; !self {
				continue
			}
		}
		members := append([]string(nil), scc...)
		cg.sortKeys(members)
		cycles = append(cycles, members)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cg.rank[cycles[i][0]] < cg.rank[cycles[j][0]]
	})
	return cycles, nil
}

// WriteDOT writes the graph in Graphviz DOT format.
func (cg *CallGraph) WriteDOT(w io.Writer) error {
	return draw.DOT(cg.g, w)
}
