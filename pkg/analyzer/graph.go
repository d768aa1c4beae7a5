package analyzer

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// CallGraph is a syntactic call graph over one or more analyses. Nodes
// are function names (methods keyed Class.method); edges connect a
// function to the defined functions its body references. Callee names
// are unresolved text, so an edge only exists when some definition's
// trailing name matches.
type CallGraph struct {
	Nodes []string
	Edges []CallEdge

	nameToID map[string]int64
	directed *simple.DirectedGraph
}

// CallEdge is one caller→callee pair.
type CallEdge struct {
	From string
	To   string
}

// NodeRank pairs a function with its PageRank score and degrees.
type NodeRank struct {
	Name      string  `json:"name"`
	PageRank  float64 `json:"pagerank"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
}

// BuildCallGraph assembles a call graph from analyses of one or more
// files. Duplicate definitions across files share a node.
func BuildCallGraph(analyses ...*Analysis) *CallGraph {
	g := &CallGraph{
		nameToID: make(map[string]int64),
		directed: simple.NewDirectedGraph(),
	}

	// Trailing-name index so a bare callee "f" resolves to "Class.f"
	// and "f" definitions alike.
	byTrailing := make(map[string][]string)
	for _, an := range analyses {
		for name := range an.Dependencies() {
			if _, ok := g.nameToID[name]; ok {
				continue
			}
			id := int64(len(g.Nodes))
			g.nameToID[name] = id
			g.Nodes = append(g.Nodes, name)
			g.directed.AddNode(simple.Node(id))

			trailing := name
			if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
				trailing = name[idx+1:]
			}
			byTrailing[trailing] = append(byTrailing[trailing], name)
		}
	}

	seen := make(map[CallEdge]bool)
	for _, an := range analyses {
		for caller, callees := range an.Dependencies() {
			for _, callee := range callees {
				trailing := callee
				if idx := strings.LastIndexByte(callee, '.'); idx >= 0 {
					trailing = callee[idx+1:]
				}
				for _, target := range byTrailing[trailing] {
					if target == caller {
						continue
					}
					edge := CallEdge{From: caller, To: target}
					if seen[edge] {
						continue
					}
					seen[edge] = true
					g.Edges = append(g.Edges, edge)
					g.directed.SetEdge(simple.Edge{
						F: simple.Node(g.nameToID[caller]),
						T: simple.Node(g.nameToID[target]),
					})
				}
			}
		}
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})
	return g
}

// Cycles returns the strongly connected components with more than one
// member, each sorted by name.
func (g *CallGraph) Cycles() [][]string {
	if len(g.Nodes) == 0 {
		return nil
	}
	var cycles [][]string
	for _, scc := range topo.TarjanSCC(g.directed) {
		if len(scc) <= 1 {
			continue
		}
		names := make([]string, 0, len(scc))
		for _, node := range scc {
			names = append(names, g.Nodes[node.ID()])
		}
		sort.Strings(names)
		cycles = append(cycles, names)
	}
	return cycles
}

// Rank scores every node with PageRank plus fan-in/fan-out, highest
// rank first.
func (g *CallGraph) Rank() []NodeRank {
	if len(g.Nodes) == 0 {
		return nil
	}
	scores := network.PageRank(g.directed, 0.85, 1e-6)

	inDegree := make(map[string]int, len(g.Nodes))
	outDegree := make(map[string]int, len(g.Nodes))
	for _, edge := range g.Edges {
		outDegree[edge.From]++
		inDegree[edge.To]++
	}

	ranks := make([]NodeRank, 0, len(g.Nodes))
	for name, id := range g.nameToID {
		ranks = append(ranks, NodeRank{
			Name:      name,
			PageRank:  scores[id],
			InDegree:  inDegree[name],
			OutDegree: outDegree[name],
		})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].PageRank != ranks[j].PageRank {
			return ranks[i].PageRank > ranks[j].PageRank
		}
		return ranks[i].Name < ranks[j].Name
	})
	return ranks
}

// Density is E / (V * (V-1)) for the directed graph.
func (g *CallGraph) Density() float64 {
	n := len(g.Nodes)
	if n < 2 {
		return 0
	}
	return float64(len(g.Edges)) / float64(n*(n-1))
}
