package ftl

import (
	"slices"

	"github.com/RoaringBitmap/roaring"

	"ftl-go/internal/model"
)

// Graph is the in-memory dependency graph of one revision.
// Node ids are interned to uint32 so adjacency and visited sets can be kept
// as roaring bitmaps. An edge parent -> child means parent depends on child.
type Graph struct {
	nodeID    map[string]uint32
	names     []string
	forward   []*roaring.Bitmap // node -> nodes it depends on
	reverse   []*roaring.Bitmap // node -> nodes depending on it
	relations map[[2]uint32]model.Relation
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodeID:    make(map[string]uint32),
		relations: make(map[[2]uint32]model.Relation),
	}
}

// LoadGraph builds a graph from persisted dependency rows.
func LoadGraph(deps []*model.Dependency) (*Graph, error) {
	g := NewGraph()
	for _, d := range deps {
		if err := g.AddEdge(d.Parent, d.Child, d.Relation); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) intern(id string) uint32 {
	if n, ok := g.nodeID[id]; ok {
		return n
	}
	n := uint32(len(g.names))
	g.nodeID[id] = n
	g.names = append(g.names, id)
	g.forward = append(g.forward, roaring.New())
	g.reverse = append(g.reverse, roaring.New())
	return n
}

// AddEdge records that parent depends on child. Adding an edge that would
// close a cycle fails with a DependencyCycleError and leaves g unchanged.
// Repeated edges are ignored.
func (g *Graph) AddEdge(parent, child string, rel model.Relation) error {
	if parent == child {
		return &DependencyCycleError{Edges: []Edge{{From: parent, To: child}}}
	}

	p, c := g.intern(parent), g.intern(child)
	if g.forward[p].Contains(c) {
		return nil
	}

	if path := g.path(c, p); path != nil {
		edges := []Edge{{From: parent, To: child}}
		for i := 0; i+1 < len(path); i++ {
			edges = append(edges, Edge{From: g.names[path[i]], To: g.names[path[i+1]]})
		}
		return &DependencyCycleError{Edges: edges}
	}

	g.forward[p].Add(c)
	g.reverse[c].Add(p)
	g.relations[[2]uint32{p, c}] = rel
	return nil
}

// path returns the nodes on a forward path from -> to, or nil.
func (g *Graph) path(from, to uint32) []uint32 {
	prev := map[uint32]uint32{}
	visited := roaring.BitmapOf(from)
	queue := []uint32{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == to {
			var path []uint32
			for at := to; at != from; at = prev[at] {
				path = append(path, at)
			}
			path = append(path, from)
			slices.Reverse(path)
			return path
		}
		it := g.forward[n].Iterator()
		for it.HasNext() {
			next := it.Next()
			if visited.CheckedAdd(next) {
				prev[next] = n
				queue = append(queue, next)
			}
		}
	}
	return nil
}

// Edges returns every edge of the graph ordered by parent then child.
func (g *Graph) Edges() []*model.Dependency {
	var deps []*model.Dependency
	for p, children := range g.forward {
		it := children.Iterator()
		for it.HasNext() {
			c := it.Next()
			deps = append(deps, &model.Dependency{
				Parent:   g.names[p],
				Child:    g.names[c],
				Relation: g.relations[[2]uint32{uint32(p), c}],
			})
		}
	}
	slices.SortFunc(deps, func(a, b *model.Dependency) int {
		if a.Parent != b.Parent {
			if a.Parent < b.Parent {
				return -1
			}
			return 1
		}
		if a.Child < b.Child {
			return -1
		}
		if a.Child > b.Child {
			return 1
		}
		return 0
	})
	return deps
}

// TransitiveDependents returns every node that depends on any of changed,
// directly or indirectly, sorted. A changed node is included only when it is
// itself a dependent of another changed node. Unknown ids are ignored.
func (g *Graph) TransitiveDependents(changed []string) []string {
	return g.closure(changed, g.reverse)
}

// Dependencies returns every node id depends on, directly or indirectly, sorted.
func (g *Graph) Dependencies(id string) []string {
	return g.closure([]string{id}, g.forward)
}

// closure runs a breadth-first worklist over adj until no new node is added.
func (g *Graph) closure(seeds []string, adj []*roaring.Bitmap) []string {
	visited := roaring.New()
	var queue []uint32
	for _, id := range seeds {
		if n, ok := g.nodeID[id]; ok {
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		it := adj[n].Iterator()
		for it.HasNext() {
			next := it.Next()
			if visited.CheckedAdd(next) {
				queue = append(queue, next)
			}
		}
	}

	out := make([]string, 0, visited.GetCardinality())
	it := visited.Iterator()
	for it.HasNext() {
		out = append(out, g.names[it.Next()])
	}
	slices.Sort(out)
	return out
}

// Order groups ids into levels such that every id appears after all of its
// dependencies that are also in ids. Ids within a level are sorted.
func (g *Graph) Order(ids []string) [][]string {
	members := roaring.New()
	var unknown []string
	for _, id := range ids {
		if n, ok := g.nodeID[id]; ok {
			members.Add(n)
		} else {
			unknown = append(unknown, id)
		}
	}

	pending := map[uint32]uint64{}
	var ready []uint32
	it := members.Iterator()
	for it.HasNext() {
		n := it.Next()
		deps := roaring.And(g.forward[n], members).GetCardinality()
		if deps == 0 {
			ready = append(ready, n)
		} else {
			pending[n] = deps
		}
	}

	var levels [][]string
	first := slices.Clone(unknown)
	for len(ready) > 0 || len(first) > 0 {
		level := first
		first = nil
		var next []uint32
		for _, n := range ready {
			level = append(level, g.names[n])
			parents := roaring.And(g.reverse[n], members).Iterator()
			for parents.HasNext() {
				p := parents.Next()
				pending[p]--
				if pending[p] == 0 {
					delete(pending, p)
					next = append(next, p)
				}
			}
		}
		slices.Sort(level)
		level = slices.Compact(level)
		levels = append(levels, level)
		ready = next
	}
	return levels
}
