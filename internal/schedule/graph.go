package schedule

import (
	"gantt-planner-api/internal/models"
)

// Graph is the union of the dependency and sync relations of a snapshot. An edge
// X -> S means "X's dates are derived from S's dates". References to tasks outside
// the snapshot are left out.
type Graph struct {
	order     []uint
	sources   map[uint][]uint
	followers map[uint][]uint
}

// sourcesOf lists the tasks t derives its dates from: dependencies first, then the sync reference.
func sourcesOf(t *models.Task) []uint {
	out := make([]uint, 0, len(t.Dependencies)+1)
	out = append(out, t.Dependencies...)
	if t.SyncedTaskID != nil {
		out = append(out, *t.SyncedTaskID)
	}
	return models.IDList(out).Normalize()
}

// BuildGraph indexes the derived-from edges of every task in s.
func BuildGraph(s *Snapshot) *Graph {
	g := &Graph{
		order:     s.IDs(),
		sources:   make(map[uint][]uint, s.Len()),
		followers: make(map[uint][]uint, s.Len()),
	}
	for _, id := range g.order {
		t, _ := s.Get(id)
		for _, src := range sourcesOf(t) {
			if !s.Has(src) {
				continue
			}
			g.sources[id] = append(g.sources[id], src)
			g.followers[src] = append(g.followers[src], id)
		}
	}
	return g
}

// Sources returns the tasks id derives from.
func (g *Graph) Sources(id uint) []uint {
	return g.sources[id]
}

// Followers returns the tasks derived from id, in creation order.
func (g *Graph) Followers(id uint) []uint {
	return g.followers[id]
}

// CycleThrough returns a cycle that passes through id, as the path
// id -> ... -> id along derived-from edges, or nil when id is on no cycle.
func (g *Graph) CycleThrough(id uint) []uint {
	visited := make(map[uint]bool)
	var path []uint
	var walk func(n uint) bool
	walk = func(n uint) bool {
		path = append(path, n)
		for _, src := range g.sources[n] {
			if src == id {
				path = append(path, id)
				return true
			}
			if visited[src] {
				continue
			}
			visited[src] = true
			if walk(src) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	visited[id] = true
	if walk(id) {
		return path
	}
	return nil
}

// Cycles returns one path per distinct cycle found by a depth-first walk of the whole graph.
// It is a diagnostic for data that bypassed edit-time checks, such as imports.
func (g *Graph) Cycles() [][]uint {
	const (
		white = iota
		grey
		black
	)
	color := make(map[uint]int, len(g.order))
	seen := make(map[string]bool)
	var cycles [][]uint
	var stack []uint

	var visit func(n uint)
	visit = func(n uint) {
		color[n] = grey
		stack = append(stack, n)
		for _, src := range g.sources[n] {
			switch color[src] {
			case white:
				visit(src)
			case grey:
				var cycle []uint
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == src {
						cycle = append(append(cycle, stack[i:]...), src)
						break
					}
				}
				if key := cycleKey(cycle); !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
	}
	for _, id := range g.order {
		if color[id] == white {
			visit(id)
		}
	}
	return cycles
}

// cycleKey identifies a cycle independently of where the walk entered it.
func cycleKey(cycle []uint) string {
	if len(cycle) < 2 {
		return ""
	}
	nodes := cycle[:len(cycle)-1]
	lo := 0
	for i, id := range nodes {
		if id < nodes[lo] {
			lo = i
		}
	}
	rotated := append(append([]uint(nil), nodes[lo:]...), nodes[:lo]...)
	return FormatPath(rotated)
}

// downstream returns every task reachable from roots along follower edges, roots included.
func (g *Graph) downstream(roots []uint) map[uint]bool {
	seen := make(map[uint]bool)
	queue := append([]uint(nil), roots...)
	for _, r := range roots {
		seen[r] = true
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, f := range g.followers[n] {
			if !seen[f] {
				seen[f] = true
				queue = append(queue, f)
			}
		}
	}
	return seen
}
