package galaxy

import (
	"container/heap"
	"sort"

	"starlanes/internal/sim/catalogs"
)

// Graph is the undirected jump-lane graph between star systems. Edges carry
// a jump distance >= 1, so shortest paths need relaxation, not plain BFS.
type Graph struct {
	adj map[string][]Edge
}

type Edge struct {
	To       string
	Distance float64
}

func New(conns catalogs.ConnectionCatalog) *Graph {
	g := &Graph{adj: map[string][]Edge{}}
	for _, e := range conns.Edges {
		g.adj[e.A] = append(g.adj[e.A], Edge{To: e.B, Distance: e.Distance})
		g.adj[e.B] = append(g.adj[e.B], Edge{To: e.A, Distance: e.Distance})
	}
	// Stable neighbor order for deterministic iteration.
	for _, edges := range g.adj {
		sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
	}
	return g
}

// Neighbors returns the systems one jump away from origin.
func (g *Graph) Neighbors(origin string) []Edge {
	return g.adj[origin]
}

// DistancesFrom computes shortest-path distances from origin to every
// reachable system. Systems absent from the result are unreachable.
func (g *Graph) DistancesFrom(origin string) map[string]float64 {
	dist := map[string]float64{origin: 0}

	pq := &priorityQueue{{system: origin, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if d, ok := dist[item.system]; ok && item.dist > d {
			continue
		}
		for _, e := range g.adj[item.system] {
			nd := item.dist + e.Distance
			if d, ok := dist[e.To]; !ok || nd < d {
				dist[e.To] = nd
				heap.Push(pq, pqItem{system: e.To, dist: nd})
			}
		}
	}
	return dist
}

// Distance returns the shortest-path distance between two systems and
// whether a path exists.
func (g *Graph) Distance(origin, dest string) (float64, bool) {
	d, ok := g.DistancesFrom(origin)[dest]
	return d, ok
}

type pqItem struct {
	system string
	dist   float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)        { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
