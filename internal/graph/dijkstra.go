package graph

import (
	"container/heap"
	"math"
)

// Path is a shortest-path result: the node positions visited and the
// edge indexes taken between them, in order.
type Path struct {
	Nodes []int
	Edges []int
}

// ShortestPath runs Dijkstra from the node at position from to the
// node at position to over the generation's cost table. Edge weights
// must be non-negative for correctness; the cost model does not clamp,
// which is tracked as a known open question upstream.
//
// Returns ErrNoPath when to is unreachable. The search reads only the
// immutable network and edge table, so it is safe to run while a newer
// generation is being published.
func (g *Generation) ShortestPath(from, to int, mode Mode) (Path, error) {
	network := g.Graph.Network
	n := network.NodeCount()

	dist := make([]float64, n)
	prevEdge := make([]int32, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prevEdge[i] = -1
	}
	dist[from] = 0

	pq := &nodeQueue{{node: from, priority: 0}}
	heap.Init(pq)

	settled := make([]bool, n)
	for pq.Len() > 0 {
		item := heap.Pop(pq).(nodeItem)
		u := item.node
		if settled[u] {
			continue
		}
		settled[u] = true
		if u == to {
			break
		}

		for _, edgeIdx := range network.Outgoing(u) {
			_, v := network.EdgeEndpoints(int(edgeIdx))
			if settled[v] {
				continue
			}
			alt := dist[u] + g.Edges.Weight(int(edgeIdx), mode)
			if alt < dist[v] {
				dist[v] = alt
				prevEdge[v] = edgeIdx
				heap.Push(pq, nodeItem{node: v, priority: alt})
			}
		}
	}

	if math.IsInf(dist[to], 1) {
		return Path{}, ErrNoPath
	}

	return g.reconstruct(from, to, prevEdge), nil
}

// reconstruct walks the predecessor edges back from to and reverses.
func (g *Generation) reconstruct(from, to int, prevEdge []int32) Path {
	network := g.Graph.Network

	var revNodes []int
	var revEdges []int
	cur := to
	for cur != from {
		revNodes = append(revNodes, cur)
		e := prevEdge[cur]
		revEdges = append(revEdges, int(e))
		u, _ := network.EdgeEndpoints(int(e))
		cur = u
	}
	revNodes = append(revNodes, from)

	p := Path{
		Nodes: make([]int, len(revNodes)),
		Edges: make([]int, len(revEdges)),
	}
	for i, n := range revNodes {
		p.Nodes[len(revNodes)-1-i] = n
	}
	for i, e := range revEdges {
		p.Edges[len(revEdges)-1-i] = e
	}
	return p
}

// nodeItem is a priority-queue entry.
type nodeItem struct {
	node     int
	priority float64
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
