package topology

import (
	"container/heap"
	"fmt"

	"github.com/popupsim/popupsim/internal/domain"
)

// NoPathError is returned when no route exists between two tracks — a
// deterministic, fail-fast error
type NoPathError struct {
	From, To domain.TrackID
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("topology: no path from %s to %s", e.From, e.To)
}

type routeKey struct {
	from, to domain.TrackID
}

// Router computes and caches shortest-time routes over a Graph. The cache
// is invariant across a run: once (from,to) is computed it is never
// recomputed.
type Router struct {
	graph *Graph
	cache map[routeKey]domain.Route
}

// NewRouter wraps a graph with an empty route cache.
func NewRouter(g *Graph) *Router {
	return &Router{graph: g, cache: make(map[routeKey]domain.Route)}
}

// Route returns the shortest-time path from 'from' to 'to', computing it
// with Dijkstra's algorithm on first request and caching the result. Edge
// times are required to be >= 0 (process-time derived), so Dijkstra is
// valid; traversal order within ties is fixed by Graph's sorted adjacency,
// keeping the result deterministic.
func (r *Router) Route(from, to domain.TrackID) (domain.Route, error) {
	if from == to {
		return domain.Route{From: from, To: to, Path: []domain.TrackID{from}, Time: 0}, nil
	}
	key := routeKey{from, to}
	if cached, ok := r.cache[key]; ok {
		return cached, nil
	}

	route, err := r.dijkstra(from, to)
	if err != nil {
		return domain.Route{}, err
	}
	r.cache[key] = route
	return route, nil
}

type pqItem struct {
	id   domain.TrackID
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

func (r *Router) dijkstra(from, to domain.TrackID) (domain.Route, error) {
	if !r.graph.HasNode(from) {
		return domain.Route{}, &NoPathError{From: from, To: to}
	}

	dist := map[domain.TrackID]float64{from: 0}
	prev := map[domain.TrackID]domain.TrackID{}
	visited := map[domain.TrackID]bool{}

	pq := &priorityQueue{{id: from, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true
		if cur.id == to {
			break
		}
		for _, e := range r.graph.Neighbors(cur.id) {
			nd := cur.dist + e.time
			if existing, ok := dist[e.to]; !ok || nd < existing {
				dist[e.to] = nd
				prev[e.to] = cur.id
				heap.Push(pq, pqItem{id: e.to, dist: nd})
			}
		}
	}

	finalDist, ok := dist[to]
	if !ok {
		return domain.Route{}, &NoPathError{From: from, To: to}
	}

	path := []domain.TrackID{to}
	for cursor := to; cursor != from; {
		p, ok := prev[cursor]
		if !ok {
			return domain.Route{}, &NoPathError{From: from, To: to}
		}
		path = append(path, p)
		cursor = p
	}
	// reverse into from->to order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return domain.Route{From: from, To: to, Path: path, Time: finalDist}, nil
}
