// Package topology implements the site topology graph and shortest-path
// router: an undirected graph of tracks with edge times and cached
// (from,to) route lookups. Moving a locomotive along a route, track by
// track, is done by internal/pipeline.
package topology

import (
	"sort"

	"github.com/popupsim/popupsim/internal/domain"
)

type edge struct {
	to   domain.TrackID
	time float64
}

// Graph is the adjacency representation of the site's track topology.
type Graph struct {
	adj map[domain.TrackID][]edge
}

// NewGraph builds a graph from the scenario's route edges. An edge with
// Symmetric true (the default) contributes both directions; one
// with Symmetric false contributes only From->To, letting a scenario
// express an explicitly asymmetric traversal time by pairing two
// one-directional edges with different times.
func NewGraph(edges []domain.RouteEdge) *Graph {
	g := &Graph{adj: make(map[domain.TrackID][]edge)}
	for _, e := range edges {
		g.addDirected(e.From, e.To, e.TravelTime)
		if e.Symmetric {
			g.addDirected(e.To, e.From, e.TravelTime)
		}
	}
	// Sort each adjacency list by neighbor id for deterministic traversal
	// order regardless of input edge order.
	for id := range g.adj {
		list := g.adj[id]
		sort.Slice(list, func(i, j int) bool { return list[i].to < list[j].to })
		g.adj[id] = list
	}
	return g
}

func (g *Graph) addDirected(from, to domain.TrackID, t float64) {
	g.adj[from] = append(g.adj[from], edge{to: to, time: t})
}

// Neighbors returns the outgoing edges from id, in stable sorted order.
func (g *Graph) Neighbors(id domain.TrackID) []edge {
	return g.adj[id]
}

// HasNode reports whether id appears anywhere in the topology.
func (g *Graph) HasNode(id domain.TrackID) bool {
	_, ok := g.adj[id]
	return ok
}
