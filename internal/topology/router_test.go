package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popupsim/popupsim/internal/domain"
)

func TestRouter_ShortestPathAndCache(t *testing.T) {
	g := NewGraph([]domain.RouteEdge{
		{From: "a", To: "b", TravelTime: 2, Symmetric: true},
		{From: "b", To: "c", TravelTime: 2, Symmetric: true},
		{From: "a", To: "c", TravelTime: 10, Symmetric: true},
	})
	r := NewRouter(g)

	route, err := r.Route("a", "c")
	require.NoError(t, err)
	assert.Equal(t, 4.0, route.Time)
	assert.Equal(t, []domain.TrackID{"a", "b", "c"}, route.Path)

	cached, err := r.Route("a", "c")
	require.NoError(t, err)
	assert.Equal(t, route, cached)
}

func TestRouter_NoPath(t *testing.T) {
	g := NewGraph([]domain.RouteEdge{
		{From: "a", To: "b", TravelTime: 2, Symmetric: true},
	})
	r := NewRouter(g)

	_, err := r.Route("a", "z")
	require.Error(t, err)
	var npe *NoPathError
	assert.ErrorAs(t, err, &npe)
}

func TestRouter_SameTrackIsZeroTime(t *testing.T) {
	g := NewGraph(nil)
	r := NewRouter(g)
	route, err := r.Route("a", "a")
	require.NoError(t, err)
	assert.Equal(t, 0.0, route.Time)
}
