package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveAddress(t *testing.T) {
	require.Equal(t, "Thames 2100", ResolveAddress("  Thames 2100 ", "Viejo 1"))
	require.Equal(t, "Viejo 1", ResolveAddress("   ", " Viejo 1"))
	require.Equal(t, "", ResolveAddress("", ""))
}

func TestPointFrom(t *testing.T) {
	lat, lng := -34.6, -58.4
	require.Nil(t, PointFrom(nil, &lng))
	require.Nil(t, PointFrom(&lat, nil))
	p := PointFrom(&lat, &lng)
	require.NotNil(t, p)
	require.Equal(t, -34.6, p.Lat)
	require.Equal(t, -58.4, p.Lng)
}

func TestGroupByNeighborhood(t *testing.T) {
	recs := []Record{
		{ID: "1", Address: "Montevideo, Uruguay"},
		{ID: "2", Address: "Av. Cabildo 2000"},
		{ID: "3", Address: "Córdoba capital, Córdoba"},
		{ID: "4", Address: "Thames 1500"},
		{ID: "5", Address: "Lavalle 100, Capital Federal"},
		{ID: "6", Address: "Av. Santa Fe 4000"},
		{ID: "7"},
	}
	gs := GroupByNeighborhood(recs)
	labels := make([]string, len(gs))
	for i, g := range gs {
		labels[i] = g.Label
		require.Equal(t, len(g.Records), g.Count)
	}
	require.Equal(t, []string{
		"Palermo",
		"Belgrano",
		"Capital Federal (Otros)",
		"Córdoba (Provincia)",
		"Otros",
	}, labels)

	require.Equal(t, "4", gs[0].Records[0].ID)
	require.Equal(t, "6", gs[0].Records[1].ID)
	require.Len(t, gs[4].Records, 2)

	require.Empty(t, GroupByNeighborhood(nil))
}
