package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplab/veggiechain/internal/weather"
)

type fixedSource struct{ n int }

func (f fixedSource) IntN(n int) int   { return f.n % n }
func (f fixedSource) Float64() float64 { return 0 }

func TestDrawCoversCatalog(t *testing.T) {
	catalog := weather.Catalog()
	require.Len(t, catalog, 3)

	for i, want := range catalog {
		got := weather.Draw(fixedSource{n: i})
		assert.Equal(t, want, got)
	}
}

func TestCatalogMultipliers(t *testing.T) {
	byLabel := map[string]float64{}
	for _, c := range weather.Catalog() {
		byLabel[c.Label] = c.Multiplier
	}

	assert.InDelta(t, 1.2, byLabel["Sunny"], 1e-9)
	assert.InDelta(t, 1.0, byLabel["Rainy"], 1e-9)
	assert.InDelta(t, 0.7, byLabel["Storm"], 1e-9)
}

func TestCatalogReturnsCopy(t *testing.T) {
	first := weather.Catalog()
	first[0].Multiplier = 99

	assert.InDelta(t, 1.2, weather.Catalog()[0].Multiplier, 1e-9)
}

func TestClear(t *testing.T) {
	assert.Empty(t, weather.Clear.Label)
	assert.InDelta(t, 1.0, weather.Clear.Multiplier, 1e-9)
}
