package sim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplab/veggiechain/internal/sim"
)

func TestNewState(t *testing.T) {
	p, err := sim.DefaultParameters().WithOverrides(map[string]float64{
		"initial_inventory_farm":   30,
		"initial_inventory_market": 5,
		"initial_cash":             250,
	})
	require.NoError(t, err)

	s := sim.NewState(p)

	assert.Equal(t, 0, s.Turn)
	assert.InDelta(t, 30, s.InventoryFarm, eps)
	assert.InDelta(t, 5, s.InventoryMarket, eps)
	assert.InDelta(t, 250, s.Cash, eps)
	assert.InDelta(t, 0, s.ProfitCum, eps)
	assert.InDelta(t, 0, s.LastPlantArea, eps)
	assert.InDelta(t, 1.0, s.WeatherMultiplier, eps)
}

func TestDecisionsValidate(t *testing.T) {
	require.NoError(t, sim.DefaultDecisions().Validate())
	require.NoError(t, sim.Decisions{PlantArea: -5}.Validate(), "negatives are clamped, not rejected")

	tests := []struct {
		name string
		d    sim.Decisions
		want string
	}{
		{"nan plant area", sim.Decisions{PlantArea: math.NaN()}, "plant_area"},
		{"inf ship qty", sim.Decisions{ShipQty: math.Inf(1)}, "ship_qty"},
		{"negative inf price", sim.Decisions{Price: math.Inf(-1)}, "price"},
		{"nan demand", sim.Decisions{DemandMarket: math.NaN()}, "demand_market"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var invalid *sim.InvalidInputError
			require.ErrorAs(t, tt.d.Validate(), &invalid)
			assert.Equal(t, tt.want, invalid.Field)
		})
	}
}
