package sim

import "math"

// State is the snapshot of the world after one turn. States are values
// replaced wholesale on each advance; nothing ever mutates one in
// place, which is also what makes the history log cheap to keep.
type State struct {
	Turn            int     `json:"turn"`
	InventoryFarm   float64 `json:"inventory_farm"`
	InventoryMarket float64 `json:"inventory_market"`
	Cash            float64 `json:"cash"`
	ProfitCum       float64 `json:"profit_cum"`

	// LastPlantArea is the area planted on the turn that just
	// completed; it is next turn's harvest base (one-turn lag).
	LastPlantArea float64 `json:"last_plant_area"`

	// Weather drawn for the turn just computed. Empty label and
	// multiplier 1.0 when weather is disabled.
	Weather           string  `json:"weather,omitempty"`
	WeatherMultiplier float64 `json:"weather_multiplier"`

	// Per-turn results. Informational: later turns only consume them
	// through the inventories, cash, profit, and LastPlantArea above.
	Harvest       float64 `json:"harvest"`
	FeasibleShip  float64 `json:"feasible_ship"`
	Sales         float64 `json:"sales"`
	Revenue       float64 `json:"revenue"`
	CostPlantTurn float64 `json:"cost_plant_turn"`
	CostShipTurn  float64 `json:"cost_ship_turn"`
	ProfitTurn    float64 `json:"profit_turn"`
}

// NewState returns the turn-0 state for the given parameters.
func NewState(p Parameters) State {
	return State{
		InventoryFarm:     p.InitialInventoryFarm,
		InventoryMarket:   p.InitialInventoryMarket,
		Cash:              p.InitialCash,
		WeatherMultiplier: 1.0,
	}
}

// Decisions are the player's inputs for one turn, replaced wholesale
// each time they are submitted.
type Decisions struct {
	PlantArea    float64 `json:"plant_area"`
	ShipQty      float64 `json:"ship_qty"`
	Price        float64 `json:"price"`
	DemandMarket float64 `json:"demand_market"`
}

// DefaultDecisions returns the pre-filled decision form a fresh
// session starts with.
func DefaultDecisions() Decisions {
	return Decisions{
		PlantArea:    50,
		ShipQty:      80,
		Price:        3.0,
		DemandMarket: 100,
	}
}

// Validate rejects NaN and infinite values. Negative values pass: the
// transition clamps them to zero at its boundary instead.
func (d Decisions) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"plant_area", d.PlantArea},
		{"ship_qty", d.ShipQty},
		{"price", d.Price},
		{"demand_market", d.DemandMarket},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &InvalidInputError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// clamped treats negative decision values as zero. Upstream
// collaborators are expected to prevent negatives, but the model must
// stay defined if they do not.
func (d Decisions) clamped() Decisions {
	d.PlantArea = math.Max(0, d.PlantArea)
	d.ShipQty = math.Max(0, d.ShipQty)
	d.Price = math.Max(0, d.Price)
	d.DemandMarket = math.Max(0, d.DemandMarket)
	return d
}
