// Package sim holds the farm-to-market data model and the turn-advance
// transition function. Everything here is plain values: the session
// layer owns identity, randomness, and history.
package sim

import (
	"math"
	"sort"
)

// Parameters are the rules of one run: capacities, spoilage, costs,
// and starting conditions. Fixed at session creation; the transition
// function never mutates them.
type Parameters struct {
	TruckCapacity          float64 `json:"truck_capacity"`
	NumTrucks              float64 `json:"num_trucks"`
	SpoilageRateFarm       float64 `json:"spoilage_rate_farm"`
	SpoilageRateMarket     float64 `json:"spoilage_rate_market"`
	CostPlant              float64 `json:"cost_plant"`
	CostShip               float64 `json:"cost_ship"`
	InitialInventoryFarm   float64 `json:"initial_inventory_farm"`
	InitialInventoryMarket float64 `json:"initial_inventory_market"`
	InitialCash            float64 `json:"initial_cash"`
}

// DefaultParameters returns the stock game configuration.
func DefaultParameters() Parameters {
	return Parameters{
		TruckCapacity:      100,
		NumTrucks:          2,
		SpoilageRateFarm:   0.10,
		SpoilageRateMarket: 0.05,
		CostPlant:          1.0,
		CostShip:           0.2,
		InitialCash:        100,
	}
}

// MaxShipment is the per-turn fleet limit.
func (p Parameters) MaxShipment() float64 {
	return p.TruckCapacity * p.NumTrucks
}

// parameterFields maps override names (as exposed to config files and
// the API) to their struct fields.
var parameterFields = map[string]func(*Parameters) *float64{
	"truck_capacity":           func(p *Parameters) *float64 { return &p.TruckCapacity },
	"num_trucks":               func(p *Parameters) *float64 { return &p.NumTrucks },
	"spoilage_rate_farm":       func(p *Parameters) *float64 { return &p.SpoilageRateFarm },
	"spoilage_rate_market":     func(p *Parameters) *float64 { return &p.SpoilageRateMarket },
	"cost_plant":               func(p *Parameters) *float64 { return &p.CostPlant },
	"cost_ship":                func(p *Parameters) *float64 { return &p.CostShip },
	"initial_inventory_farm":   func(p *Parameters) *float64 { return &p.InitialInventoryFarm },
	"initial_inventory_market": func(p *Parameters) *float64 { return &p.InitialInventoryMarket },
	"initial_cash":             func(p *Parameters) *float64 { return &p.InitialCash },
}

// ParameterNames returns the accepted override names, sorted.
func ParameterNames() []string {
	names := make([]string, 0, len(parameterFields))
	for name := range parameterFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithOverrides returns a copy of p with the named fields replaced.
// Unknown names are a ConfigError, never silently ignored.
func (p Parameters) WithOverrides(overrides map[string]float64) (Parameters, error) {
	// Sorted so the reported error is deterministic.
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, ok := parameterFields[name]
		if !ok {
			return p, &ConfigError{Name: name, Reason: "unknown parameter"}
		}
		*field(&p) = overrides[name]
	}
	return p, nil
}

// Validate checks every parameter against its allowed range.
// Parameters define the rules of the world, so out-of-range values are
// rejected outright rather than clamped.
func (p Parameters) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"truck_capacity", p.TruckCapacity},
		{"num_trucks", p.NumTrucks},
		{"spoilage_rate_farm", p.SpoilageRateFarm},
		{"spoilage_rate_market", p.SpoilageRateMarket},
		{"cost_plant", p.CostPlant},
		{"cost_ship", p.CostShip},
		{"initial_inventory_farm", p.InitialInventoryFarm},
		{"initial_inventory_market", p.InitialInventoryMarket},
		{"initial_cash", p.InitialCash},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ConfigError{Name: f.name, Reason: "must be finite"}
		}
	}

	if p.TruckCapacity <= 0 {
		return &ConfigError{Name: "truck_capacity", Reason: "must be positive"}
	}
	if p.NumTrucks < 0 {
		return &ConfigError{Name: "num_trucks", Reason: "must not be negative"}
	}
	if p.SpoilageRateFarm < 0 || p.SpoilageRateFarm > 1 {
		return &ConfigError{Name: "spoilage_rate_farm", Reason: "must be in [0,1]"}
	}
	if p.SpoilageRateMarket < 0 || p.SpoilageRateMarket > 1 {
		return &ConfigError{Name: "spoilage_rate_market", Reason: "must be in [0,1]"}
	}
	if p.CostPlant < 0 {
		return &ConfigError{Name: "cost_plant", Reason: "must not be negative"}
	}
	if p.CostShip < 0 {
		return &ConfigError{Name: "cost_ship", Reason: "must not be negative"}
	}
	if p.InitialInventoryFarm < 0 {
		return &ConfigError{Name: "initial_inventory_farm", Reason: "must not be negative"}
	}
	if p.InitialInventoryMarket < 0 {
		return &ConfigError{Name: "initial_inventory_market", Reason: "must not be negative"}
	}
	return nil
}
