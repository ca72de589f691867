package sim

import (
	"math"

	"github.com/croplab/veggiechain/internal/weather"
)

// Advance computes the next state from prev under the given decisions,
// parameters, and weather. Pure: it reads nothing outside its
// arguments and mutates none of them, so given the same inputs the
// output state is identical.
//
// Shipment requests beyond farm stock or fleet capacity are silently
// reduced, and demand beyond market stock goes unmet with no backlog.
// Both are model policy, not validation gaps.
func Advance(prev State, d Decisions, p Parameters, w weather.Condition) State {
	d = d.clamped()

	// Fleet and stock limit what actually leaves the farm.
	feasibleShip := math.Min(d.ShipQty, math.Min(prev.InventoryFarm, p.MaxShipment()))

	// What was planted last turn comes up now, scaled by weather.
	harvest := prev.LastPlantArea * w.Multiplier

	farmRaw := prev.InventoryFarm + harvest - feasibleShip
	inventoryFarm := math.Max(0, farmRaw) * (1 - p.SpoilageRateFarm)

	marketRaw := prev.InventoryMarket + feasibleShip
	sales := math.Min(marketRaw, d.DemandMarket)
	inventoryMarket := (marketRaw - sales) * (1 - p.SpoilageRateMarket)

	revenue := sales * d.Price
	// Planting cost is sunk on the requested area; planting is never
	// capacity-constrained in this model.
	costPlantTurn := d.PlantArea * p.CostPlant
	costShipTurn := feasibleShip * p.CostShip
	profitTurn := revenue - costPlantTurn - costShipTurn

	return State{
		Turn:            prev.Turn + 1,
		InventoryFarm:   inventoryFarm,
		InventoryMarket: inventoryMarket,
		Cash:            prev.Cash + profitTurn,
		ProfitCum:       prev.ProfitCum + profitTurn,
		LastPlantArea:   d.PlantArea,

		Weather:           w.Label,
		WeatherMultiplier: w.Multiplier,

		Harvest:       harvest,
		FeasibleShip:  feasibleShip,
		Sales:         sales,
		Revenue:       revenue,
		CostPlantTurn: costPlantTurn,
		CostShipTurn:  costShipTurn,
		ProfitTurn:    profitTurn,
	}
}
