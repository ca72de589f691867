package sim

import "github.com/croplab/veggiechain/internal/entropy"

// DemandPolicy resolves the market demand for the upcoming turn. It is
// applied by the session before the transition runs; the transition
// only ever sees the resolved value.
type DemandPolicy interface {
	// Resolve takes the turn number of the current state (the turn
	// about to be advanced from) and the player-submitted demand, and
	// returns the demand the market will express.
	Resolve(turn int, submitted float64, src entropy.Source) float64
}

// PlayerDemand uses the submitted demand unchanged.
type PlayerDemand struct{}

func (PlayerDemand) Resolve(_ int, submitted float64, _ entropy.Source) float64 {
	return submitted
}

// RandomizedDemand leaves the opening turns to the player, then draws
// demand uniformly from the integer range [Min, Max], discarding
// whatever was submitted.
type RandomizedDemand struct {
	// AfterTurn is the state turn number at which randomization kicks
	// in: submitted demand is honored while turn < AfterTurn.
	AfterTurn int
	Min, Max  int
}

// DefaultRandomizedDemand randomizes from turn 5 onward over [50, 200].
func DefaultRandomizedDemand() RandomizedDemand {
	return RandomizedDemand{AfterTurn: 4, Min: 50, Max: 200}
}

func (r RandomizedDemand) Resolve(turn int, submitted float64, src entropy.Source) float64 {
	if turn < r.AfterTurn {
		return submitted
	}
	return float64(r.Min + src.IntN(r.Max-r.Min+1))
}
