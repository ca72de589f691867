package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/croplab/veggiechain/internal/sim"
)

// scriptedSource replays fixed draws so policy behavior is exact.
type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) IntN(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func TestPlayerDemandPassesThrough(t *testing.T) {
	var policy sim.PlayerDemand
	for _, turn := range []int{0, 3, 4, 100} {
		assert.InDelta(t, 123.5, policy.Resolve(turn, 123.5, nil), eps)
	}
}

func TestRandomizedDemandHonorsOpeningTurns(t *testing.T) {
	policy := sim.DefaultRandomizedDemand()

	// While the state turn is below the threshold the submitted value
	// is used and nothing is drawn (a draw would panic on the nil
	// source).
	for turn := 0; turn < 4; turn++ {
		assert.InDelta(t, 777, policy.Resolve(turn, 777, nil), eps)
	}
}

func TestRandomizedDemandOverridesLaterTurns(t *testing.T) {
	policy := sim.DefaultRandomizedDemand()

	tests := []struct {
		draw int
		want float64
	}{
		{0, 50},    // bottom of the range
		{150, 200}, // top of the range
		{42, 92},
	}
	for _, tt := range tests {
		src := &scriptedSource{ints: []int{tt.draw}}
		got := policy.Resolve(4, 777, src)
		assert.InDelta(t, tt.want, got, eps, "submitted demand must be discarded")
	}
}
