package session_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/croplab/veggiechain/internal/entropy"
	"github.com/croplab/veggiechain/internal/session"
	"github.com/croplab/veggiechain/internal/sim"
)

const eps = 1e-9

// scriptedSource replays fixed draws.
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

func TestNewDefaults(t *testing.T) {
	s, err := session.New(session.Options{})
	require.NoError(t, err)

	cur := s.Current()
	assert.Equal(t, 0, cur.State.Turn)
	assert.InDelta(t, 100, cur.State.Cash, eps)
	assert.Equal(t, sim.DefaultDecisions(), cur.Decisions)
	assert.Empty(t, s.History())
	assert.False(t, s.WeatherEnabled())
	assert.NotEqual(t, s.ID().String(), "00000000-0000-0000-0000-000000000000")
}

func TestNewRejectsBadParameters(t *testing.T) {
	_, err := session.New(session.Options{
		Parameters: map[string]float64{"not_a_parameter": 1},
	})
	var cfgErr *sim.ConfigError
	require.ErrorAs(t, err, &cfgErr)

	_, err = session.New(session.Options{
		Parameters: map[string]float64{"spoilage_rate_farm": -0.2},
	})
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "spoilage_rate_farm", cfgErr.Name)
}

func TestSetDecisionsInvalidInputLeavesStateUntouched(t *testing.T) {
	s, err := session.New(session.Options{})
	require.NoError(t, err)

	require.NoError(t, s.SetDecisions(10, 20, 1.5, 30))
	before := s.Current()

	err = s.SetDecisions(10, math.NaN(), 1.5, 30)
	var invalid *sim.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "ship_qty", invalid.Field)

	assert.Equal(t, before, s.Current(), "a failed submit must change nothing")
}

func TestAdvanceBuildsHistory(t *testing.T) {
	s, err := session.New(session.Options{Rand: entropy.Seeded(1)})
	require.NoError(t, err)

	const turns = 6
	profitSum := 0.0
	for i := 0; i < turns; i++ {
		next := s.Advance()
		profitSum += next.ProfitTurn
	}

	history := s.History()
	require.Len(t, history, turns)
	assert.Equal(t, 1, history[0].State.Turn, "history starts at the first post-advance state")
	for i, snap := range history {
		assert.Equal(t, i+1, snap.State.Turn)
	}

	// Cumulative profit is the exact running sum, with no drift.
	assert.InDelta(t, profitSum, s.Current().State.ProfitCum, eps)
	assert.InDelta(t, profitSum, history[turns-1].State.ProfitCum, eps)
}

func TestHistoryIsACopy(t *testing.T) {
	s, err := session.New(session.Options{})
	require.NoError(t, err)
	s.Advance()

	history := s.History()
	history[0].State.Cash = -9999

	assert.NotEqual(t, -9999.0, s.History()[0].State.Cash)
}

func TestResetIsIdempotent(t *testing.T) {
	s, err := session.New(session.Options{
		Parameters: map[string]float64{"initial_cash": 400},
	})
	require.NoError(t, err)

	s.Advance()
	s.Advance()

	s.Reset()
	first := s.Current()
	firstHistory := s.History()

	s.Reset()
	assert.Equal(t, first, s.Current())
	assert.Equal(t, firstHistory, s.History())

	assert.Equal(t, 0, first.State.Turn)
	assert.InDelta(t, 400, first.State.Cash, eps, "reset keeps the run's parameters")
	assert.Empty(t, firstHistory)
	assert.Equal(t, sim.DefaultDecisions(), first.Decisions)
}

func TestWeatherVariantRecordsDraws(t *testing.T) {
	// Scripted draws: Sunny, Storm.
	src := &scriptedSource{ints: []int{0, 2}}
	s, err := session.New(session.Options{WeatherEnabled: true, Rand: src})
	require.NoError(t, err)

	s1 := s.Advance()
	assert.Equal(t, "Sunny", s1.Weather)
	assert.InDelta(t, 1.2, s1.WeatherMultiplier, eps)

	s2 := s.Advance()
	assert.Equal(t, "Storm", s2.Weather)
	assert.InDelta(t, 0.7, s2.WeatherMultiplier, eps)
}

func TestWeatherScalesSecondTurnHarvest(t *testing.T) {
	// Sunny both turns: turn 2 harvests 50 × 1.2.
	src := &scriptedSource{ints: []int{0, 0}}
	s, err := session.New(session.Options{WeatherEnabled: true, Rand: src})
	require.NoError(t, err)

	s.Advance()
	s2 := s.Advance()
	assert.InDelta(t, 60, s2.Harvest, eps)
}

func TestRandomDemandOverrideFromTurnFive(t *testing.T) {
	src := &scriptedSource{ints: []int{10}} // demand draw → 50 + 10
	s, err := session.New(session.Options{
		Demand: sim.DefaultRandomizedDemand(),
		Rand:   src,
	})
	require.NoError(t, err)

	// Turns 1–4: the submitted demand is honored verbatim.
	for turn := 1; turn <= 4; turn++ {
		require.NoError(t, s.SetDecisions(0, 0, 1, 999))
		s.Advance()
		assert.InDelta(t, 999, s.Current().Decisions.DemandMarket, eps, "turn %d", turn)
	}

	// Turn 5: the submitted value must be discarded for the draw.
	require.NoError(t, s.SetDecisions(0, 0, 1, 999))
	s.Advance()
	assert.InDelta(t, 60, s.Current().Decisions.DemandMarket, eps)
	assert.Empty(t, src.ints, "exactly one draw consumed")

	history := s.History()
	assert.InDelta(t, 60, history[4].Decisions.DemandMarket, eps)
}

func TestSessionsAreIndependent(t *testing.T) {
	a, err := session.New(session.Options{})
	require.NoError(t, err)
	b, err := session.New(session.Options{})
	require.NoError(t, err)

	a.Advance()
	a.Advance()

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 0, b.Current().State.Turn)
	assert.Empty(t, b.History())
}
