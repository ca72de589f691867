// Package session orchestrates one interactive run: it owns the live
// parameters, state, decisions, and history, and drives the transition
// each turn.
package session

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/croplab/veggiechain/internal/entropy"
	"github.com/croplab/veggiechain/internal/sim"
	"github.com/croplab/veggiechain/internal/weather"
)

// Options select the run variant and its randomness. The zero value is
// the baseline game: default parameters, no weather, player-supplied
// demand, OS-seeded randomness.
type Options struct {
	// Parameters overrides default parameters by name. Unknown names
	// are rejected.
	Parameters map[string]float64

	// WeatherEnabled draws a weather condition each turn and scales
	// the harvest by its multiplier.
	WeatherEnabled bool

	// Demand resolves each turn's market demand. Nil means the
	// player-submitted value is always used.
	Demand sim.DemandPolicy

	// Rand feeds the weather and demand draws. Nil means OS-seeded.
	Rand entropy.Source
}

// Snapshot pairs one turn's state with the inputs that produced it.
// History entries and the current() view share this shape.
type Snapshot struct {
	State      sim.State      `json:"state"`
	Decisions  sim.Decisions  `json:"decisions"`
	Parameters sim.Parameters `json:"parameters"`
}

// Session is the orchestrator for one run. It is owned by a single
// client and is not safe for concurrent use; independent sessions
// share nothing.
type Session struct {
	id        uuid.UUID
	params    sim.Parameters
	state     sim.State
	decisions sim.Decisions
	history   []Snapshot

	weatherOn bool
	demand    sim.DemandPolicy
	rng       entropy.Source
}

// New builds a session from options, validating parameters strictly.
func New(opts Options) (*Session, error) {
	params, err := sim.DefaultParameters().WithOverrides(opts.Parameters)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	demand := opts.Demand
	if demand == nil {
		demand = sim.PlayerDemand{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = entropy.System()
	}

	s := &Session{
		id:        uuid.New(),
		params:    params,
		weatherOn: opts.WeatherEnabled,
		demand:    demand,
		rng:       rng,
	}
	s.Reset()

	slog.Debug("session created",
		"session", s.id,
		"weather", s.weatherOn,
		"max_shipment", params.MaxShipment(),
	)
	return s, nil
}

// ID identifies this session in logs, recordings, and the API.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// WeatherEnabled reports whether this run draws weather each turn.
func (s *Session) WeatherEnabled() bool {
	return s.weatherOn
}

// Reset discards state, decisions, and history and returns to turn 0.
// Parameters survive; only a new session changes the rules.
func (s *Session) Reset() {
	s.state = sim.NewState(s.params)
	s.decisions = sim.DefaultDecisions()
	s.history = nil
}

// SetDecisions replaces the pending decisions wholesale. On invalid
// input (NaN or infinite values) nothing changes and the error is
// returned to the caller.
func (s *Session) SetDecisions(plantArea, shipQty, price, demandMarket float64) error {
	d := sim.Decisions{
		PlantArea:    plantArea,
		ShipQty:      shipQty,
		Price:        price,
		DemandMarket: demandMarket,
	}
	if err := d.Validate(); err != nil {
		return err
	}
	s.decisions = d
	return nil
}

// Advance resolves the turn's random draws, runs the transition,
// replaces the current state and decisions, and appends the snapshot
// to history.
func (s *Session) Advance() sim.State {
	d := s.decisions
	d.DemandMarket = s.demand.Resolve(s.state.Turn, d.DemandMarket, s.rng)

	w := weather.Clear
	if s.weatherOn {
		w = weather.Draw(s.rng)
	}

	next := sim.Advance(s.state, d, s.params, w)
	s.state = next
	s.decisions = d
	s.history = append(s.history, Snapshot{
		State:      next,
		Decisions:  d,
		Parameters: s.params,
	})

	slog.Debug("turn advanced",
		"session", s.id,
		"turn", next.Turn,
		"weather", next.Weather,
		"sales", next.Sales,
		"profit_turn", next.ProfitTurn,
		"cash", next.Cash,
	)
	return next
}

// Current returns the live state, decisions, and parameters.
func (s *Session) Current() Snapshot {
	return Snapshot{
		State:      s.state,
		Decisions:  s.decisions,
		Parameters: s.params,
	}
}

// History returns the ordered post-advance snapshots. Index 0 is turn
// 1; the turn-0 state is never recorded. The returned slice is the
// caller's to keep.
func (s *Session) History() []Snapshot {
	out := make([]Snapshot, len(s.history))
	copy(out, s.history)
	return out
}
