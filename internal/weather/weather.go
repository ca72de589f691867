// Package weather provides the categorical weather draw and its
// harvest modifiers.
package weather

import "github.com/croplab/veggiechain/internal/entropy"

// Condition is one drawable weather state. The multiplier scales the
// harvest realized on the turn it is drawn for.
type Condition struct {
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
}

// Clear is the implicit condition for runs with weather disabled:
// harvest passes through unmodified.
var Clear = Condition{Multiplier: 1.0}

// catalog is the fixed set of drawable conditions.
var catalog = []Condition{
	{Label: "Sunny", Multiplier: 1.2},
	{Label: "Rainy", Multiplier: 1.0},
	{Label: "Storm", Multiplier: 0.7},
}

// Catalog returns the drawable conditions in draw order.
func Catalog() []Condition {
	out := make([]Condition, len(catalog))
	copy(out, catalog)
	return out
}

// Draw selects one condition uniformly at random.
func Draw(src entropy.Source) Condition {
	return catalog[src.IntN(len(catalog))]
}
