package sim

import "fmt"

// ConfigError reports a parameter that breaks the rules of the world:
// an unknown override name or an out-of-range value.
type ConfigError struct {
	Name   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Name, e.Reason)
}

// InvalidInputError reports a decision value that is not a usable
// number (NaN or infinite). The decision set that produced it is
// discarded without touching session state.
type InvalidInputError struct {
	Field string
	Value float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("decision %q: %v is not a finite number", e.Field, e.Value)
}
