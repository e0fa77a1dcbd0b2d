package density

import (
	"fmt"
)

type State int

const (
	Determined State = iota
	Undetermined
	NotSpecified
)

var stateNames = [...]string{
	Determined:   "determined",
	Undetermined: "undetermined",
	NotSpecified: "not_specified",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown density state %q", string(b))
}

// Source names where a theoretical density came from.
type Source string

const (
	SourceComposition  Source = "composition"
	SourceAlloy        Source = "alloy"
	SourceUndetermined Source = "undetermined"
)

const (
	ReasonNoComposition   = "no composition"
	ReasonNoValidEntries  = "no valid components"
	ReasonNoAlloy         = "no standard alloy linked"
	ReasonNoDensitySource = "part has no density source"
)

// Result is a density that may not exist. Value is only meaningful when
// State is Determined.
type Result struct {
	State  State   `json:"state"`
	Value  float64 `json:"density"`
	Source Source  `json:"source"`
	Reason string  `json:"reason,omitempty"`
}

func determined(value float64, source Source) Result {
	return Result{State: Determined, Value: value, Source: source}
}

func undetermined(reason string) Result {
	return Result{State: Undetermined, Source: SourceUndetermined, Reason: reason}
}

func (r Result) IsDetermined() bool {
	return r.State == Determined
}

// Get returns the density and whether it was determined.
func (r Result) Get() (float64, bool) {
	return r.Value, r.State == Determined
}
