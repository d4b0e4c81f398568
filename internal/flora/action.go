package flora

import (
	"encoding/json"
	"fmt"
)

// Action identifies what happened to a flower: the outcome of a tending
// pass, or a lifecycle change in a garden.
type Action int

const (
	// ActionNone means the flower was visited and left unchanged.
	ActionNone Action = iota
	// ActionGrow means the flower grew.
	ActionGrow
	// ActionWither means the flower withered.
	ActionWither
	// ActionPlant means the flower was added to a garden.
	ActionPlant
	// ActionUproot means the flower was removed from a garden.
	ActionUproot
)

// String returns the lowercase name of the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionGrow:
		return "grow"
	case ActionWither:
		return "wither"
	case ActionPlant:
		return "plant"
	case ActionUproot:
		return "uproot"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction maps a name produced by String back to its Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "none":
		return ActionNone, nil
	case "grow":
		return ActionGrow, nil
	case "wither":
		return ActionWither, nil
	case "plant":
		return ActionPlant, nil
	case "uproot":
		return ActionUproot, nil
	default:
		return ActionNone, fmt.Errorf("flora: unknown action %q", s)
	}
}

// MarshalJSON encodes the action as its string name.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes an action from its string name.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
