package schemas

import "fmt"

// -- Action Sequence Schemas --

// ActionType defines the kind of step to perform in a sequence.
type ActionType string

const (
	ActionClickArea   ActionType = "click_area"
	ActionTypeText    ActionType = "type_text"
	ActionTypeDynamic ActionType = "type_dynamic_text"
	ActionSelectAll   ActionType = "select_all"
	ActionCopy        ActionType = "copy"
	ActionPaste       ActionType = "paste"
	ActionPressKey    ActionType = "press_key"
	ActionScroll      ActionType = "scroll"
	ActionWait        ActionType = "wait"
)

// KnownActionTypes lists every valid action type, in documentation order.
var KnownActionTypes = []ActionType{
	ActionClickArea,
	ActionTypeText,
	ActionTypeDynamic,
	ActionSelectAll,
	ActionCopy,
	ActionPaste,
	ActionPressKey,
	ActionScroll,
	ActionWait,
}

// Action is a single declarative step in an interaction sequence. The set of
// meaningful fields depends on Type; Validate enforces the per-type contract
// once at load time so dispatch never sees a malformed step.
type Action struct {
	Type ActionType `json:"type"`

	// Area names a click target for click_area steps.
	Area string `json:"area,omitempty"`
	// Text is the literal input for type_text steps.
	Text string `json:"text,omitempty"`
	// Template is the parameterized input for type_dynamic_text steps.
	// Supported placeholders: {number}, {prefix}, {suffix}.
	Template string `json:"template,omitempty"`
	// Key names the key for press_key steps (e.g. "Enter", "Tab").
	Key string `json:"key,omitempty"`
	// Amount is the scroll magnitude for scroll steps; sign selects direction.
	Amount int `json:"amount,omitempty"`
	// Axis selects the scroll direction for scroll steps; vertical when empty.
	Axis Axis `json:"axis,omitempty"`
	// Seconds is the pause length for wait steps.
	Seconds float64 `json:"seconds,omitempty"`

	// WaitMin/WaitMax bound an optional post-action delay in seconds, drawn
	// uniformly after the step completes.
	WaitMin float64 `json:"wait_min,omitempty"`
	WaitMax float64 `json:"wait_max,omitempty"`
}

// Validate checks the per-type required fields and the post-action delay range.
func (a Action) Validate() error {
	switch a.Type {
	case ActionClickArea:
		if a.Area == "" {
			return fmt.Errorf("click_area action requires an area name")
		}
	case ActionTypeText:
		if a.Text == "" {
			return fmt.Errorf("type_text action requires text")
		}
	case ActionTypeDynamic:
		if a.Template == "" {
			return fmt.Errorf("type_dynamic_text action requires a template")
		}
	case ActionPressKey:
		if a.Key == "" {
			return fmt.Errorf("press_key action requires a key")
		}
	case ActionScroll:
		if a.Amount == 0 {
			return fmt.Errorf("scroll action requires a non-zero amount")
		}
		if a.Axis != "" && a.Axis != AxisVertical && a.Axis != AxisHorizontal {
			return fmt.Errorf("scroll action has unknown axis %q", a.Axis)
		}
	case ActionWait:
		if a.Seconds <= 0 {
			return fmt.Errorf("wait action requires positive seconds, got %v", a.Seconds)
		}
	case ActionSelectAll, ActionCopy, ActionPaste:
		// No parameters.
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}

	if a.WaitMin < 0 || a.WaitMax < 0 {
		return fmt.Errorf("%s action has negative wait bounds [%v, %v]", a.Type, a.WaitMin, a.WaitMax)
	}
	if a.WaitMax > 0 && a.WaitMin > a.WaitMax {
		return fmt.Errorf("%s action has inverted wait bounds [%v, %v]", a.Type, a.WaitMin, a.WaitMax)
	}
	return nil
}

// Sequence is a named, ordered list of actions.
type Sequence struct {
	Name    string   `json:"name"`
	Actions []Action `json:"actions"`
}

// SequenceSet is the on-disk collection of named sequences.
type SequenceSet struct {
	Sequences map[string][]Action `json:"sequences"`
}

// Find returns the named sequence, if present.
func (s *SequenceSet) Find(name string) (Sequence, bool) {
	actions, ok := s.Sequences[name]
	if !ok {
		return Sequence{}, false
	}
	return Sequence{Name: name, Actions: actions}, true
}

// Validate checks every action of every sequence. Area references are checked
// against the supplied set when it is non-nil.
func (s *SequenceSet) Validate(areas *AreaSet) error {
	for name, actions := range s.Sequences {
		if len(actions) == 0 {
			return fmt.Errorf("sequence %q is empty", name)
		}
		for i, act := range actions {
			if err := act.Validate(); err != nil {
				return fmt.Errorf("sequence %q action %d: %w", name, i, err)
			}
			if act.Type == ActionClickArea && areas != nil {
				if _, ok := areas.Find(act.Area); !ok {
					return fmt.Errorf("sequence %q action %d references unknown area %q", name, i, act.Area)
				}
			}
		}
	}
	return nil
}
