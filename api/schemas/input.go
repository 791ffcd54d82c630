package schemas

// -- Input Primitive Schemas --

// MouseButton identifies which pointer button an interaction uses.
type MouseButton string

const (
	MouseLeft   MouseButton = "left"
	MouseRight  MouseButton = "right"
	MouseMiddle MouseButton = "middle"
)

// Axis identifies the direction of a scroll gesture.
type Axis string

const (
	AxisVertical   Axis = "vertical"
	AxisHorizontal Axis = "horizontal"
)

// KeyModifier is a bitmask of held modifier keys. The values correspond
// directly to the CDP input.DispatchKeyEvent modifiers bitfield.
type KeyModifier int

const (
	ModNone  KeyModifier = 0
	ModAlt   KeyModifier = 1
	ModCtrl  KeyModifier = 2
	ModMeta  KeyModifier = 4
	ModShift KeyModifier = 8
)

// KeyEventData represents a structured key press, including the main key and
// any active modifiers.
type KeyEventData struct {
	// Key is the primary key pressed (e.g. "a", "Enter", "Tab"). The string
	// must match what the underlying backend expects.
	Key string
	// Modifiers is a bitmask of active modifiers.
	Modifiers KeyModifier
}

// Common key combinations used by the sequence interpreter.
var (
	KeySelectAll = KeyEventData{Key: "a", Modifiers: ModCtrl}
	KeyCopy      = KeyEventData{Key: "c", Modifiers: ModCtrl}
	KeyPaste     = KeyEventData{Key: "v", Modifiers: ModCtrl}
	KeyBackspace = KeyEventData{Key: "Backspace"}
)
