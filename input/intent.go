package input

// IntentType discriminates semantic actions
type IntentType uint8

const (
	IntentNone IntentType = iota

	// System-level intents
	IntentQuit    // Esc, Ctrl+C, q
	IntentRestart // r on the ending screen
	IntentResize  // Terminal resize event

	// Pointer
	IntentMove  // Mouse motion
	IntentClick // Left button press edge, or Space/Enter at the last pointer cell
)

func (t IntentType) String() string {
	switch t {
	case IntentNone:
		return "none"
	case IntentQuit:
		return "quit"
	case IntentRestart:
		return "restart"
	case IntentResize:
		return "resize"
	case IntentMove:
		return "move"
	case IntentClick:
		return "click"
	default:
		return "unknown"
	}
}

// Intent is a parsed input action in terminal cell coordinates
type Intent struct {
	Type IntentType
	X, Y int // Pointer cell for Move/Click, dimensions for Resize
}
