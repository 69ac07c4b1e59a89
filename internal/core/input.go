package core

// Action represents a semantic puzzle action, abstracted from physical key
// presses and mouse clicks.
type Action int

const (
	ActionNone    Action = iota
	ActionLeft           // Move the cursor to the previous bottle in the row
	ActionRight          // Move the cursor to the next bottle in the row
	ActionUp             // Move the cursor to the row above
	ActionDown           // Move the cursor to the row below
	ActionTap            // Tap the bottle under the cursor
	ActionUnlock         // Grant a pending unlock request
	ActionHint           // Ask the solver for the next pour
	ActionRestart        // Reload the current level
	ActionNext           // Go to the next level once solved
	ActionBack           // Back to the level picker
	ActionQuit           // Exit the session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionTap:
		return "Tap"
	case ActionUnlock:
		return "Unlock"
	case ActionHint:
		return "Hint"
	case ActionRestart:
		return "Restart"
	case ActionNext:
		return "Next"
	case ActionBack:
		return "Back"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// IsMovement reports whether the action moves the cursor.
func (a Action) IsMovement() bool {
	switch a {
	case ActionLeft, ActionRight, ActionUp, ActionDown:
		return true
	}
	return false
}
