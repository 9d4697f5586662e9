package cli

// Action is what a key press asks the interactive session to do.
type Action int

const (
	ActionNone Action = iota
	ActionStep
	ActionPlay
	ActionPause
	ActionReset
	ActionQuit
)

// keyBindings maps single key presses to actions. Anything else is ignored.
// Ctrl+C and Ctrl+D are bound because raw mode swallows the signals they usually raise.
var keyBindings = map[byte]Action{
	' ':  ActionStep,
	'\r': ActionStep,
	'\n': ActionStep,
	'p':  ActionPlay,
	'P':  ActionPlay,
	's':  ActionPause,
	'S':  ActionPause,
	'r':  ActionReset,
	'R':  ActionReset,
	'q':  ActionQuit,
	'Q':  ActionQuit,
	0x03: ActionQuit,
	0x04: ActionQuit,
}

// route returns the action bound to key.
func route(key byte) Action {
	return keyBindings[key]
}

// keyHelp is printed under the banner in interactive mode.
const keyHelp = "[space/enter] step  [p] play  [s] pause  [r] reset  [q] quit"
