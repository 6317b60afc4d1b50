package input

import (
	"github.com/gdamore/tcell/v2"
)

// Machine parses tcell events into Intents
// Tracks button state so a held button yields exactly one click
type Machine struct {
	buttons tcell.ButtonMask
	x, y    int
}

// NewMachine creates a new input machine
func NewMachine() *Machine {
	return &Machine{}
}

// Process converts one terminal event; unrelated events map to IntentNone
func (m *Machine) Process(ev tcell.Event) Intent {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return m.key(ev)

	case *tcell.EventMouse:
		x, y := ev.Position()
		m.x, m.y = x, y
		btn := ev.Buttons()
		pressed := btn&tcell.Button1 != 0 && m.buttons&tcell.Button1 == 0
		m.buttons = btn
		if pressed {
			return Intent{Type: IntentClick, X: x, Y: y}
		}
		return Intent{Type: IntentMove, X: x, Y: y}

	case *tcell.EventResize:
		w, h := ev.Size()
		return Intent{Type: IntentResize, X: w, Y: h}
	}
	return Intent{}
}

func (m *Machine) key(ev *tcell.EventKey) Intent {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return Intent{Type: IntentQuit}
	case tcell.KeyEnter:
		return Intent{Type: IntentClick, X: m.x, Y: m.y}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return Intent{Type: IntentQuit}
		case 'r':
			return Intent{Type: IntentRestart}
		case ' ':
			return Intent{Type: IntentClick, X: m.x, Y: m.y}
		}
	}
	return Intent{}
}

// Frame accumulates pointer intents between frame ticks
// Position is last-wins until a click latches it; the click holds its cell until Take
type Frame struct {
	X, Y  int
	click bool
	seen  bool
}

// Apply folds a pointer intent into the frame
func (f *Frame) Apply(in Intent) {
	switch in.Type {
	case IntentMove, IntentClick:
		if f.click {
			return
		}
		f.X, f.Y = in.X, in.Y
		f.seen = true
		if in.Type == IntentClick {
			f.click = true
		}
	}
}

// Take returns the pointer state and clears the click latch
func (f *Frame) Take() (x, y int, click, seen bool) {
	x, y, click, seen = f.X, f.Y, f.click, f.seen
	f.click = false
	return
}
