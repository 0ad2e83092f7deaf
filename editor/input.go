package editor

import (
	"map-renderer/core"
)

// Window is the part of core.Window the input manager polls.
type Window interface {
	GetCursorPos() (float64, float64)
	IsKeyPressed(key int) bool
	IsMouseButtonPressed(button int) bool
}

// InputManager turns polled key and button levels into per-frame edges.
type InputManager struct {
	// Mouse state
	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64

	// Button states
	mouseButtons     [8]bool
	mouseButtonsPrev [8]bool

	// Key states, indexed like watched
	watched  []int
	keys     []bool
	keysPrev []bool

	ShiftDown bool
	CtrlDown  bool

	window     Window
	firstFrame bool
}

// NewInputManager polls the given keys every frame. Keys not listed always
// read as up.
func NewInputManager(window Window, keys ...int) *InputManager {
	return &InputManager{
		window:     window,
		watched:    keys,
		keys:       make([]bool, len(keys)),
		keysPrev:   make([]bool, len(keys)),
		firstFrame: true,
	}
}

// Update should be called once per frame, after polling window events.
func (im *InputManager) Update() {
	x, y := im.window.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX = x
		im.lastMouseY = y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX = x
	im.lastMouseY = y
	im.MouseX = x
	im.MouseY = y

	im.mouseButtonsPrev = im.mouseButtons
	copy(im.keysPrev, im.keys)

	for _, b := range []int{core.MouseButtonLeft, core.MouseButtonRight, core.MouseButtonMiddle} {
		im.mouseButtons[b] = im.window.IsMouseButtonPressed(b)
	}

	im.ShiftDown = im.window.IsKeyPressed(core.KeyLeftShift)
	im.CtrlDown = im.window.IsKeyPressed(core.KeyLeftControl)

	for i, k := range im.watched {
		im.keys[i] = im.window.IsKeyPressed(k)
	}
}

// --- Mouse Queries ---

func (im *InputManager) IsMouseDown(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button]
}

func (im *InputManager) IsMousePressed(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button] && !im.mouseButtonsPrev[button]
}

// --- Key Queries ---

func (im *InputManager) slot(key int) int {
	for i, k := range im.watched {
		if k == key {
			return i
		}
	}
	return -1
}

func (im *InputManager) IsKeyDown(key int) bool {
	i := im.slot(key)
	return i >= 0 && im.keys[i]
}

func (im *InputManager) IsKeyPressed(key int) bool {
	i := im.slot(key)
	return i >= 0 && im.keys[i] && !im.keysPrev[i]
}

// IsShortcut checks for a Ctrl+key press
func (im *InputManager) IsShortcut(key int) bool {
	return im.CtrlDown && im.IsKeyPressed(key)
}
