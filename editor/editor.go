// Package editor lets the user dig and place voxels under the cursor with
// undo and redo.
package editor

import (
	"fmt"

	"map-renderer/core"
	"map-renderer/scene"
	"map-renderer/voxel"
)

// ReachDistance limits how far away the cursor can edit.
const ReachDistance = 96

// Editor is the per-frame voxel editing state
type Editor struct {
	History *History
	Input   *InputManager
	Map     *voxel.Map

	// Brush is the 0xRRGGBB color of placed voxels
	Brush uint32

	// Status info
	StatusText string
}

// NewEditor watches extra in addition to the editor's own shortcut keys, so
// callers can share one InputManager.
func NewEditor(window Window, m *voxel.Map, extra ...int) *Editor {
	keys := append([]int{core.KeyZ, core.KeyY}, extra...)
	return &Editor{
		History:    NewHistory(100),
		Input:      NewInputManager(window, keys...),
		Map:        m,
		Brush:      0xC08040,
		StatusText: "Ready",
	}
}

// Update processes one frame of editor input. Left click digs the voxel
// under the cursor; middle click places one against the face under it.
func (e *Editor) Update(camera *scene.Camera, width, height int) {
	e.Input.Update()

	e.handleShortcuts()
	e.handleMouseEdits(camera, width, height)
}

func (e *Editor) handleShortcuts() {
	// Undo: Ctrl+Z
	if e.Input.IsShortcut(core.KeyZ) && !e.Input.ShiftDown {
		if e.History.Undo() {
			e.StatusText = "Undo"
		}
	}
	// Redo: Ctrl+Y or Ctrl+Shift+Z
	if e.Input.IsShortcut(core.KeyY) || (e.Input.IsShortcut(core.KeyZ) && e.Input.ShiftDown) {
		if e.History.Redo() {
			e.StatusText = "Redo"
		}
	}
}

func (e *Editor) handleMouseEdits(camera *scene.Camera, width, height int) {
	dig := e.Input.IsMousePressed(core.MouseButtonLeft)
	place := e.Input.IsMousePressed(core.MouseButtonMiddle)
	if (!dig && !place) || width <= 0 || height <= 0 {
		return
	}

	ray := ScreenToRay(
		float32(e.Input.MouseX), float32(e.Input.MouseY),
		float32(width), float32(height),
		camera,
	)
	hit := RaycastMap(ray, e.Map, ReachDistance)
	if !hit.Hit {
		e.StatusText = "Nothing in reach"
		return
	}

	var cmd *SetVoxelCommand
	if dig {
		cmd = NewSetVoxelCommand(e.Map, hit.Voxel[0], hit.Voxel[1], hit.Voxel[2], 0)
	} else {
		a := hit.Adjacent(e.Map)
		if !e.Map.InBounds(a[0], a[1], a[2]) {
			e.StatusText = "Out of bounds"
			return
		}
		cmd = NewSetVoxelCommand(e.Map, a[0], a[1], a[2], 0xFF000000|e.Brush)
	}
	e.History.Do(cmd)
	e.StatusText = cmd.Description()
}

// GetStats returns history depth for the status line
func (e *Editor) GetStats() string {
	return fmt.Sprintf("undo %d redo %d", len(e.History.undoStack), len(e.History.redoStack))
}
