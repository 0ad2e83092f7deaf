package editor

import (
	"fmt"

	"map-renderer/voxel"
)

// Command represents an undoable editor action
type Command interface {
	Execute()
	Undo()
	Description() string
}

// History manages undo/redo stacks
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
}

// NewHistory creates a new history with the given max undo depth
func NewHistory(maxDepth int) *History {
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  maxDepth,
	}
}

// Do executes a command and pushes it to the undo stack
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	// Clear redo stack on new action
	h.redoStack = h.redoStack[:0]
}

// Undo reverts the last action
func (h *History) Undo() bool {
	if len(h.undoStack) == 0 {
		return false
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	return true
}

// Redo reapplies the last undone action
func (h *History) Redo() bool {
	if len(h.redoStack) == 0 {
		return false
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	return true
}

// CanUndo returns whether there are actions to undo
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo returns whether there are actions to redo
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Clear wipes all undo/redo history
func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

// --- Concrete Commands ---

// SetVoxelCommand writes one cell and restores its previous color on undo.
// Color 0 clears the cell.
type SetVoxelCommand struct {
	Map      *voxel.Map
	X, Y, Z  int
	NewColor uint32
	OldColor uint32
}

func NewSetVoxelCommand(m *voxel.Map, x, y, z int, color uint32) *SetVoxelCommand {
	x, y = m.Wrap(x, y)
	return &SetVoxelCommand{Map: m, X: x, Y: y, Z: z, NewColor: color, OldColor: m.Color(x, y, z)}
}

func (c *SetVoxelCommand) Execute() { c.apply(c.NewColor) }
func (c *SetVoxelCommand) Undo()    { c.apply(c.OldColor) }

func (c *SetVoxelCommand) Description() string {
	if c.NewColor>>24 == 0 {
		return fmt.Sprintf("Dig (%d, %d, %d)", c.X, c.Y, c.Z)
	}
	return fmt.Sprintf("Place (%d, %d, %d)", c.X, c.Y, c.Z)
}

func (c *SetVoxelCommand) apply(color uint32) {
	if color>>24 == 0 {
		c.Map.Clear(c.X, c.Y, c.Z)
		return
	}
	c.Map.Set(c.X, c.Y, c.Z, color)
}
