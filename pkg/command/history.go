package command

import (
	"volmeasure/pkg/event"
	"volmeasure/pkg/logging"
)

// HistoryEvent is published when the history changes.
type HistoryEvent struct {
	Type    string
	Command Command
}

// History is an undo/redo stack of executed commands.
type History struct {
	stack []Command
	// current is the number of applied commands in stack.
	current  int
	maxDepth int

	Events event.Bus[HistoryEvent]
}

// NewHistory returns an empty history keeping at most maxDepth commands,
// without limit when maxDepth <= 0.
func NewHistory(maxDepth int) *History {
	return &History{maxDepth: maxDepth}
}

// Len returns the number of stored commands.
func (h *History) Len() int { return len(h.stack) }

// CanUndo reports whether a command can be undone.
func (h *History) CanUndo() bool { return h.current > 0 }

// CanRedo reports whether an undone command can be executed again.
func (h *History) CanRedo() bool { return h.current < len(h.stack) }

// Add stores an already executed command. Commands after the current one
// are dropped. Invalid commands are not stored.
func (h *History) Add(cmd Command) bool {
	if cmd == nil || !cmd.IsValid() {
		logging.Logger().Warn("command: dropping invalid command")
		return false
	}
	h.stack = append(h.stack[:h.current], cmd)
	if h.maxDepth > 0 && len(h.stack) > h.maxDepth {
		drop := len(h.stack) - h.maxDepth
		h.stack = append(h.stack[:0], h.stack[drop:]...)
	}
	h.current = len(h.stack)
	h.Events.Publish(HistoryEvent{Type: event.UndoAdd, Command: cmd})
	return true
}

// Execute runs a valid command and stores it.
func (h *History) Execute(cmd Command) bool {
	if cmd == nil || !cmd.IsValid() {
		logging.Logger().Warn("command: dropping invalid command")
		return false
	}
	cmd.Execute()
	return h.Add(cmd)
}

// Undo reverts the current command.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.current--
	cmd := h.stack[h.current]
	cmd.Undo()
	h.Events.Publish(HistoryEvent{Type: event.Undo, Command: cmd})
	return true
}

// Redo executes again the last undone command.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	cmd := h.stack[h.current]
	cmd.Execute()
	h.current++
	h.Events.Publish(HistoryEvent{Type: event.Redo, Command: cmd})
	return true
}

// Reset clears the history.
func (h *History) Reset() {
	h.stack = nil
	h.current = 0
}
