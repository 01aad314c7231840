package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEditing is returned when a mutation arrives outside an edit session.
	ErrNotEditing = errors.New("layout: not in edit mode")
	// ErrDragActive is returned when a drag starts while one is in flight.
	ErrDragActive = errors.New("layout: drag already active")
	// ErrNoDrag is returned when hover/drop arrives with no active drag.
	ErrNoDrag = errors.New("layout: no active drag")
	// ErrUnknownWidget is returned when an operation names an unregistered widget.
	ErrUnknownWidget = errors.New("layout: unknown widget")
	// ErrUnknownPreset is returned when a preset id cannot be resolved.
	ErrUnknownPreset = errors.New("layout: unknown preset")
	// ErrBuiltinPreset is returned when a mutation targets a factory preset.
	ErrBuiltinPreset = errors.New("layout: built-in presets are immutable")
)

// ValidationError rejects a field value before any state mutates.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("layout: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
