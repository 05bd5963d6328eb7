package htmledit

import (
	"errors"

	"github.com/dannyswat/htmledit/internal/txn"
)

var (
	// ErrEditorDestroyed is returned when the editor was torn down while an action ran,
	// typically by a mutation listener. It is never retried.
	ErrEditorDestroyed = txn.ErrDestroyed
	// ErrUnexpectedDOMTree means the tree no longer has a shape the action relies on.
	ErrUnexpectedDOMTree = errors.New("unexpected DOM tree")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNoSelection       = errors.New("no selection range")
	ErrFailed            = errors.New("edit failed")
	ErrNotInEditingHost  = errors.New("point is outside the editing host")
	ErrActionInProgress  = errors.New("a top-level action is in progress")
)

// isFatal reports whether err must abort the enclosing action instead of being logged.
func isFatal(err error) bool {
	return errors.Is(err, ErrEditorDestroyed) || errors.Is(err, ErrUnexpectedDOMTree)
}
