package txn

import "errors"

// Errors returned by transaction primitives.
var (
	// ErrDestroyed indicates the editor was torn down while a mutation was in progress.
	ErrDestroyed = errors.New("editor destroyed")

	// ErrInvalidPoint indicates a point that is unset or out of range.
	ErrInvalidPoint = errors.New("invalid point")

	// ErrInvalidNode indicates a node that cannot take part in the requested mutation.
	ErrInvalidNode = errors.New("invalid node")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrHashMismatch indicates the document changed outside of recorded transactions.
	ErrHashMismatch = errors.New("document hash mismatch")

	// ErrNoBatch indicates a commit without a matching begin.
	ErrNoBatch = errors.New("no open transaction batch")
)
