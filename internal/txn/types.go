// Package txn performs undoable tree mutations. Every primitive records a path-addressed
// Operation into the open Delta, keeps tracked points valid, and notifies listeners.
package txn

import (
	"golang.org/x/net/html"

	"github.com/dannyswat/htmledit/internal/dom"
)

type OpType string

const (
	OpInsertNode OpType = "INSERT_NODE" // Insert a new node
	OpDeleteNode OpType = "DELETE_NODE" // Remove a node
	OpMoveNode   OpType = "MOVE_NODE"   // Reparent or reorder a node
	OpUpdateAttr OpType = "UPDATE_ATTR" // Change/Add an attribute
	OpRemoveAttr OpType = "REMOVE_ATTR" // Remove an attribute
	OpInsertText OpType = "INSERT_TEXT" // Insert text at position
	OpDeleteText OpType = "DELETE_TEXT" // Delete text at position
	OpSplitNode  OpType = "SPLIT_NODE"  // Split a node, the new node follows the original
	OpJoinNodes  OpType = "JOIN_NODES"  // Append a node's next sibling into it
)

// Operation represents an atomic change to the HTML structure.
type Operation struct {
	Type     OpType           `json:"type"`
	Path     dom.NodePath     `json:"path"`
	ToPath   dom.NodePath     `json:"to_path,omitempty"`   // For MoveNode: destination parent
	Key      string           `json:"key,omitempty"`       // For Attributes (name of the attribute)
	OldValue string           `json:"old_value,omitempty"` // Previous value
	NewValue string           `json:"new_value,omitempty"` // New value. For InsertText: text to insert.
	Existed  bool             `json:"existed,omitempty"`   // For UpdateAttr: attribute was present before
	NodeData string           `json:"node_data,omitempty"` // For Insert/Delete: The HTML string of the node
	Position int              `json:"position,omitempty"`  // Child index, or offset for text and split/join.
	Attr     []html.Attribute `json:"attr,omitempty"`      // For Split/Join: attributes of the right node
}

// PathPoint is a boundary point addressed by path, valid against one document state.
type PathPoint struct {
	Path   dom.NodePath `json:"path"`
	Offset int          `json:"offset"`
}

// PathRange is a range addressed by paths.
type PathRange struct {
	Start PathPoint `json:"start"`
	End   PathPoint `json:"end"`
}

// Delta represents the changes of one top-level edit action.
type Delta struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	BaseHash        string      `json:"base_hash"`   // Hash of the document before the delta
	ResultHash      string      `json:"result_hash"` // Hash of the document after the delta
	Operations      []Operation `json:"operations"`
	SelectionBefore []PathRange `json:"selection_before,omitempty"`
	SelectionAfter  []PathRange `json:"selection_after,omitempty"`
	Timestamp       int64       `json:"timestamp"`
	Author          string      `json:"author"`
}

// MutationKind classifies a notification sent to listeners.
type MutationKind int

const (
	NodeInserted MutationKind = iota
	NodeRemoved
	NodeMoved
	CharacterDataChanged
	AttributeChanged
	NodeSplit
	NodesJoined
)

func (k MutationKind) String() string {
	switch k {
	case NodeInserted:
		return "node-inserted"
	case NodeRemoved:
		return "node-removed"
	case NodeMoved:
		return "node-moved"
	case CharacterDataChanged:
		return "character-data-changed"
	case AttributeChanged:
		return "attribute-changed"
	case NodeSplit:
		return "node-split"
	case NodesJoined:
		return "nodes-joined"
	default:
		return "unknown"
	}
}

// Mutation describes a completed primitive. Node is the affected node; Parent and
// Offset locate it (for removals, where it used to be).
type Mutation struct {
	Kind   MutationKind
	Node   *html.Node
	Other  *html.Node // the new right node of a split, the removed right node of a join
	Parent *html.Node
	Offset int
	Length int
}

// Listener observes mutations. It runs synchronously and may mutate the tree.
type Listener func(m Mutation)
