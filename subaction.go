package htmledit

// SubAction identifies the edit a top-level action performs. Behavior that depends on it
// is read from subActionTraits so every value has an explicit entry.
type SubAction int

const (
	SubActionNone SubAction = iota
	SubActionInsertText
	SubActionInsertTextComingFromIME
	SubActionInsertLineBreak
	SubActionInsertParagraphSeparator
	SubActionDeleteSelectedContent
	SubActionCreateOrRemoveBlock
	SubActionCreateOrChangeList
	SubActionRemoveList
	SubActionIndent
	SubActionOutdent
	SubActionSetOrClearAlignment
	SubActionSetPositionToAbsolute
	SubActionSetPositionToStatic
	SubActionMergeBlockContents
	SubActionInsertElement
	SubActionInsertQuotation
	SubActionInsertQuotedText
	SubActionPasteHTMLContent
	SubActionReplaceHeadWithHTMLSource
	SubActionCreatePaddingBRElementForEmptyEditor
	SubActionUndo
	SubActionRedo

	subActionCount
)

// changedRangeExtent says how the changed range is widened before cleanup.
type changedRangeExtent uint8

const (
	extendToAdjacentWhitespace changedRangeExtent = iota
	extendToHardLine
)

type subActionTraits struct {
	name string
	// skipCleanup suppresses every post-processing step of the bracket.
	skipCleanup bool
	extent      changedRangeExtent
	// cachesInlineStyles keeps the caret's inline styles for typing after the action.
	cachesInlineStyles bool
	// keepsTextNodes skips joining adjacent text nodes.
	keepsTextNodes bool
	// normalizesWhitespace normalizes around the caret and the original selection.
	normalizesWhitespace bool
	// adjustsCaret moves the caret to a good point and pads an empty last line.
	adjustsCaret bool
	// splitsAtLineBreaks makes the collector split inline containers at every <br>.
	splitsAtLineBreaks bool
}

var subActionTable = [subActionCount]subActionTraits{
	SubActionNone: {
		name: "none", extent: extendToHardLine,
	},
	SubActionInsertText: {
		name: "insert-text", extent: extendToAdjacentWhitespace, cachesInlineStyles: true,
		keepsTextNodes: true, normalizesWhitespace: true, adjustsCaret: true,
	},
	SubActionInsertTextComingFromIME: {
		name: "insert-text-ime", extent: extendToAdjacentWhitespace, cachesInlineStyles: true,
		normalizesWhitespace: true, adjustsCaret: true,
	},
	SubActionInsertLineBreak: {
		name: "insert-line-break", extent: extendToAdjacentWhitespace, cachesInlineStyles: true,
		adjustsCaret: true,
	},
	SubActionInsertParagraphSeparator: {
		name: "insert-paragraph", extent: extendToAdjacentWhitespace, cachesInlineStyles: true,
		adjustsCaret: true,
	},
	SubActionDeleteSelectedContent: {
		name: "delete", extent: extendToAdjacentWhitespace, cachesInlineStyles: true,
		normalizesWhitespace: true, adjustsCaret: true,
	},
	SubActionCreateOrRemoveBlock: {
		name: "format-block", extent: extendToHardLine, cachesInlineStyles: true, splitsAtLineBreaks: true,
	},
	SubActionCreateOrChangeList: {
		name: "make-list", extent: extendToHardLine, cachesInlineStyles: true, splitsAtLineBreaks: true,
	},
	SubActionRemoveList: {
		name: "remove-list", extent: extendToHardLine, cachesInlineStyles: true,
	},
	SubActionIndent: {
		name: "indent", extent: extendToHardLine, cachesInlineStyles: true, splitsAtLineBreaks: true,
	},
	SubActionOutdent: {
		name: "outdent", extent: extendToHardLine, cachesInlineStyles: true, splitsAtLineBreaks: true,
	},
	SubActionSetOrClearAlignment: {
		name: "align", extent: extendToHardLine, cachesInlineStyles: true, splitsAtLineBreaks: true,
	},
	SubActionSetPositionToAbsolute: {
		name: "set-absolute-position", extent: extendToHardLine, splitsAtLineBreaks: true,
	},
	SubActionSetPositionToStatic: {
		name: "set-static-position", extent: extendToHardLine,
	},
	SubActionMergeBlockContents: {
		name: "merge-blocks", extent: extendToHardLine, cachesInlineStyles: true,
	},
	SubActionInsertElement: {
		name: "insert-element", extent: extendToHardLine, cachesInlineStyles: true, adjustsCaret: true,
	},
	SubActionInsertQuotation: {
		name: "insert-quotation", extent: extendToHardLine, cachesInlineStyles: true, adjustsCaret: true,
	},
	SubActionInsertQuotedText: {
		name: "insert-quoted-text", extent: extendToHardLine, cachesInlineStyles: true,
		normalizesWhitespace: true, adjustsCaret: true,
	},
	SubActionPasteHTMLContent: {
		name: "paste-html", extent: extendToHardLine, normalizesWhitespace: true, adjustsCaret: true,
	},
	SubActionReplaceHeadWithHTMLSource: {
		name: "replace-head", skipCleanup: true,
	},
	SubActionCreatePaddingBRElementForEmptyEditor: {
		name: "create-padding-br", skipCleanup: true,
	},
	SubActionUndo: {
		name: "undo", extent: extendToHardLine,
	},
	SubActionRedo: {
		name: "redo", extent: extendToHardLine,
	},
}

func (s SubAction) traits() subActionTraits {
	if s < 0 || s >= subActionCount {
		return subActionTraits{name: "unknown", skipCleanup: true}
	}
	return subActionTable[s]
}

func (s SubAction) String() string {
	return s.traits().name
}

// Direction is the direction and amount of a deletion.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionNext
	DirectionPrevious
	DirectionNextWord
	DirectionPreviousWord
	DirectionToBeginningOfLine
	DirectionToEndOfLine
)

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionNext:
		return "next"
	case DirectionPrevious:
		return "previous"
	case DirectionNextWord:
		return "next-word"
	case DirectionPreviousWord:
		return "previous-word"
	case DirectionToBeginningOfLine:
		return "to-beginning-of-line"
	case DirectionToEndOfLine:
		return "to-end-of-line"
	}
	return "unknown"
}

// ParseDirection accepts the names produced by Direction.String.
func ParseDirection(s string) (Direction, bool) {
	for d := DirectionNone; d <= DirectionToEndOfLine; d++ {
		if d.String() == s {
			return d, true
		}
	}
	return DirectionNone, false
}

// IsBackward reports whether the direction deletes content before the caret.
func (d Direction) IsBackward() bool {
	return d == DirectionPrevious || d == DirectionPreviousWord || d == DirectionToBeginningOfLine
}

// characterStep reduces a word or line direction to a single step the same way.
func (d Direction) characterStep() Direction {
	switch d {
	case DirectionPrevious, DirectionPreviousWord, DirectionToBeginningOfLine:
		return DirectionPrevious
	case DirectionNext, DirectionNextWord, DirectionToEndOfLine:
		return DirectionNext
	}
	return DirectionNone
}

// StripWrappers controls whether wrappers emptied by a ranged deletion are removed.
type StripWrappers int

const (
	Strip StripWrappers = iota
	NoStrip
)

// EditResult is the outcome of an action that did not fail.
type EditResult int

const (
	// Handled means the action did its work.
	Handled EditResult = iota
	// Ignored means the handler declined and a fallback should be tried.
	Ignored
	// Canceled means there is nothing to do; the tree is unchanged.
	Canceled
)

func (r EditResult) String() string {
	switch r {
	case Handled:
		return "handled"
	case Ignored:
		return "ignored"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}
