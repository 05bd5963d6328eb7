package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dannyswat/htmledit/internal/dom"
)

func newTestManager(t *testing.T, body string, opts ...Option) (*Manager, *html.Node) {
	t.Helper()
	doc, err := dom.ParseHTML(body)
	require.NoError(t, err)
	return NewManager(doc, opts...), dom.Body(doc)
}

func bodyHTML(t *testing.T, body *html.Node) string {
	t.Helper()
	s, err := dom.RenderChildren(body)
	require.NoError(t, err)
	return s
}

func TestManagerUndoRedo(t *testing.T) {
	m, body := newTestManager(t, `<p>ab</p><p>cd</p>`)
	first, second := body.FirstChild, body.LastChild

	m.Begin("edit", nil)
	require.NoError(t, m.InsertText(first.FirstChild, 1, "X"))
	right, err := m.SplitNode(dom.Point{Container: first, Offset: 1})
	require.NoError(t, err)
	require.NoError(t, m.MoveNode(second, dom.PointAtStart(body)))
	require.NoError(t, m.SetAttribute(right, "class", "r"))
	_, err = m.JoinNodes(first, right)
	require.NoError(t, err)
	require.NoError(t, m.DeleteText(first.FirstChild, 0, 1))
	br := dom.NewElement(atom.Br)
	require.NoError(t, m.InsertNode(br, dom.PointAtEnd(first)))
	require.NoError(t, m.RemoveAttribute(first, "missing"))
	d, err := m.Commit(nil)
	require.NoError(t, err)
	require.NotNil(t, d)

	after := bodyHTML(t, body)
	assert.Equal(t, `<p>cd</p><p>Xb<br/></p>`, after)
	assert.Equal(t, "edit", d.Name)
	assert.NotEqual(t, d.BaseHash, d.ResultHash)
	assert.True(t, m.CanUndo())

	_, err = m.Undo()
	require.NoError(t, err)
	assert.Equal(t, `<p>ab</p><p>cd</p>`, bodyHTML(t, body))
	assert.True(t, m.CanRedo())

	_, err = m.Redo()
	require.NoError(t, err)
	assert.Equal(t, after, bodyHTML(t, body))
}

func TestManagerNestedBatches(t *testing.T) {
	m, body := newTestManager(t, `<p>a</p>`)
	text := body.FirstChild.FirstChild

	m.Begin("outer", nil)
	m.Begin("inner", nil)
	require.NoError(t, m.InsertText(text, 1, "b"))
	d, err := m.Commit(nil)
	require.NoError(t, err)
	assert.Nil(t, d, "inner commit records nothing")
	assert.True(t, m.InBatch())
	d, err = m.Commit(nil)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "outer", d.Name)

	_, err = m.Commit(nil)
	assert.ErrorIs(t, err, ErrNoBatch)
}

func TestManagerDropsEmptyDelta(t *testing.T) {
	m, _ := newTestManager(t, `<p>a</p>`)
	m.Begin("noop", nil)
	d, err := m.Commit(nil)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.False(t, m.CanUndo())

	_, err = m.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = m.Redo()
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestManagerMaxUndo(t *testing.T) {
	m, body := newTestManager(t, `<p>a</p>`, WithMaxUndo(2))
	text := body.FirstChild.FirstChild
	for i := 0; i < 3; i++ {
		m.Begin("type", nil)
		require.NoError(t, m.InsertText(text, len(text.Data), "x"))
		_, err := m.Commit(nil)
		require.NoError(t, err)
	}
	_, err := m.Undo()
	require.NoError(t, err)
	_, err = m.Undo()
	require.NoError(t, err)
	assert.False(t, m.CanUndo())
	assert.Equal(t, "ax", text.Data)
}

func TestManagerMergeWithPrevious(t *testing.T) {
	m, body := newTestManager(t, `<p>a</p>`)
	text := body.FirstChild.FirstChild

	for _, s := range []string{"b", "c"} {
		m.Begin("insertText", nil)
		require.NoError(t, m.InsertText(text, len(text.Data), s))
		m.MergeWithPrevious()
		_, err := m.Commit(nil)
		require.NoError(t, err)
	}
	assert.Equal(t, "abc", text.Data)

	_, err := m.Undo()
	require.NoError(t, err)
	assert.Equal(t, "a", text.Data)
	assert.False(t, m.CanUndo())
}

func TestManagerUndoDetectsOutsideChanges(t *testing.T) {
	m, body := newTestManager(t, `<p>a</p>`)
	text := body.FirstChild.FirstChild
	m.Begin("type", nil)
	require.NoError(t, m.InsertText(text, 1, "b"))
	_, err := m.Commit(nil)
	require.NoError(t, err)

	text.Data = "changed"
	_, err = m.Undo()
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestManagerRejectsInvalidMutations(t *testing.T) {
	m, body := newTestManager(t, `<p>ab</p>`)
	p := body.FirstChild
	text := p.FirstChild

	assert.ErrorIs(t, m.InsertNode(p, dom.PointAtStart(body)), ErrInvalidNode)
	assert.ErrorIs(t, m.InsertNode(dom.NewElement(atom.B), dom.PointAtStart(text)), ErrInvalidPoint)
	assert.ErrorIs(t, m.MoveNode(p, dom.PointAtStart(p)), ErrInvalidPoint)
	assert.ErrorIs(t, m.DeleteNode(dom.NewElement(atom.B)), ErrInvalidNode)
	assert.ErrorIs(t, m.DeleteText(text, 1, 5), ErrInvalidPoint)
	assert.ErrorIs(t, m.InsertText(p, 0, "x"), ErrInvalidNode)
	_, err := m.JoinNodes(p, text)
	assert.ErrorIs(t, err, ErrInvalidNode)
}

func TestManagerListeners(t *testing.T) {
	m, body := newTestManager(t, `<p>ab</p>`)
	var kinds []MutationKind
	remove := m.AddListener(func(mu Mutation) { kinds = append(kinds, mu.Kind) }, NodeInserted, CharacterDataChanged)
	assert.True(t, m.HasListeners(NodeInserted))
	assert.False(t, m.HasListeners(NodeRemoved))

	require.NoError(t, m.InsertText(body.FirstChild.FirstChild, 0, "x"))
	require.NoError(t, m.InsertNode(dom.NewElement(atom.Hr), dom.PointAtEnd(body)))
	require.NoError(t, m.DeleteNode(body.LastChild))
	assert.Equal(t, []MutationKind{CharacterDataChanged, NodeInserted}, kinds)

	remove()
	assert.False(t, m.HasListeners(NodeInserted))
}

func TestManagerDestroyedByListener(t *testing.T) {
	destroyed := false
	m, body := newTestManager(t, `<p>ab</p>`, WithDestroyedCheck(func() bool { return destroyed }))
	m.AddListener(func(Mutation) { destroyed = true })

	err := m.InsertText(body.FirstChild.FirstChild, 0, "x")
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestManagerPathPoints(t *testing.T) {
	m, body := newTestManager(t, `<p>ab</p>`)
	p := dom.Point{Container: body.FirstChild.FirstChild, Offset: 1}

	pp, err := m.PathPointOf(p)
	require.NoError(t, err)
	back, err := m.PointOf(pp)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	pp.Offset = 9
	_, err = m.PointOf(pp)
	assert.ErrorIs(t, err, ErrInvalidPoint)
}
