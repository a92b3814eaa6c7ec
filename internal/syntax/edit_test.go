package syntax

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type byteEdit struct {
	start, end int
	text       string
}

// applyBatch applies the edits to src and the tree in order, then reparses.
func applyBatch(t *testing.T, tree *Tree, src []byte, edits ...byteEdit) ([]byte, *Tree, *Tree) {
	t.Helper()
	edited := tree.Clone()
	for _, e := range edits {
		next := make([]byte, 0, len(src)-(e.end-e.start)+len(e.text))
		next = append(next, src[:e.start]...)
		next = append(next, e.text...)
		next = append(next, src[e.end:]...)
		src = next
		require.NoError(t, edited.Edit(InputEdit{
			StartByte:  e.start,
			OldEndByte: e.end,
			NewEndByte: e.start + len(e.text),
		}))
	}
	re, err := Reparse(src, edited)
	require.NoError(t, err)
	return src, edited, re
}

func TestReparse_ReusesUntouchedStatements(t *testing.T) {
	src := []byte(scenarioSource)
	tree := Parse(src)

	// Replace the X of path(X,Y) with Z.
	next, edited, re := applyBatch(t, tree, src, byteEdit{16, 17, "Z"})
	assert.Equal(t, "edge(1,2). path(Z,Y) :- edge(X,Y).", string(next))
	assert.Equal(t, Parse(next).String(), re.String())

	assert.Same(t, tree.items[0], re.items[0], "first statement is shared")
	assert.Equal(t, tree.ItemID(0), re.ItemID(0))
	assert.Equal(t, tree.ItemID(1), re.ItemID(1), "reparsed statement keeps its identity")

	assert.Empty(t, ChangedRanges(edited, re), "same shape, no structural change")
	assert.Empty(t, Dropped(edited, re))
}

func TestReparse_ShiftsFollowingStatements(t *testing.T) {
	src := []byte("a(1). b(2). c(3).")
	tree := Parse(src)

	next, edited, re := applyBatch(t, tree, src, byteEdit{2, 3, "100"})
	assert.Equal(t, Parse(next).String(), re.String())
	assert.Same(t, tree.items[1], re.items[1])
	assert.Same(t, tree.items[2], re.items[2])
	assert.Equal(t, Span{8, 13}, re.ItemSpan(1))
	// The literal grew, so the first statement changed shape.
	assert.Equal(t, []Span{{0, 7}}, ChangedRanges(edited, re))
}

func TestReparse_StructuralChange(t *testing.T) {
	src := []byte("a. b(2).")
	tree := Parse(src)

	next, edited, re := applyBatch(t, tree, src, byteEdit{1, 1, "(1)"})
	assert.Equal(t, "a(1). b(2).", string(next))
	assert.Equal(t, Parse(next).String(), re.String())
	assert.Equal(t, []Span{{0, 5}}, ChangedRanges(edited, re))
}

func TestReparse_MergedStatements(t *testing.T) {
	src := []byte("a(1). b(2). c(3).")
	tree := Parse(src)

	// Deleting the first period glues the first two statements together.
	next, edited, re := applyBatch(t, tree, src, byteEdit{4, 5, ""})
	assert.Equal(t, Parse(next).String(), re.String())
	require.Equal(t, 2, re.Count())
	assert.Equal(t, []StatementID{tree.ItemID(1)}, Dropped(edited, re))
	assert.Equal(t, tree.ItemID(0), re.ItemID(0))

	changed := ChangedRanges(edited, re)
	require.NotEmpty(t, changed)
	assert.Equal(t, 0, changed[0].Start)
	assert.GreaterOrEqual(t, changed[len(changed)-1].End, re.ItemSpan(0).End)
}

func TestReparse_AppendAtEnd(t *testing.T) {
	src := []byte("a(1)")
	tree := Parse(src)
	require.NotEmpty(t, tree.Errors())

	next, _, re := applyBatch(t, tree, src, byteEdit{4, 4, "."})
	assert.Equal(t, Parse(next).String(), re.String())
	assert.Empty(t, re.Errors())
}

func TestReparse_LookaheadAfterPeriod(t *testing.T) {
	src := []byte("a. b.")
	tree := Parse(src)

	// A second period right after the first turns it into an interval
	// operator, so the first statement must be reparsed.
	next, _, re := applyBatch(t, tree, src, byteEdit{2, 2, "."})
	assert.Equal(t, Parse(next).String(), re.String())
}

func TestReparse_MultiEditBatch(t *testing.T) {
	src := []byte("p(X) :- q(X).\nr(1).\ns(2) :- t(2).")
	tree := Parse(src)

	next, _, re := applyBatch(t, tree, src,
		byteEdit{0, 1, "pp"},
		byteEdit{17, 18, "42"},
		byteEdit{22, 22, "u(3). "},
	)
	assert.Equal(t, "pp(X) :- q(X).\nr(42).\nu(3). s(2) :- t(2).", string(next))
	assert.Equal(t, Parse(next).String(), re.String())
}

func TestEdit_RejectsOutOfBounds(t *testing.T) {
	tree := Parse([]byte("a."))

	err := tree.Clone().Edit(InputEdit{StartByte: 1, OldEndByte: 5, NewEndByte: 1})
	assert.True(t, errors.Is(err, ErrDesynchronized))

	err = tree.Clone().Edit(InputEdit{StartByte: 2, OldEndByte: 1, NewEndByte: 2})
	assert.True(t, errors.Is(err, ErrDesynchronized))
}

func TestReparse_DetectsLengthMismatch(t *testing.T) {
	tree := Parse([]byte("a."))
	_, err := Reparse([]byte("a. b."), tree.Clone())
	assert.True(t, errors.Is(err, ErrDesynchronized))
}

var fragments = []string{
	"a", "p(X)", "q(X,Y)", ".", ", ", " :- ", "not ", "X", "1", "(", ")", ";",
	"{", "}", "#count", "%", "%*", "*%", "\n", " ", "..", "\"", "= ", "|",
	"#show ", "r(1). ", ":~ ", "[1@1]",
}

var corpus = []string{
	scenarioSource,
	"node(1..4). edge(1,2). edge(2,3).\n{ color(N,C) : col(C) } = 1 :- node(N).\n:- edge(X,Y), color(X,C), color(Y,C).\n",
	"% comment\n#const n = 3.\np(X) :- q(X), not r(X).\n%* doc *%\n#show p/1.\n",
	":~ cost(X,C). [C@1,X]\n#minimize { C,X : cost(X,C) }.\nfoo(\"bar\"). baz :- foo(_).",
	"a(1. b(2). broken :- . c :- d e.",
}

// TestReparse_MatchesFullParse applies pseudo-random edit batches and checks
// that the incrementally reparsed tree equals a parse from scratch.
func TestReparse_MatchesFullParse(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, text := range corpus {
		src := []byte(text)
		tree := Parse(src)

		for round := 0; round < 200; round++ {
			var edits []byteEdit
			cur := len(src)
			for n := rng.Intn(3) + 1; n > 0; n-- {
				start := rng.Intn(cur + 1)
				end := start + rng.Intn(min(4, cur-start)+1)
				insert := ""
				if rng.Intn(3) > 0 {
					insert = fragments[rng.Intn(len(fragments))]
				}
				edits = append(edits, byteEdit{start, end, insert})
				cur += len(insert) - (end - start)
			}

			var re *Tree
			src, _, re = applyBatch(t, tree, src, edits...)
			require.Equal(t, Parse(src).String(), re.String(), "source %q", src)
			tree = re
		}
	}
}
