package document

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/VictosVertex/asp-lsp/internal/analysis"
	"github.com/VictosVertex/asp-lsp/internal/logging"
	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

var log = logging.Get("document")

// State is the lifecycle state of a document.
type State int32

const (
	StateClean State = iota
	StateEditing
	StateClosed
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateEditing:
		return "editing"
	case StateClosed:
		return "closed"
	case StateFaulted:
		return "faulted"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Edit replaces Range with Text. A nil Range replaces the whole document.
type Edit struct {
	Range *protocol.Range
	Text  string
}

// Document is one open document. Edit batches are applied one at a time;
// readers take a Snapshot, which is never modified and always reflects a
// completely processed batch.
type Document struct {
	uri string

	mu      sync.Mutex // serializes writers
	state   atomic.Int32
	current atomic.Pointer[Snapshot]
}

// Open parses text and builds its index.
func Open(uri string, version int32, text string) *Document {
	start := time.Now()
	buf := NewTextBuffer(text)
	tree := syntax.Parse(buf.Bytes())
	idx := analysis.Build(tree)

	d := &Document{uri: uri}
	d.current.Store(&Snapshot{
		URI:      uri,
		Version:  version,
		Revision: 1,
		Buffer:   buf,
		Tree:     tree,
		Index:    idx,
	})
	log.Debugf("opened %s: %d bytes, %d items in %s", uri, buf.Len(), tree.Count(), time.Since(start))
	return d
}

// URI returns the document URI.
func (d *Document) URI() string {
	return d.uri
}

// State returns the lifecycle state.
func (d *Document) State() State {
	return State(d.state.Load())
}

// Snapshot returns the last completely processed version.
func (d *Document) Snapshot() *Snapshot {
	return d.current.Load()
}

// ApplyEdits applies one batch of edits in order and returns the byte ranges
// whose semantic facts were recomputed.
//
// If an edit has an invalid range the whole batch is rejected with
// ErrInvalidRange and the document is left as it was. If the tree falls out
// of step with the text the document becomes faulted and every further
// edit fails with ErrDesynchronized.
func (d *Document) ApplyEdits(version int32, edits []Edit) (analysis.DirtySet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.State() {
	case StateClosed:
		return analysis.DirtySet{}, ErrClosed
	case StateFaulted:
		return analysis.DirtySet{}, fmt.Errorf("%w: %s must be reopened", ErrDesynchronized, d.uri)
	}

	prev := d.current.Load()
	if len(edits) == 0 {
		next := *prev
		next.Version = version
		d.current.Store(&next)
		return analysis.DirtySet{}, nil
	}

	d.state.Store(int32(StateEditing))
	defer d.state.CompareAndSwap(int32(StateEditing), int32(StateClean))

	began := time.Now()
	buf := prev.Buffer
	edited := prev.Tree.Clone()
	tracker := analysis.NewDirtyTracker()
	for i, e := range edits {
		next, change, err := buf.Apply(e.Range, e.Text)
		if err != nil {
			return analysis.DirtySet{}, fmt.Errorf("edit %d of %s: %w", i, d.uri, err)
		}
		if err := edited.Edit(change.InputEdit()); err != nil {
			return analysis.DirtySet{}, d.Fault(err)
		}
		tracker.RecordEdit(change.Start, change.OldEnd, change.NewEnd)
		buf = next
	}
	bufferDone := time.Now()

	tree, err := syntax.Reparse(buf.Bytes(), edited)
	if err != nil {
		return analysis.DirtySet{}, d.Fault(err)
	}
	changed := syntax.ChangedRanges(edited, tree)
	treeDone := time.Now()

	for _, r := range changed {
		tracker.RecordChange(r)
	}
	dirty := tracker.Merge()
	dirtyDone := time.Now()

	idx := prev.Index.Update(tree, syntax.Dropped(edited, tree), dirty)
	indexDone := time.Now()

	d.current.Store(&Snapshot{
		URI:      d.uri,
		Version:  version,
		Revision: prev.Revision + 1,
		Buffer:   buf,
		Tree:     tree,
		Index:    idx,
	})

	log.Debug("applied edits",
		"uri", d.uri,
		"edits", len(edits),
		"dirty", len(dirty.Spans()),
		"buffer", bufferDone.Sub(began),
		"tree", treeDone.Sub(bufferDone),
		"regions", dirtyDone.Sub(treeDone),
		"index", indexDone.Sub(dirtyDone))
	return dirty, nil
}

// Fault marks the document as out of sync with its text. Every further
// edit fails with ErrDesynchronized.
func (d *Document) Fault(err error) error {
	d.state.Store(int32(StateFaulted))
	log.Errorf("%s is out of sync and must be reopened: %s", d.uri, err)
	return fmt.Errorf("%s: %w", d.uri, err)
}

// Rebuild discards the index and builds it again from the current tree.
func (d *Document) Rebuild() (*Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.State() {
	case StateClosed:
		return nil, ErrClosed
	case StateFaulted:
		return nil, fmt.Errorf("%w: %s must be reopened", ErrDesynchronized, d.uri)
	}

	prev := d.current.Load()
	next := *prev
	next.Revision++
	next.Index = analysis.Build(prev.Tree)
	d.current.Store(&next)
	log.Infof("rebuilt index of %s", d.uri)
	return &next, nil
}

// Close marks the document closed. Snapshots taken before stay usable.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Store(int32(StateClosed))
}
