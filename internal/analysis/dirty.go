package analysis

import (
	"sort"

	"github.com/VictosVertex/asp-lsp/internal/syntax"
)

// padding widens every recorded range so that facts whose span ends exactly
// where an edit starts, or starts exactly where it ends, still overlap it.
const (
	padBefore = 1
	padAfter  = 2
)

// DirtyTracker collects the byte ranges invalidated by one edit batch.
//
// Ranges recorded with RecordEdit are kept in the coordinates of the text
// after the whole batch: when a later edit of the batch shifts text, the
// ranges recorded before it are shifted along. Structural change ranges come
// from the reparse and are already in final coordinates.
type DirtyTracker struct {
	ranges []syntax.Span
}

// NewDirtyTracker returns an empty tracker for one batch.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{}
}

// RecordEdit records the edit that replaced [start, oldEnd) with text ending
// at newEnd. Edits must be recorded in batch order.
func (d *DirtyTracker) RecordEdit(start, oldEnd, newEnd int) {
	e := syntax.InputEdit{StartByte: start, OldEndByte: oldEnd, NewEndByte: newEnd}
	for i, r := range d.ranges {
		d.ranges[i] = syntax.Span{Start: shiftOffset(e, r.Start), End: shiftOffset(e, r.End)}
	}
	d.ranges = append(d.ranges, pad(syntax.Span{Start: start, End: newEnd}))
}

// RecordChange records a structural change range reported by the reparse.
// It must be called after every edit of the batch was recorded.
func (d *DirtyTracker) RecordChange(s syntax.Span) {
	d.ranges = append(d.ranges, pad(s))
}

// Merge returns the disjoint dirty set for the batch.
func (d *DirtyTracker) Merge() DirtySet {
	return DirtySet{spans: MergeRanges(d.ranges)}
}

func pad(s syntax.Span) syntax.Span {
	return syntax.Span{Start: max(0, s.Start-padBefore), End: s.End + padAfter}
}

// shiftOffset maps an offset through an edit. Offsets inside the replaced
// range move to the end of the replacement so earlier ranges keep covering
// the text that replaced them.
func shiftOffset(e syntax.InputEdit, off int) int {
	switch {
	case off >= e.OldEndByte:
		return off + e.NewEndByte - e.OldEndByte
	case off > e.StartByte:
		return e.NewEndByte
	}
	return off
}

// MergeRanges sorts the ranges by start and merges every pair where one
// starts before the other ends. Empty ranges are dropped. The input is not
// modified.
func MergeRanges(ranges []syntax.Span) []syntax.Span {
	sorted := make([]syntax.Span, 0, len(ranges))
	for _, r := range ranges {
		if r.Len() > 0 {
			sorted = append(sorted, r)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := sorted[:1]
	for _, r := range sorted[1:] {
		cur := &out[len(out)-1]
		if r.Start < cur.End {
			cur.End = max(cur.End, r.End)
			continue
		}
		out = append(out, r)
	}
	return out
}

// DirtySet is a sorted set of disjoint byte ranges.
type DirtySet struct {
	spans []syntax.Span
}

// NewDirtySet merges the given ranges into a set.
func NewDirtySet(ranges ...syntax.Span) DirtySet {
	return DirtySet{spans: MergeRanges(ranges)}
}

// Empty reports whether the set holds no range.
func (s DirtySet) Empty() bool {
	return len(s.spans) == 0
}

// Spans returns a copy of the ranges in ascending order.
func (s DirtySet) Spans() []syntax.Span {
	return append([]syntax.Span(nil), s.spans...)
}

// Overlaps reports whether r shares at least one byte with a range of the
// set. Touching ranges do not overlap.
func (s DirtySet) Overlaps(r syntax.Span) bool {
	// First range that ends after r starts.
	i := sort.Search(len(s.spans), func(i int) bool { return s.spans[i].End > r.Start })
	return i < len(s.spans) && s.spans[i].Start < r.End
}

// Covers reports whether r lies entirely inside one range of the set.
func (s DirtySet) Covers(r syntax.Span) bool {
	i := sort.Search(len(s.spans), func(i int) bool { return s.spans[i].End > r.Start })
	return i < len(s.spans) && s.spans[i].Start <= r.Start && r.End <= s.spans[i].End
}
