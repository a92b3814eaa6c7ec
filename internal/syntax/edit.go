package syntax

import (
	"fmt"
	"sort"
)

// InputEdit describes one text replacement in the coordinates of the text
// before the replacement.
type InputEdit struct {
	StartByte   int
	OldEndByte  int
	NewEndByte  int
	StartPoint  Point
	OldEndPoint Point
	NewEndPoint Point
}

func (e InputEdit) delta() int {
	return e.NewEndByte - e.OldEndByte
}

// shift maps an offset from before the edit to after it. Offsets inside
// the replaced range are clamped into the replacement.
func (e InputEdit) shift(off int) int {
	switch {
	case off >= e.OldEndByte:
		return off + e.delta()
	case off > e.StartByte:
		return min(off, e.NewEndByte)
	}
	return off
}

// Edit records a text replacement so that the spans of untouched items stay
// valid. Items whose examined bytes intersect the replaced range are marked
// for reparsing. Edits of one batch must be recorded in the order they were
// applied to the text, each in the coordinates produced by its predecessor.
func (t *Tree) Edit(e InputEdit) error {
	if e.StartByte < 0 || e.StartByte > e.OldEndByte || e.OldEndByte > t.length || e.NewEndByte < e.StartByte {
		return fmt.Errorf("%w: edit [%d,%d)->%d on %d bytes", ErrDesynchronized,
			e.StartByte, e.OldEndByte, e.NewEndByte, t.length)
	}
	if t.changed == nil {
		t.changed = make([]bool, len(t.items))
	}
	for i, it := range t.items {
		start := t.starts[i]
		if e.StartByte < start+it.look && e.OldEndByte > start {
			t.changed[i] = true
		}
		t.starts[i] = e.shift(start)
		t.ends[i] = e.shift(t.ends[i])
	}
	t.length += e.delta()
	t.edited = true
	return nil
}

// Reparse parses src, reusing every item of the edited tree old that was not
// touched by an edit and that starts where the parser expects the next item.
// Passing a nil tree parses from scratch.
func Reparse(src []byte, old *Tree) (*Tree, error) {
	t := &Tree{length: len(src)}

	var inherit map[int]StatementID
	if old != nil {
		if old.length != len(src) {
			return nil, fmt.Errorf("%w: tree covers %d bytes, source has %d", ErrDesynchronized, old.length, len(src))
		}
		t.nextID = old.nextID
		// A reparsed item that starts where a touched item used to start
		// keeps that item's identity.
		inherit = make(map[int]StatementID)
		for i := range old.items {
			if old.isChanged(i) {
				if _, taken := inherit[old.starts[i]]; !taken {
					inherit[old.starts[i]] = old.items[i].id
				}
			}
		}
	}

	p := newParser(src)
	k := 0
	pos := 0
	for {
		start := p.nextStart(pos)
		if start >= len(src) {
			break
		}

		if old != nil {
			for k < len(old.items) && old.starts[k] < start {
				k++
			}
			if k < len(old.items) && old.starts[k] == start && !old.isChanged(k) {
				it := old.items[k]
				t.append(it, start)
				pos = start + it.width
				k++
				continue
			}
		}

		it := p.parseItem(start)
		if id, ok := inherit[start]; ok {
			it.id = id
			delete(inherit, start)
		} else {
			t.nextID++
			it.id = t.nextID
		}
		t.append(it, start)
		pos = start + it.width
	}

	t.byID = make(map[StatementID]int, len(t.items))
	for i, it := range t.items {
		t.byID[it.id] = i
	}
	return t, nil
}

func (t *Tree) append(it *item, start int) {
	t.items = append(t.items, it)
	t.starts = append(t.starts, start)
	t.ends = append(t.ends, start+it.width)
}

// ChangedRanges compares an edited tree with the tree reparsed from it and
// returns, in the new tree's coordinates, the sorted disjoint ranges whose
// node structure differs. Items reparsed into the same shape at the same
// position are not reported.
func ChangedRanges(old, t *Tree) []Span {
	var out []Span
	clamp := func(s Span) Span {
		s.End = min(s.End, t.length)
		s.Start = min(s.Start, s.End)
		return s
	}

	for i, it := range t.items {
		j, ok := old.byID[it.id]
		if ok && old.items[j] == it {
			continue
		}
		if ok && old.starts[j] == t.starts[i] && sameShape(old.items[j], it) {
			continue
		}
		out = append(out, t.ItemSpan(i))
		if ok {
			out = append(out, clamp(old.ItemSpan(j)))
		}
	}
	for j, it := range old.items {
		if _, ok := t.byID[it.id]; !ok {
			out = append(out, clamp(old.ItemSpan(j)))
		}
	}

	return coalesce(out)
}

// Dropped returns the IDs of items of old that no longer exist in t.
func Dropped(old, t *Tree) []StatementID {
	var out []StatementID
	for _, it := range old.items {
		if _, ok := t.byID[it.id]; !ok {
			out = append(out, it.id)
		}
	}
	return out
}

func sameShape(a, b *item) bool {
	if a.width != b.width || len(a.nodes) != len(b.nodes) {
		return false
	}
	for i := range a.nodes {
		x, y := &a.nodes[i], &b.nodes[i]
		if x.kind != y.kind || x.span != y.span || x.parent != y.parent || len(x.children) != len(y.children) {
			return false
		}
	}
	return true
}

func coalesce(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			last.End = max(last.End, s.End)
			continue
		}
		out = append(out, s)
	}
	return out
}
