// Package ordering holds the reflow rules that keep sibling indices dense.
// Indices start at 0: a parent with n children uses exactly {0..n-1}.
package ordering

import (
	"sort"

	"github.com/guimauveb/guimauve.io/internal/apperr"
)

// Item is a sibling identified by id at a position
type Item struct {
	ID    int64
	Index int
}

// Shift describes a reflow: every sibling whose index lies in [From, To] moves by Delta
type Shift struct {
	From  int
	To    int
	Delta int
}

// Empty reports whether the shift touches no index
func (s Shift) Empty() bool { return s.Delta == 0 || s.From > s.To }

// Applies reports whether a sibling at index i is moved by the shift
func (s Shift) Applies(i int) bool { return !s.Empty() && i >= s.From && i <= s.To }

// ClampInsert bounds a requested insert position to [0, n] for n existing siblings
func ClampInsert(index, n int) (int, error) {
	if index < 0 {
		return 0, apperr.Validation("index must not be negative, got %d", index)
	}
	if index > n {
		return n, nil
	}
	return index, nil
}

// ClampMove bounds a requested move target to [0, n-1] for n existing siblings
func ClampMove(index, n int) (int, error) {
	if index < 0 {
		return 0, apperr.Validation("index must not be negative, got %d", index)
	}
	if n == 0 {
		return 0, nil
	}
	if index > n-1 {
		return n - 1, nil
	}
	return index, nil
}

// InsertShift makes room at index: siblings at index or after move up by one
func InsertShift(index, n int) Shift {
	return Shift{From: index, To: n - 1, Delta: 1}
}

// RemoveShift closes the gap left at index: siblings after it move down by one
func RemoveShift(index, n int) Shift {
	return Shift{From: index + 1, To: n - 1, Delta: -1}
}

// MoveShift returns the reflow of the siblings between from and to when one
// item travels from -> to. The moving item itself is excluded.
func MoveShift(from, to int) Shift {
	switch {
	case to < from:
		return Shift{From: to, To: from - 1, Delta: 1}
	case to > from:
		return Shift{From: from + 1, To: to, Delta: -1}
	default:
		return Shift{}
	}
}

// Sorted returns a copy of items ordered by index
func Sorted(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func apply(items []Item, s Shift) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		if s.Applies(it.Index) {
			it.Index += s.Delta
		}
		out[i] = it
	}
	return out
}

// Insert places id at the clamped index and returns the new sibling set with its clamped position
func Insert(items []Item, id int64, index int) ([]Item, int, error) {
	at, err := ClampInsert(index, len(items))
	if err != nil {
		return nil, 0, err
	}
	out := apply(items, InsertShift(at, len(items)))
	out = append(out, Item{ID: id, Index: at})
	return Sorted(out), at, nil
}

// Remove drops id and closes the gap; ok is false when id is absent
func Remove(items []Item, id int64) ([]Item, bool) {
	pos := -1
	for _, it := range items {
		if it.ID == id {
			pos = it.Index
			break
		}
	}
	if pos < 0 {
		return items, false
	}
	rest := make([]Item, 0, len(items)-1)
	for _, it := range items {
		if it.ID != id {
			rest = append(rest, it)
		}
	}
	return Sorted(apply(rest, RemoveShift(pos, len(items)))), true
}

// Move relocates id to the clamped index; ok is false when id is absent
func Move(items []Item, id int64, index int) ([]Item, bool, error) {
	from := -1
	for _, it := range items {
		if it.ID == id {
			from = it.Index
			break
		}
	}
	if from < 0 {
		return items, false, nil
	}
	to, err := ClampMove(index, len(items))
	if err != nil {
		return nil, true, err
	}
	shift := MoveShift(from, to)
	out := make([]Item, len(items))
	for i, it := range items {
		switch {
		case it.ID == id:
			it.Index = to
		case shift.Applies(it.Index):
			it.Index += shift.Delta
		}
		out[i] = it
	}
	return Sorted(out), true, nil
}

// IsDense reports whether the indices are exactly {0..n-1}
func IsDense(items []Item) bool {
	seen := make([]bool, len(items))
	for _, it := range items {
		if it.Index < 0 || it.Index >= len(items) || seen[it.Index] {
			return false
		}
		seen[it.Index] = true
	}
	return true
}
