package tasks

import (
	"errors"
	"fmt"
	"slices"
)

var (
	errIndexRange = errors.New("index out of range")
	errSameIndex  = errors.New("source and destination are equal")
	errDuplicate  = errors.New("duplicate task id")
	errMismatch   = errors.New("moved sequence does not match visible tasks")
)

// MoveRequest moves the visible task at From to position To.
type MoveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Move returns a copy of seq with the element at from removed and reinserted at to.
//
// Both indices must be in range and distinct.
func Move(seq []string, from, to int) ([]string, error) {
	if from < 0 || from >= len(seq) || to < 0 || to >= len(seq) {
		return nil, fmt.Errorf("%w: from=%d to=%d len=%d", errIndexRange, from, to, len(seq))
	}
	if from == to {
		return nil, errSameIndex
	}

	out := slices.Clone(seq)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item), nil
}

// Resolve writes a reordered visible subsequence back into the full order.
//
// before is the visible sequence as it appears in full and after is the same ids
// rearranged. Visible ids fill the slots visible ids held in full, in their new order;
// every hidden id keeps its slot.
func Resolve(full, before, after []string) ([]string, error) {
	if len(before) != len(after) {
		return nil, errMismatch
	}

	visible := make(map[string]bool, len(before))
	for _, id := range before {
		if visible[id] {
			return nil, fmt.Errorf("%w: %s", errDuplicate, id)
		}
		visible[id] = true
	}
	for _, id := range after {
		if !visible[id] {
			return nil, fmt.Errorf("%w: %s", errMismatch, id)
		}
	}

	out := slices.Clone(full)
	next := 0
	for i, id := range out {
		if visible[id] {
			out[i] = after[next]
			next++
		}
	}
	if next != len(after) {
		return nil, errMismatch
	}
	return out, nil
}

// checkUnique reports the first repeated id in ids.
func checkUnique(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: %s", errDuplicate, id)
		}
		seen[id] = true
	}
	return nil
}
