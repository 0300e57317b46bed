package date

import (
	"iter"
	"slices"
)

// Number is the set of values a History can hold.
type Number interface {
	~float32 | ~float64 | ~int | ~int64
}

// History stores a chronological series of values, each associated with a specific date.
// It ensures that dates are unique and the series is always sorted.
type History[T Number] struct {
	days   []Date
	values []T
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// insert returns the index of day, inserting a zero value if it is missing.
func (h *History[T]) insert(day Date) int {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if !found {
		var zero T
		h.days = slices.Insert(h.days, i, day)
		h.values = slices.Insert(h.values, i, zero)
	}
	return i
}

// Append sets the value at a date.
//
// Existing value at that date is overwritten.
func (h *History[T]) Append(on Date, q T) *History[T] {
	h.values[h.insert(on)] = q
	return h
}

// AppendAdd adds q to the value at a date.
func (h *History[T]) AppendAdd(on Date, q T) *History[T] {
	h.values[h.insert(on)] += q
	return h
}

// Values returns an iterator over all date/value pairs in the history, in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	var value T
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.values[i], true
	}
	return value, false
}

// Sample returns the last value of every period p, dated at the end of the
// period (or at the last record for the current, unfinished period).
func (h *History[T]) Sample(p Period) *History[T] {
	sampled := new(History[T])
	for i, on := range h.days {
		if i+1 < len(h.days) && h.days[i+1].StartOf(p) == on.StartOf(p) {
			continue // not the last record of its period.
		}
		sampled.Append(on, h.values[i])
	}
	return sampled
}
