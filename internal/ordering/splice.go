package ordering

import (
	"slices"

	"github.com/pkg/errors"
)

// ErrIndexOutOfRange is returned when an index does not address an element of the list.
var ErrIndexOutOfRange = errors.New("index out of range")

// Splice moves the element at index from to index to.
// The given list is left untouched.
func Splice[T any](list []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return nil, ErrIndexOutOfRange
	}

	out := slices.Clone(list)
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v), nil
}

// Insert adds v at the given index, index can be equal to the list length.
// The given list is left untouched.
func Insert[T any](list []T, index int, v T) ([]T, error) {
	if index < 0 || index > len(list) {
		return nil, ErrIndexOutOfRange
	}

	return slices.Insert(slices.Clone(list), index, v), nil
}

// Remove removes the element at the given index.
// The given list is left untouched.
func Remove[T any](list []T, index int) ([]T, error) {
	if index < 0 || index >= len(list) {
		return nil, ErrIndexOutOfRange
	}

	return slices.Delete(slices.Clone(list), index, index+1), nil
}

// Dense returns true if the given orders are exactly {0, ..., len(orders)-1}.
func Dense(orders []int) bool {
	sorted := slices.Clone(orders)
	slices.Sort(sorted)
	for i, o := range sorted {
		if o != i {
			return false
		}
	}
	return true
}
