package filesystem

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the listing comparator.
type SortKey string

const (
	SortByName SortKey = "name"
	SortBySize SortKey = "size"
	SortByDate SortKey = "date"
)

// Comparator returns an ordering function for listing entries. Name
// comparisons are case-insensitive using locale-independent lowercasing.
// An unrecognized key is a caller programming error and is reported as a
// plain invalid-argument error, not a taxonomy failure.
func Comparator(key SortKey) (func(a, b Entry) int, error) {
	switch key {
	case SortByName:
		return func(a, b Entry) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}, nil
	case SortBySize:
		return func(a, b Entry) int {
			return cmp.Compare(a.Size, b.Size)
		}, nil
	case SortByDate:
		return func(a, b Entry) int {
			return a.Modified.Compare(b.Modified)
		}, nil
	default:
		return nil, fmt.Errorf("filesystem: unknown sort key %q", key)
	}
}

// SortEntries sorts entries in place using the comparator for key. The sort
// is stable so equal elements keep their listing order.
func SortEntries(entries []Entry, key SortKey) error {
	compare, err := Comparator(key)
	if err != nil {
		return err
	}
	slices.SortStableFunc(entries, compare)
	return nil
}
