// Package timeseries provides the per-ticker grouping, backward-asof lookup and
// rolling-window primitives the analytics engines are built on.
//
// All functions are pure: inputs are never reordered or modified in place.
package timeseries

import (
	"sort"
	"time"
)

// Keyed is a row that belongs to a ticker and sits at a point in time
type Keyed interface {
	Key() string
	At() time.Time
}

// GroupByKey partitions rows by key. Each group is a fresh slice sorted by
// date (stable, so equal dates keep input order). Keys are returned sorted.
func GroupByKey[T Keyed](rows []T) ([]string, map[string][]T) {
	groups := make(map[string][]T)
	for _, row := range rows {
		k := row.Key()
		groups[k] = append(groups[k], row)
	}

	keys := make([]string, 0, len(groups))
	for k, g := range groups {
		keys = append(keys, k)
		SortByDate(g)
	}
	sort.Strings(keys)
	return keys, groups
}

// SortByDate stable-sorts rows in place by date ascending
func SortByDate[T Keyed](rows []T) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].At().Before(rows[j].At())
	})
}

// Sorted returns a copy of rows ordered by (key, date)
func Sorted[T Keyed](rows []T) []T {
	out := make([]T, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Key() != out[j].Key() {
			return out[i].Key() < out[j].Key()
		}
		return out[i].At().Before(out[j].At())
	})
	return out
}

// AsofBackward returns the index of the last row in sorted whose date is on or
// before t, or -1 when every row is later than t. sorted must be ordered by date.
func AsofBackward[T Keyed](sorted []T, t time.Time) int {
	// first index strictly after t
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].At().After(t)
	})
	return i - 1
}

// AsofIndex attaches, for every key, the most recent right-hand row (by date)
// that is on or before a left-hand date. Lookups never cross keys.
type AsofIndex[T Keyed] struct {
	groups map[string][]T
}

// NewAsofIndex builds a lookup over right-hand rows
func NewAsofIndex[T Keyed](rows []T) *AsofIndex[T] {
	_, groups := GroupByKey(rows)
	return &AsofIndex[T]{groups: groups}
}

// Lookup returns the latest row for key dated on or before t
func (idx *AsofIndex[T]) Lookup(key string, t time.Time) (T, bool) {
	var zero T
	if idx == nil {
		return zero, false
	}
	g := idx.groups[key]
	i := AsofBackward(g, t)
	if i < 0 {
		return zero, false
	}
	return g[i], true
}

// Len returns the number of indexed rows
func (idx *AsofIndex[T]) Len() int {
	if idx == nil {
		return 0
	}
	n := 0
	for _, g := range idx.groups {
		n += len(g)
	}
	return n
}
