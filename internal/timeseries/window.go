package timeseries

import "time"

// Window is a right-closed lookback window (end - lookback, end] with a
// coverage gate: aggregates over fewer than MinCount rows are invalid.
type Window struct {
	Years    int
	Days     int
	MinCount int
}

// Start returns the exclusive left bound of the window ending at end
func (w Window) Start(end time.Time) time.Time {
	return end.AddDate(-w.Years, 0, -w.Days)
}

// Contains reports whether t falls inside the window ending at end
func (w Window) Contains(t, end time.Time) bool {
	return t.After(w.Start(end)) && !t.After(end)
}

// Frame is one evaluated window: the row it ends at and the rows it covers,
// oldest first. Rows aliases the input and must not be modified.
type Frame[T Keyed] struct {
	End  T
	Rows []T
}

// Rolling evaluates the window ending at every row of sorted (one ticker,
// ordered by date) and returns those frames that pass the coverage gate.
func Rolling[T Keyed](sorted []T, w Window) []Frame[T] {
	frames := make([]Frame[T], 0, len(sorted))
	left := 0
	for right := range sorted {
		end := sorted[right].At()
		start := w.Start(end)
		for left < right && !sorted[left].At().After(start) {
			left++
		}
		// equal dates past the right edge belong to the same window
		hi := right + 1
		for hi < len(sorted) && sorted[hi].At().Equal(end) {
			hi++
		}
		rows := sorted[left:hi]
		if len(rows) < w.MinCount {
			continue
		}
		frames = append(frames, Frame[T]{End: sorted[right], Rows: rows})
	}
	return frames
}
