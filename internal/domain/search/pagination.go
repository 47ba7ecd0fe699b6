package search

// Window is the [Lower, Upper) row range to fetch for one page
type Window struct {
	Lower   int64
	Upper   int64
	Applied bool
}

// Width returns the number of rows in the window
func (w Window) Width() int64 {
	return w.Upper - w.Lower
}

// ComputeWindow derives the row range for offset and limit over rowCount matching rows.
//
// The lower bound is min(offset, rowCount-limit) clamped at zero and the upper bound is
// min(lower+limit, rowCount). The window is not applied when paging is disabled, when there
// are no rows, when it is empty, or when all rows fit into one page; backends then run the
// query unranged.
func ComputeWindow(offset, limit int, rowCount int64) Window {
	if offset <= Unset || limit <= 0 || rowCount <= 0 {
		return Window{}
	}

	lower := min(int64(offset), rowCount-int64(limit))
	if lower < 0 {
		lower = 0
	}
	upper := min(lower+int64(limit), rowCount)

	w := Window{Lower: lower, Upper: upper}
	if lower == upper || rowCount < int64(limit) {
		return w
	}
	w.Applied = true
	return w
}

// Window computes the paging window of the criteria for its recorded row count
func (c *SearchCriteria) Window() Window {
	if !c.IsPaginationEnabled() {
		return Window{}
	}
	return ComputeWindow(c.Offset, c.Limit, c.rowCount)
}
