package models

// AttendanceIndex maps a date key (YYYY-MM-DD) to the IDs of the children
// marked present on that day, in the order they were marked.
//
// Dates only appear once something has been recorded for them. A date whose
// set was emptied by a removal stays in the index with an empty set.
type AttendanceIndex map[string][]string

// Clone returns a deep copy of the index.
func (idx AttendanceIndex) Clone() AttendanceIndex {
	out := make(AttendanceIndex, len(idx))
	for date, ids := range idx {
		out[date] = append([]string{}, ids...)
	}
	return out
}

// MarkResult is the outcome of marking a child present by tag.
type MarkResult struct {
	// Child is the matched child, or nil when no roster entry has the tag.
	Child *Child `json:"child"`

	// AlreadyMarked reports whether the child was already present for the
	// day before this call. Always false when Child is nil.
	AlreadyMarked bool `json:"alreadyMarked"`
}

// Dashboard summarizes one day of attendance.
type Dashboard struct {
	Date         string  `json:"date"`
	ChildCount   int     `json:"childCount"`
	PresentCount int     `json:"presentCount"`
	Recent       []Child `json:"recent"` // Most recently marked children, oldest first
}
