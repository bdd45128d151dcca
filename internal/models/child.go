package models

// Child represents one tracked individual on the roster.
type Child struct {
	// ID is the unique identifier for the child (e.g. "child_1a2b3c4d5e6f").
	// Assigned at creation and never reused.
	ID string `json:"id"`

	// Name is the display name of the child.
	Name string `json:"name"`

	// TagID is the NFC tag identifier used to mark the child present.
	// Compared case-insensitively with surrounding whitespace ignored.
	// Not required to be unique; lookups take the first roster match.
	TagID string `json:"nfcId"`
}
