// Package models defines the core domain models for attendance tracking.
//
// # Models
//
//   - Child: a tracked individual with an NFC tag identifier
//   - AttendanceIndex: date key (YYYY-MM-DD) to the ids of children present that day
//   - MarkResult: outcome of marking a child present by tag
//   - Dashboard: per-day summary shown on the home screen
//
// # Persisted Layout
//
// Children and attendance are stored as two independent JSON blobs under the
// keys "children" and "attendance". The JSON field names on these types are
// the on-disk format and must not change:
//
//	children:   [{"id":"child_...","name":"Ann","nfcId":"nfc_..."}]
//	attendance: {"2026-10-19":["child_..."]}
//
// # Design Principles
//
// 1. **IDs over pointers**: presence sets reference children by ID string
// 2. **Insertion order**: rosters and presence sets keep the order entries were added
// 3. **Lookup misses are results**: a missing child is reported, not returned as an error
package models
