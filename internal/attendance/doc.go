// Package attendance holds the in-memory roster and per-day presence sets
// and mirrors them to a storage.Store.
//
// A Store is built with New and filled from storage with Initialize. The
// in-memory state is authoritative for the session; every mutation schedules
// a background write of the blob it changed ("children" or "attendance").
// Writes for one key are serialized and coalesced, so the stored value always
// converges on the latest in-memory state. The two keys are written
// independently and may briefly disagree after a crash.
//
// Persistence failures never reach callers. Load failures fall back to an
// empty roster, write failures are logged and counted, and lookup misses are
// reported as empty results.
package attendance
