// Package writer persists files atomically.
//
// Every file is written to a temporary sibling, synced and renamed into
// place, so a reader (or a later run checking for existence) never sees a
// partially written file.
//
// Writers:
//   - Time-series CSV writer (header row, then raw value rows)
//   - WriteAtomic for any other generated file (lists, manifests)
package writer
