// Package store persists subject report documents in SQLite.
//
// Each subject (main report ID) owns one JSON document holding every
// query snapshot recorded for it. Appending a snapshot is a
// read-modify-write of that document, serialized per subject so that
// two concurrent searches against the same subject both survive.
package store
