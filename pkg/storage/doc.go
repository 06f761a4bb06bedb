// Package storage provides a small keyed blob store organised in tables.
//
// A table is identified by a TableSpec. Tables may optionally support
// partitions (independent key spaces inside one table) and expiration
// (records that silently disappear after a deadline). Two implementations are
// provided: EphemeralStorage keeps everything in memory and can be serialized
// to CBOR, SQLiteStorage persists tables in a SQLite database.
//
// Values are opaque byte slices. Callers that store structured data encode it
// themselves, typically as CBOR.
package storage
