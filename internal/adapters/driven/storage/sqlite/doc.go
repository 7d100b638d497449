// Package sqlite implements the KnowledgeStore port on a per-user
// SQLite database.
//
// The store owns the authoritative schema: documents, chunks, and the
// chunks_fts FTS5 index that triggers keep in lockstep with chunk
// insert and delete. Documents and their chunks are committed in one
// transaction; vectors are written one chunk at a time. WAL journal
// mode lets readers query while a write transaction is open.
package sqlite
