// Package postgres provides a Postgres-backed example corpus with
// pgvector similarity search.
//
// It implements two ports over one examples table:
//   - ExampleStore: the append-only corpus
//   - ExampleIndex: cosine search through the pgvector "<=>" operator,
//     accelerated by an ivfflat index
//
// This backend is optional. The default deployment keeps the corpus in
// SQLite and ranks it in memory; Postgres becomes worthwhile when the
// corpus is shared between machines or outgrows a brute-force scan.
//
// # Schema
//
// The examples table is created on connect with the configured
// embedding dimension. pgvector columns are dimension-typed, so
// changing embedding providers with a different vector size requires a
// new table.
package postgres
