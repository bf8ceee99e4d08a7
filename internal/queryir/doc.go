// Package queryir is a small typed query representation over the run log.
//
// Queries are built from a sealed set of nodes and compiled to SQL by
// package querysql. The store builds its reads from them, and callers such
// as the CLI pass predicates to narrow a trace without writing SQL.
//
//	[caller predicates] → [Query IR] → [querysql] → parameterized SQLite
//
// # Tables
//
// Two tables are queryable: runs and spikes. Each field has a kind (int,
// string or bool) and predicates are checked against it before compiling.
//
// # Nodes
//
//   - Select(from, fields, filter, limit)
//   - Predicates: Equals, In, Range, And
//
// Query and Predicate are sealed with marker methods, so backends can
// switch over every node type exhaustively.
//
// # Determinism
//
// Literal values are ints, strings or bools. Floats are rejected because
// nothing in the run log is stored as a float. Every compiled query has a
// stable ORDER BY, so two reads of the same log return rows in the same
// order.
package queryir
