// Package migrate contains the migration driver and the built-in
// migrators.
//
// A Migrator is a heuristic string rewriter for one outdated style
// (React class components, Python 2 idioms). The Driver walks a
// guard-validated file tree, narrows candidates with an optional filter
// expression, and routes every read and write through the safe I/O
// layer, so no file is touched without passing the security gate.
//
// Migrators make no correctness guarantee about the produced code; they
// rewrite the mechanical patterns and surface everything else as plan
// steps or breaking changes for a human to resolve.
package migrate
