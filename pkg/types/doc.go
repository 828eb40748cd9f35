// Package types defines the core model shared by the parser, the memory
// adapters and the evaluator.
//
// This package contains type definitions for:
//   - Expression: immutable expression tree nodes
//   - OperatorDef: registry entries (evaluator, return type, validator)
//   - ReturnType: static type flags used by validation
//   - Options: per-call evaluation options
//   - MemoryView: the host state boundary
//   - Error: structured construction errors with codes
package types
