// Package filesystem provides a small filesystem abstraction used by the
// extractor and loader for directory preflight, input discovery and result
// files.
//
// Implementations:
//   - OSFileSystem: production implementation backed by the os package
//   - MemoryFileSystem: in-memory implementation for tests
package filesystem
