// Package files groups the file-related sub-packages.
//
//   - filesystem: filesystem abstraction with OS and in-memory implementations
//   - layout: the <schema>.<table> directory contract shared by extract and
//     load, plus output directory checks and the result file
package files
