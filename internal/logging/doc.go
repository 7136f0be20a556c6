// Package logging provides concrete implementations of the pg2duck.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes prefixed lines to stderr (or any io.Writer)
//   - NullLogger: Discards all messages (useful for testing)
package logging
