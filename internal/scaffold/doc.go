// Package scaffold creates a starter pg2duck configuration: parameters.yml,
// paths.yaml and the catalog query file, from templates embedded in the
// binary.
package scaffold
