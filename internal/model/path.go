// Package model defines the data structures for API compatibility checking.
package model

// Path represents a file system path.
type Path string
