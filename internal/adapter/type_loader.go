package adapter

import (
	"errors"
	"fmt"
	"log/slog"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// ErrTypeNotFound is returned by a TypeLoader that does not know a type.
var ErrTypeNotFound = errors.New("type not found")

// TypeLoader resolves a fully-qualified type name to its declaration.
type TypeLoader interface {
	LoadType(name string) (*m.TypeDescriptor, error)
}

// SnapshotLoader serves types declared in one snapshot, nested ones included.
type SnapshotLoader struct {
	snapshot *m.Snapshot
}

// NewSnapshotLoader wraps a linked snapshot.
func NewSnapshotLoader(snapshot *m.Snapshot) *SnapshotLoader {
	return &SnapshotLoader{snapshot: snapshot}
}

// LoadType looks the type up in the snapshot.
func (l *SnapshotLoader) LoadType(name string) (*m.TypeDescriptor, error) {
	if l.snapshot == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrTypeNotFound)
	}

	t, ok := l.snapshot.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrTypeNotFound)
	}

	return t, nil
}

// ClasspathLoader chains loaders: the snapshot under analysis first, then
// the snapshots of the libraries it depends on. The first hit wins.
type ClasspathLoader struct {
	loaders []TypeLoader
}

// NewClasspathLoader builds a loader that consults the given loaders in order.
func NewClasspathLoader(loaders ...TypeLoader) *ClasspathLoader {
	return &ClasspathLoader{loaders: loaders}
}

// LoadType returns the first declaration found on the classpath.
func (l *ClasspathLoader) LoadType(name string) (*m.TypeDescriptor, error) {
	for i, loader := range l.loaders {
		t, err := loader.LoadType(name)
		if err == nil {
			return t, nil
		}

		if !errors.Is(err, ErrTypeNotFound) {
			slog.Error("Failed to load type", "type", name, "loader", i, "error", err)
			return nil, fmt.Errorf("load type %s: %w", name, err)
		}
	}

	return nil, fmt.Errorf("%s: %w", name, ErrTypeNotFound)
}
