package adapter

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// SnapshotStore persists API surface snapshots as YAML documents.
type SnapshotStore interface {
	Load(path m.Path) (*m.Snapshot, error)
	Save(path m.Path, snapshot *m.Snapshot) error
}

// LocalSnapshotStore reads and writes snapshot files through a SourceFSAdapter.
type LocalSnapshotStore struct {
	fs SourceFSAdapter
}

// NewSnapshotStore creates a snapshot store backed by the given filesystem.
func NewSnapshotStore(fs SourceFSAdapter) *LocalSnapshotStore {
	return &LocalSnapshotStore{fs: fs}
}

// Load decodes and links a snapshot file.
func (s *LocalSnapshotStore) Load(path m.Path) (*m.Snapshot, error) {
	content, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snapshot m.Snapshot

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)

	if err := decoder.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}

	if snapshot.Version > m.CurrentSnapshotVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported version %d", path, snapshot.Version)
	}

	if err := validateTypes(snapshot.Types); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}

	snapshot.Link()

	slog.Debug("Loaded snapshot", "path", path, "name", snapshot.Name, "types", snapshot.Count())

	return &snapshot, nil
}

// Save writes the snapshot with its top-level types sorted by name.
func (s *LocalSnapshotStore) Save(path m.Path, snapshot *m.Snapshot) error {
	out := *snapshot
	if out.Version == 0 {
		out.Version = m.CurrentSnapshotVersion
	}

	out.Types = slices.Clone(snapshot.Types)
	slices.SortFunc(out.Types, func(a, b *m.TypeDescriptor) int {
		return strings.Compare(a.Name, b.Name)
	})

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(&out); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.fs.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}

	return nil
}

func validateTypes(types []*m.TypeDescriptor) error {
	stack := slices.Clone(types)

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t == nil || strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("type without a name")
		}

		for _, member := range slices.Concat(t.Methods, t.Fields) {
			if member == nil || strings.TrimSpace(member.Name) == "" {
				return fmt.Errorf("type %s: member without a name", t.Name)
			}
		}

		stack = append(stack, t.Nested...)
	}

	return nil
}

// LoadClasspath loads dependency snapshots and chains them behind primary.
func LoadClasspath(store SnapshotStore, primary *m.Snapshot, classpath []m.Path) (*ClasspathLoader, error) {
	loaders := []TypeLoader{NewSnapshotLoader(primary)}

	for _, entry := range classpath {
		snapshot, err := store.Load(entry)
		if err != nil {
			return nil, fmt.Errorf("load classpath entry: %w", err)
		}

		loaders = append(loaders, NewSnapshotLoader(snapshot))
	}

	return NewClasspathLoader(loaders...), nil
}
