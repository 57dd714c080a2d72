// Package adapter contains the infrastructure adapters of the apicheck CLI:
// snapshot and difference files, Java source scanning and report sinks.
package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

const (
	javaExt          = ".java"
	recursiveSuffix  = "/..."
	defaultFilePerms = 0o644
	defaultDirPerms  = 0o750
)

// SourceFSAdapter abstracts the filesystem access needed to scan Java source
// trees and write output files, so workflows can be tested without a disk.
type SourceFSAdapter interface {
	// Walk traverses root. When recursive is false only root itself is listed.
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// Get expands path patterns ("./src/...", "Foo.java", "src") into the Java
	// source files they denote, skipping files whose path matches an exclude regex.
	Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Path, error)

	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content, creating missing parent directories.
	WriteFile(path m.Path, content []byte) error

	FileInfo(path m.Path) (os.FileInfo, error)
}

// FilepathWalkFunc mirrors the callback shape of filepath.Walk without leaking
// the standard-library type into the domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter implements SourceFSAdapter on the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// Get expands the given path patterns into a sorted, de-duplicated file list.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Path, error) {
	excludes, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		paths = []m.Path{"." + recursiveSuffix}
	}

	seen := make(m.Set[m.Path])

	for _, pattern := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root, recursive := splitPattern(string(pattern))

		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !info.IsDir() {
			if isJavaSource(root) && !excluded(root, excludes) {
				seen[m.Path(root)] = struct{}{}
			}

			continue
		}

		err = a.Walk(m.Path(root), recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() || !isJavaSource(path) || excluded(path, excludes) {
				return nil
			}

			seen[m.Path(path)] = struct{}{}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	files := make([]m.Path, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}

	slices.Sort(files)

	return files, nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to path, creating parent directories.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte) error {
	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPerms); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	// #nosec G306 - reports and snapshots are meant to be shared
	return os.WriteFile(string(path), content, defaultFilePerms)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

func splitPattern(pattern string) (string, bool) {
	if pattern == "..." {
		return ".", true
	}

	if root, ok := strings.CutSuffix(pattern, recursiveSuffix); ok {
		if root == "" {
			root = "/"
		}

		return root, true
	}

	return pattern, false
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

func excluded(path string, excludes []*regexp.Regexp) bool {
	slashed := filepath.ToSlash(path)

	for _, re := range excludes {
		if re.MatchString(slashed) {
			return true
		}
	}

	return false
}

func isJavaSource(path string) bool {
	return filepath.Ext(path) == javaExt && filepath.Base(path) != "module-info.java" &&
		filepath.Base(path) != "package-info.java"
}
