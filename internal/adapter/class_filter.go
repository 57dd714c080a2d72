package adapter

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ClassFilter selects classes by glob patterns. Class names and patterns are
// matched in slash form, so "com.acme.**" selects every class below com.acme
// and "com.acme.*" only its direct members.
type ClassFilter struct {
	include []string
	exclude []string
}

// NewClassFilter validates and normalizes the patterns. An empty include
// list selects every class; excludes always win.
func NewClassFilter(include, exclude []string) (*ClassFilter, error) {
	inc, err := normalizeClassPatterns(include)
	if err != nil {
		return nil, err
	}

	exc, err := normalizeClassPatterns(exclude)
	if err != nil {
		return nil, err
	}

	return &ClassFilter{include: inc, exclude: exc}, nil
}

// Match reports whether the fully-qualified class name is selected.
func (f *ClassFilter) Match(className string) bool {
	name := classPath(className)

	for _, pattern := range f.exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}

	return false
}

func normalizeClassPatterns(patterns []string) ([]string, error) {
	out := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		normalized := classPath(pattern)
		if !doublestar.ValidatePattern(normalized) {
			return nil, fmt.Errorf("invalid class pattern %q", pattern)
		}

		out = append(out, normalized)
	}

	return out, nil
}

func classPath(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
