package domain

import (
	"log/slog"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// DefaultDeprecationAnnotation marks deprecated declarations.
const DefaultDeprecationAnnotation = "java.lang.Deprecated"

// Filter decides whether a difference should be reported.
type Filter interface {
	ShouldInclude(record m.DifferenceRecord) bool
}

// CodeSetFilter includes records by code. Excluded codes always win; an
// empty include set allows every code.
type CodeSetFilter struct {
	include m.Set[m.Code]
	exclude m.Set[m.Code]
}

// NewCodeSetFilter creates a filter over the given include and exclude codes.
func NewCodeSetFilter(include, exclude []m.Code) *CodeSetFilter {
	return &CodeSetFilter{
		include: m.NewSet(include...),
		exclude: m.NewSet(exclude...),
	}
}

// ShouldInclude implements Filter.
func (f *CodeSetFilter) ShouldInclude(record m.DifferenceRecord) bool {
	if f.exclude.Contains(record.Code) {
		return false
	}

	if len(f.include) == 0 {
		return true
	}

	return f.include.Contains(record.Code)
}

// deprecatedCodes lists the changes a deprecated declaration may undergo silently.
var deprecatedCodes = NewCodeSetFilter(nil, []m.Code{
	m.CodeMethodRemoved,
	m.CodeMethodDecreasedVisibility,
	m.CodeClassRemoved,
	m.CodeClassDecreasedVisibility,
	m.CodeFieldRemoved,
	m.CodeFieldDecreasedVisibility,
})

// annotatedTypeCodes lists the changes tolerated by annotated interfaces.
var annotatedTypeCodes = NewCodeSetFilter(nil, []m.Code{
	m.CodeMethodAddedToInterface,
})

// DeprecationFilter lets deprecated declarations be removed or narrowed.
type DeprecationFilter struct {
	resolver SymbolResolver
	markers  m.Set[string]
}

// NewDeprecationFilter creates a filter that treats declarations carrying any
// of the given annotations as deprecated. With no annotations it uses
// java.lang.Deprecated.
func NewDeprecationFilter(resolver SymbolResolver, annotations ...string) *DeprecationFilter {
	if len(annotations) == 0 {
		annotations = []string{DefaultDeprecationAnnotation}
	}

	return &DeprecationFilter{
		resolver: resolver,
		markers:  m.NewSet(annotations...),
	}
}

// ShouldInclude implements Filter.
func (f *DeprecationFilter) ShouldInclude(record m.DifferenceRecord) bool {
	deprecated, err := f.deprecated(record)
	if err != nil {
		// A declaration missing from the previous snapshot was never deprecated.
		slog.Debug("Deprecation lookup failed", "code", record.Code, "class", record.AffectedClass, "error", err)
		return true
	}

	if !deprecated {
		return true
	}

	return deprecatedCodes.ShouldInclude(record)
}

func (f *DeprecationFilter) deprecated(record m.DifferenceRecord) (bool, error) {
	switch record.Scope() {
	case m.ScopeMethod:
		method, err := f.resolver.ResolveMethod(record.AffectedClass, record.AffectedMethod)
		if err != nil {
			return false, err
		}

		return method.HasAnnotation(f.markers), nil
	case m.ScopeField:
		field, err := f.resolver.ResolveField(record.AffectedClass, record.AffectedField)
		if err != nil {
			return false, err
		}

		return field.HasAnnotation(f.markers), nil
	}

	t, err := f.resolver.ResolveType(record.AffectedClass)
	if err != nil {
		return false, err
	}

	return t.HasAnnotation(f.markers), nil
}

// annotatedTypeFilter drops method differences tolerated by types carrying
// one of the configured annotations.
type annotatedTypeFilter struct {
	resolver SymbolResolver
	markers  m.Set[string]
	name     string
}

func (f *annotatedTypeFilter) ShouldInclude(record m.DifferenceRecord) bool {
	if record.Scope() != m.ScopeMethod {
		return true
	}

	t, err := f.resolver.ResolveType(record.AffectedClass)
	if err != nil {
		slog.Debug("Annotated type lookup failed", "filter", f.name, "code", record.Code, "class", record.AffectedClass, "error", err)
		return true
	}

	if !t.HasAnnotation(f.markers) {
		return true
	}

	return annotatedTypeCodes.ShouldInclude(record)
}

// AdapterAnnotationFilter tolerates methods added to interfaces that clients
// are expected to extend through an adapter class rather than implement.
type AdapterAnnotationFilter struct {
	annotatedTypeFilter
}

// NewAdapterAnnotationFilter creates the filter for the given annotation names.
func NewAdapterAnnotationFilter(resolver SymbolResolver, annotations ...string) *AdapterAnnotationFilter {
	return &AdapterAnnotationFilter{annotatedTypeFilter{
		resolver: resolver,
		markers:  m.NewSet(annotations...),
		name:     "adapter",
	}}
}

// ExternalInvocationFilter tolerates methods added to interfaces that clients
// only call and never implement.
type ExternalInvocationFilter struct {
	annotatedTypeFilter
}

// NewExternalInvocationFilter creates the filter for the given annotation names.
func NewExternalInvocationFilter(resolver SymbolResolver, annotations ...string) *ExternalInvocationFilter {
	return &ExternalInvocationFilter{annotatedTypeFilter{
		resolver: resolver,
		markers:  m.NewSet(annotations...),
		name:     "external-invocation",
	}}
}
