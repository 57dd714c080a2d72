package domain

import (
	m "apicheck.dev/pkg/apicheck/internal/model"
)

// FilterChain ANDs its filters in order and stops at the first rejection.
type FilterChain struct {
	filters []Filter
}

// NewFilterChain composes the given filters.
func NewFilterChain(filters ...Filter) *FilterChain {
	return &FilterChain{filters: filters}
}

// ShouldInclude implements Filter.
func (c *FilterChain) ShouldInclude(record m.DifferenceRecord) bool {
	for _, filter := range c.filters {
		if !filter.ShouldInclude(record) {
			return false
		}
	}

	return true
}

// Len returns the number of filters in the chain.
func (c *FilterChain) Len() int {
	return len(c.filters)
}

// Apply returns the records the chain includes, in input order.
func (c *FilterChain) Apply(records []m.DifferenceRecord) []m.DifferenceRecord {
	kept := make([]m.DifferenceRecord, 0, len(records))

	for _, record := range records {
		if c.ShouldInclude(record) {
			kept = append(kept, record)
		}
	}

	return kept
}

// Policy is the user configuration a filter chain is built from.
type Policy struct {
	IncludeCodes                  []m.Code
	ExcludeCodes                  []m.Code
	SkipDeprecated                bool
	DeprecationAnnotations        []string
	AdapterAnnotations            []string
	ExternalInvocationAnnotations []string
}

// DefaultPolicy reports every code and lets deprecated declarations go.
func DefaultPolicy() Policy {
	return Policy{
		SkipDeprecated:         true,
		DeprecationAnnotations: []string{DefaultDeprecationAnnotation},
	}
}

// NewFilterChainFromPolicy builds the chain with the code set filter first,
// followed by each optional filter the policy enables.
func NewFilterChainFromPolicy(policy Policy, resolver SymbolResolver) *FilterChain {
	filters := []Filter{NewCodeSetFilter(policy.IncludeCodes, policy.ExcludeCodes)}

	if policy.SkipDeprecated {
		filters = append(filters, NewDeprecationFilter(resolver, policy.DeprecationAnnotations...))
	}

	if len(policy.AdapterAnnotations) > 0 {
		filters = append(filters, NewAdapterAnnotationFilter(resolver, policy.AdapterAnnotations...))
	}

	if len(policy.ExternalInvocationAnnotations) > 0 {
		filters = append(filters, NewExternalInvocationFilter(resolver, policy.ExternalInvocationAnnotations...))
	}

	return NewFilterChain(filters...)
}
