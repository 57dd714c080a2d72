package domain

import (
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"apicheck.dev/pkg/apicheck/internal/adapter"
	m "apicheck.dev/pkg/apicheck/internal/model"
)

const signatureCacheSize = 4096

// SymbolResolver maps textual references from difference records back to
// declarations of one snapshot. All lookups are read-only.
type SymbolResolver interface {
	ResolveType(name string) (*m.TypeDescriptor, error)
	ResolveMethod(className, signature string) (*m.MemberDescriptor, error)
	ResolveField(className, fieldName string) (*m.MemberDescriptor, error)
}

// builtinTypes holds the primitives and their single-dimension arrays.
var builtinTypes = func() map[string]*m.TypeDescriptor {
	primitives := []string{"void", "int", "long", "float", "double", "boolean", "byte", "char"}
	table := make(map[string]*m.TypeDescriptor, 2*len(primitives))

	for _, name := range primitives {
		table[name] = &m.TypeDescriptor{Name: name, Kind: m.KindPrimitive, Modifiers: m.ModPublic | m.ModFinal}

		if name == "void" {
			continue
		}

		table[name+"[]"] = &m.TypeDescriptor{Name: name + "[]", Kind: m.KindArray, Modifiers: m.ModPublic | m.ModFinal}
	}

	return table
}()

type symbolResolver struct {
	loader adapter.TypeLoader
	cache  *lru.Cache[string, ParsedSignature]
}

// NewSymbolResolver creates a resolver over the given type loader.
func NewSymbolResolver(loader adapter.TypeLoader) SymbolResolver {
	cache, err := lru.New[string, ParsedSignature](signatureCacheSize)
	if err != nil {
		slog.Warn("Signature cache disabled", "error", err)
	}

	return &symbolResolver{
		loader: loader,
		cache:  cache,
	}
}

func (r *symbolResolver) ResolveType(name string) (*m.TypeDescriptor, error) {
	if t, ok := builtinTypes[name]; ok {
		return t, nil
	}

	t, err := r.loader.LoadType(name)
	if err != nil {
		if errors.Is(err, adapter.ErrTypeNotFound) {
			return nil, fmt.Errorf("type %s: %w", name, ErrNotFound)
		}

		return nil, fmt.Errorf("resolve type %s: %w", name, err)
	}

	return t, nil
}

func (r *symbolResolver) ResolveMethod(className, signature string) (*m.MemberDescriptor, error) {
	parsed, err := r.parse(signature)
	if err != nil {
		return nil, err
	}

	t, err := r.ResolveType(className)
	if err != nil {
		return nil, err
	}

	for _, method := range t.Methods {
		if parsed.Matches(method) {
			return method, nil
		}
	}

	return nil, fmt.Errorf("method %s.%s: %w", className, parsed.Name, ErrNotFound)
}

func (r *symbolResolver) ResolveField(className, fieldName string) (*m.MemberDescriptor, error) {
	if fieldName == "" {
		return nil, ErrNoSuchMember
	}

	t, err := r.ResolveType(className)
	if err != nil {
		return nil, err
	}

	field, ok := t.Field(fieldName)
	if !ok {
		return nil, fmt.Errorf("field %s.%s: %w", className, fieldName, ErrNotFound)
	}

	return field, nil
}

func (r *symbolResolver) parse(signature string) (ParsedSignature, error) {
	if r.cache != nil {
		if parsed, ok := r.cache.Get(signature); ok {
			return parsed, nil
		}
	}

	parsed, err := ParseSignature(signature)
	if err != nil {
		return ParsedSignature{}, err
	}

	if r.cache != nil {
		r.cache.Add(signature, parsed)
	}

	return parsed, nil
}
