package model

import (
	"fmt"
	"strings"
)

// CurrentSnapshotVersion is the snapshot file schema version written by this tool.
const CurrentSnapshotVersion = 1

// TypeKind classifies a declared or built-in type.
type TypeKind string

const (
	// KindClass is a regular class.
	KindClass TypeKind = "class"
	// KindInterface is an interface.
	KindInterface TypeKind = "interface"
	// KindEnum is an enum type.
	KindEnum TypeKind = "enum"
	// KindAnnotation is an annotation type.
	KindAnnotation TypeKind = "annotation"
	// KindPrimitive is a built-in primitive such as int or void.
	KindPrimitive TypeKind = "primitive"
	// KindArray is a built-in primitive array such as int[].
	KindArray TypeKind = "array"
)

// MemberKind distinguishes methods from fields.
type MemberKind string

const (
	// MemberMethod is a method or constructor.
	MemberMethod MemberKind = "method"
	// MemberField is a field or enum constant.
	MemberField MemberKind = "field"
)

// TypeDescriptor is one declared type of an API surface snapshot. Nested
// types form a tree: each nested descriptor has exactly one parent.
type TypeDescriptor struct {
	Name        string              `yaml:"name"`
	Kind        TypeKind            `yaml:"kind,omitempty"`
	Modifiers   Modifiers           `yaml:"modifiers,omitempty"`
	Annotations []string            `yaml:"annotations,omitempty"`
	Methods     []*MemberDescriptor `yaml:"methods,omitempty"`
	Fields      []*MemberDescriptor `yaml:"fields,omitempty"`
	Nested      []*TypeDescriptor   `yaml:"nested,omitempty"`

	parent *TypeDescriptor
}

// Parent returns the enclosing type, or nil for a top-level type.
func (t *TypeDescriptor) Parent() *TypeDescriptor {
	return t.parent
}

// HasAnnotation reports whether the type carries any of the named annotations.
func (t *TypeDescriptor) HasAnnotation(names Set[string]) bool {
	return names.ContainsAny(t.Annotations...)
}

// Field returns the declared field with the given name.
func (t *TypeDescriptor) Field(name string) (*MemberDescriptor, bool) {
	for _, field := range t.Fields {
		if field.Name == name {
			return field, true
		}
	}

	return nil, false
}

// link wires declaring types and parents below t.
func (t *TypeDescriptor) link(parent *TypeDescriptor) {
	t.parent = parent

	for _, method := range t.Methods {
		method.Kind = MemberMethod
		method.declaring = t
	}

	for _, field := range t.Fields {
		field.Kind = MemberField
		field.declaring = t
	}

	for _, nested := range t.Nested {
		nested.link(t)
	}
}

// MemberDescriptor is a declared method or field.
type MemberDescriptor struct {
	Kind        MemberKind `yaml:"-"`
	Name        string     `yaml:"name"`
	Modifiers   Modifiers  `yaml:"modifiers,omitempty"`
	Annotations []string   `yaml:"annotations,omitempty"`
	// ReturnType is set for methods; constructors leave it empty.
	ReturnType string   `yaml:"returnType,omitempty"`
	Parameters []string `yaml:"parameters,omitempty"`
	// Type is the declared type of a field.
	Type string `yaml:"type,omitempty"`

	declaring *TypeDescriptor
}

// DeclaringType returns the type that declares the member.
func (md *MemberDescriptor) DeclaringType() *TypeDescriptor {
	return md.declaring
}

// HasAnnotation reports whether the member carries any of the named annotations.
func (md *MemberDescriptor) HasAnnotation(names Set[string]) bool {
	return names.ContainsAny(md.Annotations...)
}

// Signature renders the member the way the comparator prints it, e.g.
// "public static java.lang.String name(int, long)".
func (md *MemberDescriptor) Signature() string {
	var b strings.Builder

	if mods := md.Modifiers.String(); mods != "" {
		b.WriteString(mods)
		b.WriteByte(' ')
	}

	if md.Kind == MemberField {
		if md.Type != "" {
			b.WriteString(md.Type)
			b.WriteByte(' ')
		}

		b.WriteString(md.Name)

		return b.String()
	}

	if md.ReturnType != "" {
		b.WriteString(md.ReturnType)
		b.WriteByte(' ')
	}

	fmt.Fprintf(&b, "%s(%s)", md.Name, strings.Join(md.Parameters, ", "))

	return b.String()
}

// Snapshot is the API surface of one version of a library.
type Snapshot struct {
	Version int               `yaml:"version"`
	Name    string            `yaml:"name,omitempty"`
	Types   []*TypeDescriptor `yaml:"types"`
}

// NewSnapshot builds a linked snapshot from top-level types.
func NewSnapshot(name string, types []*TypeDescriptor) *Snapshot {
	s := &Snapshot{
		Version: CurrentSnapshotVersion,
		Name:    name,
		Types:   types,
	}
	s.Link()

	return s
}

// Link wires parent and declaring-type back references. It must be called
// after a snapshot is decoded and before it is queried.
func (s *Snapshot) Link() {
	for _, t := range s.Types {
		t.link(nil)
	}
}

// Lookup finds a declared type by fully-qualified name, searching every
// top-level type and every nested type at every depth.
func (s *Snapshot) Lookup(name string) (*TypeDescriptor, bool) {
	stack := make([]*TypeDescriptor, 0, len(s.Types))
	for i := len(s.Types) - 1; i >= 0; i-- {
		stack = append(stack, s.Types[i])
	}

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if t.Name == name {
			return t, true
		}

		for i := len(t.Nested) - 1; i >= 0; i-- {
			stack = append(stack, t.Nested[i])
		}
	}

	return nil, false
}

// Count returns the number of declared types including nested ones.
func (s *Snapshot) Count() int {
	count := 0
	stack := append([]*TypeDescriptor(nil), s.Types...)

	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		stack = append(stack, t.Nested...)
	}

	return count
}
