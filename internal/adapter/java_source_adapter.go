package adapter

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// JavaSourceAdapter extracts the declared API of Java source files.
type JavaSourceAdapter interface {
	// ParseTypes returns the top-level types declared in src, nested types
	// attached to their parents. Private declarations are left out.
	ParseTypes(path m.Path, src []byte) ([]*m.TypeDescriptor, error)
}

// TreeSitterJavaAdapter implements JavaSourceAdapter with tree-sitter-java.
// It is safe for concurrent use: every call gets its own parser.
type TreeSitterJavaAdapter struct {
	language *sitter.Language
}

// NewTreeSitterJavaAdapter creates the adapter.
func NewTreeSitterJavaAdapter() *TreeSitterJavaAdapter {
	return &TreeSitterJavaAdapter{language: sitter.NewLanguage(tree_sitter_java.Language())}
}

// ParseTypes implements JavaSourceAdapter.
func (a *TreeSitterJavaAdapter) ParseTypes(path m.Path, src []byte) ([]*m.TypeDescriptor, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(a.language); err != nil {
		return nil, fmt.Errorf("set java language: %w", err)
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: no syntax tree", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse %s: syntax error", path)
	}

	file := &javaFile{
		src:     src,
		imports: make(map[string]string),
		local:   make(map[string]string),
	}
	file.scanHeader(root)
	file.indexTypes(root)

	var types []*m.TypeDescriptor

	for _, child := range namedChildren(root) {
		if !isTypeDeclaration(child.Kind()) {
			continue
		}

		if t := file.typeDescriptor(child, nil, nil); t != nil {
			types = append(types, t)
		}
	}

	return types, nil
}

// javaLangTypes are the java.lang names usable without an import.
var javaLangTypes = m.NewSet(
	"AutoCloseable", "Boolean", "Byte", "CharSequence", "Character", "Class", "ClassLoader",
	"Cloneable", "Comparable", "Deprecated", "Double", "Enum", "Error", "Exception", "Float",
	"FunctionalInterface", "IllegalArgumentException", "IllegalStateException", "Integer",
	"Iterable", "Long", "Math", "NullPointerException", "Number", "Object", "Override",
	"Record", "Runnable", "RuntimeException", "SafeVarargs", "Short", "String", "StringBuilder",
	"SuppressWarnings", "System", "Thread", "Throwable", "UnsupportedOperationException", "Void",
)

// keywordAliases maps source keywords that differ from the reflection names.
var keywordAliases = map[string]string{
	"strictfp": "strict",
}

var primitiveTypeKinds = m.NewSet("integral_type", "floating_point_type", "boolean_type", "void_type")

const objectType = "java.lang.Object"

// typeVars maps the type variables in scope to their erasure, the first
// bound or java.lang.Object.
type typeVars map[string]string

// javaFile holds the name resolution context of one compilation unit.
type javaFile struct {
	src     []byte
	pkg     string
	imports map[string]string // simple name -> binary name
	local   map[string]string // simple name -> binary name of a type declared in this file
}

func (f *javaFile) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}

	return n.Utf8Text(f.src)
}

func (f *javaFile) scanHeader(root *sitter.Node) {
	for _, child := range namedChildren(root) {
		switch child.Kind() {
		case "package_declaration":
			for _, part := range namedChildren(child) {
				if part.Kind() == "scoped_identifier" || part.Kind() == "identifier" {
					f.pkg = f.text(part)
					break
				}
			}
		case "import_declaration":
			f.addImport(child)
		}
	}
}

func (f *javaFile) addImport(decl *sitter.Node) {
	var name string

	for i := uint(0); i < decl.ChildCount(); i++ {
		child := decl.Child(i)

		switch child.Kind() {
		case "static", "asterisk":
			// static members and on-demand imports do not name a type
			return
		case "scoped_identifier", "identifier":
			name = f.text(child)
		}
	}

	if name == "" {
		return
	}

	binary := binaryName(name)
	f.imports[simpleName(binary)] = binary
}

// indexTypes records every type declared in the file so that references by
// simple name resolve to the local declaration.
func (f *javaFile) indexTypes(root *sitter.Node) {
	type pending struct {
		node   *sitter.Node
		parent string
	}

	var stack []pending

	for _, child := range namedChildren(root) {
		if isTypeDeclaration(child.Kind()) {
			stack = append(stack, pending{node: child})
		}
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		name := f.text(item.node.ChildByFieldName("name"))
		binary := f.binaryName(item.parent, name)

		if _, seen := f.local[name]; !seen {
			f.local[name] = binary
		}

		for _, decl := range bodyDeclarations(item.node.ChildByFieldName("body")) {
			if isTypeDeclaration(decl.Kind()) {
				stack = append(stack, pending{node: decl, parent: binary})
			}
		}
	}
}

func (f *javaFile) binaryName(parent, name string) string {
	switch {
	case parent != "":
		return parent + "$" + name
	case f.pkg != "":
		return f.pkg + "." + name
	}

	return name
}

func (f *javaFile) typeDescriptor(node *sitter.Node, enclosing *m.TypeDescriptor, outer typeVars) *m.TypeDescriptor {
	name := f.text(node.ChildByFieldName("name"))

	parent := ""
	if enclosing != nil {
		parent = enclosing.Name
	}

	mods, annotations, _ := f.modifiers(node)
	if mods.Has(m.ModPrivate) {
		return nil
	}

	kind := typeKind(node.Kind())

	switch kind {
	case m.KindInterface, m.KindAnnotation:
		mods |= m.ModInterface | m.ModAbstract
	case m.KindEnum:
		mods |= m.ModFinal
	}

	if enclosing != nil {
		if isInterfaceLike(enclosing.Kind) {
			mods |= m.ModPublic | m.ModStatic
		}

		if kind != m.KindClass || node.Kind() == "record_declaration" {
			mods |= m.ModStatic
		}
	}

	t := &m.TypeDescriptor{
		Name:        f.binaryName(parent, name),
		Kind:        kind,
		Modifiers:   mods,
		Annotations: annotations,
	}

	vars := f.withTypeParameters(outer, node)
	if mods.Has(m.ModStatic) {
		vars = f.withTypeParameters(nil, node)
	}

	f.addMembers(t, node, name, vars)

	return t
}

func (f *javaFile) addMembers(t *m.TypeDescriptor, node *sitter.Node, simple string, vars typeVars) {
	hasConstructor := false

	for _, decl := range bodyDeclarations(node.ChildByFieldName("body")) {
		switch kind := decl.Kind(); {
		case kind == "method_declaration" || kind == "annotation_type_element_declaration":
			f.addMethod(t, f.method(t, decl, vars))
		case kind == "constructor_declaration" || kind == "compact_constructor_declaration":
			hasConstructor = true

			f.addMethod(t, f.constructor(t, decl, simple, node, vars))
		case kind == "field_declaration" || kind == "constant_declaration":
			t.Fields = append(t.Fields, f.fields(t, decl, vars)...)
		case kind == "enum_constant":
			t.Fields = append(t.Fields, &m.MemberDescriptor{
				Name:        f.text(decl.ChildByFieldName("name")),
				Modifiers:   m.ModPublic | m.ModStatic | m.ModFinal,
				Annotations: f.annotationsOf(decl),
				Type:        t.Name,
			})
		case isTypeDeclaration(kind):
			if nested := f.typeDescriptor(decl, t, vars); nested != nil {
				t.Nested = append(t.Nested, nested)
			}
		}
	}

	if node.Kind() == "record_declaration" {
		f.addRecordComponents(t, node, simple, vars)
	}

	switch t.Kind {
	case m.KindClass:
		if !hasConstructor && node.Kind() == "class_declaration" {
			f.addMethod(t, &m.MemberDescriptor{
				Name:      simple,
				Modifiers: t.Modifiers & (m.ModPublic | m.ModProtected | m.ModPrivate),
			})
		}
	case m.KindEnum:
		f.addMethod(t, &m.MemberDescriptor{
			Name:       "values",
			Modifiers:  m.ModPublic | m.ModStatic,
			ReturnType: t.Name + "[]",
		})
		f.addMethod(t, &m.MemberDescriptor{
			Name:       "valueOf",
			Modifiers:  m.ModPublic | m.ModStatic,
			ReturnType: t.Name,
			Parameters: []string{"java.lang.String"},
		})
	}
}

// addMethod appends method unless it is nil or already declared with the
// same parameter types.
func (f *javaFile) addMethod(t *m.TypeDescriptor, method *m.MemberDescriptor) {
	if method == nil {
		return
	}

	for _, existing := range t.Methods {
		if existing.Name == method.Name && slices.Equal(existing.Parameters, method.Parameters) {
			return
		}
	}

	t.Methods = append(t.Methods, method)
}

func (f *javaFile) method(t *m.TypeDescriptor, decl *sitter.Node, outer typeVars) *m.MemberDescriptor {
	mods, annotations, keywords := f.modifiers(decl)

	if isInterfaceLike(t.Kind) {
		if !mods.Has(m.ModPrivate) {
			mods |= m.ModPublic
		}

		if decl.ChildByFieldName("body") == nil && !mods.Has(m.ModStatic) && !keywords.Contains("default") {
			mods |= m.ModAbstract
		}
	}

	if mods.Has(m.ModPrivate) {
		return nil
	}

	vars := f.withTypeParameters(outer, decl)
	returnType := f.typeName(decl.ChildByFieldName("type"), vars) + dimensions(f.text(decl.ChildByFieldName("dimensions")))

	return &m.MemberDescriptor{
		Name:        f.text(decl.ChildByFieldName("name")),
		Modifiers:   mods,
		Annotations: annotations,
		ReturnType:  returnType,
		Parameters:  f.parameters(decl.ChildByFieldName("parameters"), vars),
	}
}

func (f *javaFile) constructor(t *m.TypeDescriptor, decl *sitter.Node, simple string, typeNode *sitter.Node, outer typeVars) *m.MemberDescriptor {
	mods, annotations, _ := f.modifiers(decl)
	if mods.Has(m.ModPrivate) || t.Kind == m.KindEnum {
		return nil
	}

	vars := f.withTypeParameters(outer, decl)

	params := f.parameters(decl.ChildByFieldName("parameters"), vars)
	if decl.Kind() == "compact_constructor_declaration" {
		params = f.parameters(typeNode.ChildByFieldName("parameters"), vars)
	}

	return &m.MemberDescriptor{
		Name:        simple,
		Modifiers:   mods,
		Annotations: annotations,
		Parameters:  params,
	}
}

// addRecordComponents adds the canonical constructor and the accessors of a record.
func (f *javaFile) addRecordComponents(t *m.TypeDescriptor, node *sitter.Node, simple string, vars typeVars) {
	components := node.ChildByFieldName("parameters")
	if components == nil {
		return
	}

	f.addMethod(t, &m.MemberDescriptor{
		Name:       simple,
		Modifiers:  t.Modifiers & (m.ModPublic | m.ModProtected),
		Parameters: f.parameters(components, vars),
	})

	for _, component := range namedChildren(components) {
		if component.Kind() != "formal_parameter" {
			continue
		}

		f.addMethod(t, &m.MemberDescriptor{
			Name:       f.text(component.ChildByFieldName("name")),
			Modifiers:  m.ModPublic,
			ReturnType: f.parameterType(component, vars),
		})
	}
}

func (f *javaFile) fields(t *m.TypeDescriptor, decl *sitter.Node, vars typeVars) []*m.MemberDescriptor {
	mods, annotations, _ := f.modifiers(decl)

	if isInterfaceLike(t.Kind) {
		mods |= m.ModPublic | m.ModStatic | m.ModFinal
	}

	if mods.Has(m.ModPrivate) {
		return nil
	}

	fieldType := f.typeName(decl.ChildByFieldName("type"), vars)

	var fields []*m.MemberDescriptor

	for _, declarator := range namedChildren(decl) {
		if declarator.Kind() != "variable_declarator" {
			continue
		}

		fields = append(fields, &m.MemberDescriptor{
			Name:        f.text(declarator.ChildByFieldName("name")),
			Modifiers:   mods,
			Annotations: annotations,
			Type:        fieldType + dimensions(f.text(declarator.ChildByFieldName("dimensions"))),
		})
	}

	return fields
}

func (f *javaFile) parameters(node *sitter.Node, vars typeVars) []string {
	var params []string

	for _, param := range namedChildren(node) {
		switch param.Kind() {
		case "formal_parameter":
			params = append(params, f.parameterType(param, vars))
		case "spread_parameter":
			params = append(params, f.typeName(spreadType(param), vars)+"[]")
		}
	}

	return params
}

func (f *javaFile) parameterType(param *sitter.Node, vars typeVars) string {
	return f.typeName(param.ChildByFieldName("type"), vars) + dimensions(f.text(param.ChildByFieldName("dimensions")))
}

// modifiers returns the modifier bits, the qualified annotation names and
// the raw keywords of a declaration.
func (f *javaFile) modifiers(decl *sitter.Node) (m.Modifiers, []string, m.Set[string]) {
	var (
		mods        m.Modifiers
		annotations []string
	)

	keywords := make(m.Set[string])

	node := modifiersNode(decl)
	if node == nil {
		return mods, annotations, keywords
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "marker_annotation", "annotation":
			annotations = append(annotations, f.qualify(f.text(child.ChildByFieldName("name")), nil))
		default:
			keyword := f.text(child)
			if alias, ok := keywordAliases[keyword]; ok {
				keyword = alias
			}

			keywords[keyword] = struct{}{}

			if bit, ok := m.ModifierForKeyword(keyword); ok {
				mods |= bit
			}
		}
	}

	return mods, annotations, keywords
}

func (f *javaFile) annotationsOf(decl *sitter.Node) []string {
	_, annotations, _ := f.modifiers(decl)
	return annotations
}

func (f *javaFile) withTypeParameters(outer typeVars, decl *sitter.Node) typeVars {
	params := decl.ChildByFieldName("type_parameters")
	if params == nil {
		return outer
	}

	vars := make(typeVars, len(outer))
	for name, erased := range outer {
		vars[name] = erased
	}

	type bounded struct {
		name  string
		bound *sitter.Node
	}

	var bounds []bounded

	for _, param := range namedChildren(params) {
		if param.Kind() != "type_parameter" {
			continue
		}

		var name string

		for _, part := range namedChildren(param) {
			switch {
			case name == "" && (part.Kind() == "type_identifier" || part.Kind() == "identifier"):
				name = f.text(part)
				vars[name] = objectType
			case part.Kind() == "type_bound" && name != "":
				bounds = append(bounds, bounded{name: name, bound: part.NamedChild(0)})
			}
		}
	}

	// a bound may name any parameter of the same list
	for _, b := range bounds {
		if b.bound != nil {
			vars[b.name] = f.typeName(b.bound, vars)
		}
	}

	return vars
}

// typeName renders a type node as the comparator prints it: qualified,
// generics erased, nested types joined with '$'.
func (f *javaFile) typeName(node *sitter.Node, vars typeVars) string {
	if node == nil {
		return ""
	}

	switch kind := node.Kind(); {
	case primitiveTypeKinds.Contains(kind):
		return f.text(node)
	case kind == "array_type":
		return f.typeName(node.ChildByFieldName("element"), vars) + dimensions(f.text(node.ChildByFieldName("dimensions")))
	case kind == "generic_type":
		return f.typeName(node.NamedChild(0), vars)
	case kind == "annotated_type":
		return f.typeName(node.NamedChild(node.NamedChildCount()-1), vars)
	}

	return f.qualify(eraseGenerics(f.text(node)), vars)
}

// qualify resolves a simple or dotted type name the way the compiler would:
// type variables, single-type imports, types of this file, java.lang, then
// the current package.
func (f *javaFile) qualify(name string, vars typeVars) string {
	head, rest, dotted := strings.Cut(name, ".")

	var base string

	switch {
	case name == "":
		return ""
	case vars[name] != "":
		return vars[name]
	case f.imports[head] != "":
		base = f.imports[head]
	case f.local[head] != "":
		base = f.local[head]
	case javaLangTypes.Contains(head):
		base = "java.lang." + head
	case dotted && startsLower(head):
		return binaryName(name)
	default:
		base = f.binaryName("", head)
	}

	if dotted {
		base += "$" + strings.ReplaceAll(rest, ".", "$")
	}

	return base
}

// binaryName turns a dotted canonical name into a binary name, assuming
// lower-case package segments and upper-case type segments.
func binaryName(name string) string {
	parts := strings.Split(name, ".")

	for i, part := range parts {
		if part != "" && !startsLower(part) {
			return strings.Join(parts[:i+1], ".") + joinNested(parts[i+1:])
		}
	}

	return name
}

func joinNested(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	return "$" + strings.Join(parts, "$")
}

func simpleName(binary string) string {
	if i := strings.LastIndexAny(binary, ".$"); i >= 0 {
		return binary[i+1:]
	}

	return binary
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}

func eraseGenerics(text string) string {
	var b strings.Builder

	depth := 0

	for _, r := range text {
		switch {
		case r == '<':
			depth++
		case r == '>':
			depth--
		case depth == 0 && !unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}

	return b.String()
}

func dimensions(text string) string {
	return strings.Repeat("[]", strings.Count(text, "["))
}

func spreadType(param *sitter.Node) *sitter.Node {
	if t := param.ChildByFieldName("type"); t != nil {
		return t
	}

	for _, child := range namedChildren(param) {
		if child.Kind() != "modifiers" && child.Kind() != "variable_declarator" {
			return child
		}
	}

	return nil
}

func modifiersNode(decl *sitter.Node) *sitter.Node {
	for _, child := range namedChildren(decl) {
		if child.Kind() == "modifiers" {
			return child
		}
	}

	return nil
}

// bodyDeclarations flattens a class, interface, enum or annotation body.
func bodyDeclarations(body *sitter.Node) []*sitter.Node {
	var decls []*sitter.Node

	for _, child := range namedChildren(body) {
		if child.Kind() == "enum_body_declarations" {
			decls = append(decls, namedChildren(child)...)
			continue
		}

		decls = append(decls, child)
	}

	return decls
}

func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}

	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			children = append(children, child)
		}
	}

	return children
}

func isTypeDeclaration(kind string) bool {
	switch kind {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"annotation_type_declaration", "record_declaration":
		return true
	}

	return false
}

func typeKind(nodeKind string) m.TypeKind {
	switch nodeKind {
	case "interface_declaration":
		return m.KindInterface
	case "enum_declaration":
		return m.KindEnum
	case "annotation_type_declaration":
		return m.KindAnnotation
	}

	return m.KindClass
}

func isInterfaceLike(kind m.TypeKind) bool {
	return kind == m.KindInterface || kind == m.KindAnnotation
}
