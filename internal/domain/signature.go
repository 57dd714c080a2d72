package domain

import (
	"errors"
	"fmt"
	"strings"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

// ErrNotFound reports that a type or member does not exist in a snapshot.
// It is an expected outcome: differences often describe declarations that
// only exist on one side of the comparison.
var ErrNotFound = errors.New("not found")

// ErrNoSuchMember is returned when a difference carries no member signature.
var ErrNoSuchMember = fmt.Errorf("no such member: %w", ErrNotFound)

// MalformedSignatureError is returned for signatures the parser cannot tokenize.
type MalformedSignatureError struct {
	Signature string
	Reason    string
}

func (e *MalformedSignatureError) Error() string {
	return fmt.Sprintf("malformed signature %q: %s", e.Signature, e.Reason)
}

// ParsedSignature is the structured form of a rendered member signature.
type ParsedSignature struct {
	Modifiers  m.Modifiers
	ReturnType string
	Name       string
	Parameters []string
}

// ParseSignature parses a signature as rendered by the comparator, for example
// "public static java.lang.String valueOf(int, boolean)". A constructor has no
// return type: "protected Widget(java.lang.String)".
func ParseSignature(signature string) (ParsedSignature, error) {
	if strings.TrimSpace(signature) == "" {
		return ParsedSignature{}, ErrNoSuchMember
	}

	malformed := func(reason string) error {
		return &MalformedSignatureError{Signature: signature, Reason: reason}
	}

	tokens := strings.Fields(strings.ReplaceAll(signature, ", ", ","))

	call := -1

	for i, token := range tokens {
		if strings.Contains(token, "(") {
			call = i
			break
		}
	}

	if call < 0 {
		return ParsedSignature{}, malformed("missing parameter list")
	}

	callable := strings.Join(tokens[call:], " ")
	if !strings.HasSuffix(callable, ")") {
		return ParsedSignature{}, malformed("unterminated parameter list")
	}

	name, rawParams, _ := strings.Cut(strings.TrimSuffix(callable, ")"), "(")
	if name == "" {
		return ParsedSignature{}, malformed("missing member name")
	}

	if strings.ContainsAny(rawParams, "()") {
		return ParsedSignature{}, malformed("unbalanced parentheses")
	}

	params, err := splitParameters(rawParams)
	if err != nil {
		return ParsedSignature{}, malformed(err.Error())
	}

	leading := tokens[:call]
	returnType := ""

	if n := len(leading); n > 0 {
		if _, isModifier := m.ModifierForKeyword(leading[n-1]); !isModifier {
			returnType = leading[n-1]
			leading = leading[:n-1]
		}
	}

	mods, err := m.ParseModifiers(leading)
	if err != nil {
		return ParsedSignature{}, malformed(err.Error())
	}

	return ParsedSignature{
		Modifiers:  mods,
		ReturnType: returnType,
		Name:       name,
		Parameters: params,
	}, nil
}

func splitParameters(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	params := make([]string, 0, len(parts))

	for i, part := range parts {
		param := strings.TrimSpace(part)
		if param == "" {
			return nil, fmt.Errorf("empty parameter at position %d", i)
		}

		params = append(params, param)
	}

	return params, nil
}

// Matches reports whether a declared method satisfies the parsed signature.
// The declared modifiers may carry more bits than the signature mentions.
func (ps ParsedSignature) Matches(method *m.MemberDescriptor) bool {
	if method.Name != ps.Name || method.ReturnType != ps.ReturnType {
		return false
	}

	if len(method.Parameters) != len(ps.Parameters) {
		return false
	}

	for i, param := range ps.Parameters {
		if method.Parameters[i] != param {
			return false
		}
	}

	return method.Modifiers.Has(ps.Modifiers)
}
