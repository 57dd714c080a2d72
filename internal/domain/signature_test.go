package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "apicheck.dev/pkg/apicheck/internal/model"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		want      ParsedSignature
	}{
		{
			name:      "modifiers return type and parameters",
			signature: "public static ReturnType name(ParamA, ParamB)",
			want: ParsedSignature{
				Modifiers:  m.ModPublic | m.ModStatic,
				ReturnType: "ReturnType",
				Name:       "name",
				Parameters: []string{"ParamA", "ParamB"},
			},
		},
		{
			name:      "no parameters",
			signature: "private name()",
			want:      ParsedSignature{Modifiers: m.ModPrivate, Name: "name"},
		},
		{
			name:      "constructor",
			signature: "protected Widget(java.lang.String)",
			want:      ParsedSignature{Modifiers: m.ModProtected, Name: "Widget", Parameters: []string{"java.lang.String"}},
		},
		{
			name:      "bare method",
			signature: "void run()",
			want:      ParsedSignature{ReturnType: "void", Name: "run"},
		},
		{
			name:      "arrays and no space after comma",
			signature: "public abstract int[] copy(long[],java.lang.Object[])",
			want: ParsedSignature{
				Modifiers:  m.ModPublic | m.ModAbstract,
				ReturnType: "int[]",
				Name:       "copy",
				Parameters: []string{"long[]", "java.lang.Object[]"},
			},
		},
		{
			name:      "extra whitespace",
			signature: "  public   final  boolean  test( int ,  char )  ",
			want: ParsedSignature{
				Modifiers:  m.ModPublic | m.ModFinal,
				ReturnType: "boolean",
				Name:       "test",
				Parameters: []string{"int", "char"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSignature(tt.signature)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSignature_NoParametersIsEmpty(t *testing.T) {
	got, err := ParseSignature("private name()")
	require.NoError(t, err)
	assert.Empty(t, got.Parameters)
	assert.Len(t, got.Parameters, 0)
}

func TestParseSignature_NoSuchMember(t *testing.T) {
	for _, signature := range []string{"", "   "} {
		_, err := ParseSignature(signature)
		require.ErrorIs(t, err, ErrNoSuchMember)
		require.ErrorIs(t, err, ErrNotFound)
	}
}

func TestParseSignature_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		reason    string
	}{
		{"missing parens", "public void run", "missing parameter list"},
		{"unterminated", "public void run(int", "unterminated parameter list"},
		{"missing name", "public void (int)", "missing member name"},
		{"nested parens", "void run((int))", "unbalanced parentheses"},
		{"empty parameter", "void run(int,,long)", "empty parameter at position 1"},
		{"unknown modifier", "public sealed void run()", `unknown modifier "sealed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSignature(tt.signature)
			require.Error(t, err)

			var malformed *MalformedSignatureError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.signature, malformed.Signature)
			assert.Equal(t, tt.reason, malformed.Reason)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestParsedSignature_Matches(t *testing.T) {
	method := &m.MemberDescriptor{
		Name:       "resize",
		Modifiers:  m.ModPublic | m.ModFinal | m.ModSynchronized,
		ReturnType: "void",
		Parameters: []string{"int", "int"},
	}

	tests := []struct {
		name      string
		signature string
		want      bool
	}{
		{"exact modifiers", "public final synchronized void resize(int, int)", true},
		{"subset of modifiers", "public void resize(int, int)", true},
		{"no modifiers", "void resize(int, int)", true},
		{"extra modifier", "public static void resize(int, int)", false},
		{"other name", "public void reshape(int, int)", false},
		{"other return type", "public int resize(int, int)", false},
		{"fewer parameters", "public void resize(int)", false},
		{"other parameter type", "public void resize(int, long)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseSignature(tt.signature)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsed.Matches(method))
		})
	}
}
