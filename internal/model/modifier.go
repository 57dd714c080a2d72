package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Modifiers is a declaration modifier bitmask. Bit assignments follow the
// JVM reflection constants so masks read from class metadata can be used as-is.
type Modifiers uint32

// Modifier bits.
const (
	ModPublic       Modifiers = 0x0001
	ModPrivate      Modifiers = 0x0002
	ModProtected    Modifiers = 0x0004
	ModStatic       Modifiers = 0x0008
	ModFinal        Modifiers = 0x0010
	ModSynchronized Modifiers = 0x0020
	ModVolatile     Modifiers = 0x0040
	ModTransient    Modifiers = 0x0080
	ModNative       Modifiers = 0x0100
	ModInterface    Modifiers = 0x0200
	ModAbstract     Modifiers = 0x0400
	ModStrict       Modifiers = 0x0800
)

// modifierKeywords lists every canonical keyword in rendering order.
var modifierKeywords = []struct {
	keyword string
	bit     Modifiers
}{
	{"public", ModPublic},
	{"protected", ModProtected},
	{"private", ModPrivate},
	{"abstract", ModAbstract},
	{"static", ModStatic},
	{"final", ModFinal},
	{"transient", ModTransient},
	{"volatile", ModVolatile},
	{"synchronized", ModSynchronized},
	{"native", ModNative},
	{"strict", ModStrict},
	{"interface", ModInterface},
}

var modifierByKeyword = func() map[string]Modifiers {
	table := make(map[string]Modifiers, len(modifierKeywords))
	for _, entry := range modifierKeywords {
		table[entry.keyword] = entry.bit
	}

	return table
}()

// ModifierForKeyword returns the bit for a canonical modifier keyword.
func ModifierForKeyword(keyword string) (Modifiers, bool) {
	bit, ok := modifierByKeyword[keyword]
	return bit, ok
}

// ParseModifiers OR-combines the given keywords into a bitmask.
func ParseModifiers(keywords []string) (Modifiers, error) {
	var mods Modifiers

	for _, keyword := range keywords {
		bit, ok := ModifierForKeyword(keyword)
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", keyword)
		}

		mods |= bit
	}

	return mods, nil
}

// Has reports whether every bit of other is set in m.
func (m Modifiers) Has(other Modifiers) bool {
	return m&other == other
}

// Keywords returns the keywords for the set bits in canonical order.
func (m Modifiers) Keywords() []string {
	var keywords []string

	for _, entry := range modifierKeywords {
		if m&entry.bit != 0 {
			keywords = append(keywords, entry.keyword)
		}
	}

	return keywords
}

func (m Modifiers) String() string {
	return strings.Join(m.Keywords(), " ")
}

// MarshalYAML renders the mask as a keyword list.
func (m Modifiers) MarshalYAML() (interface{}, error) {
	return m.Keywords(), nil
}

// UnmarshalYAML accepts a keyword list or a single space separated string.
func (m *Modifiers) UnmarshalYAML(value *yaml.Node) error {
	var keywords []string

	switch value.Kind {
	case yaml.SequenceNode:
		if err := value.Decode(&keywords); err != nil {
			return err
		}
	case yaml.ScalarNode:
		keywords = strings.Fields(value.Value)
	default:
		return fmt.Errorf("line %d: modifiers must be a list of keywords", value.Line)
	}

	mods, err := ParseModifiers(keywords)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*m = mods

	return nil
}
