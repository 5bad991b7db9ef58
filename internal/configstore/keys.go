package configstore

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SanitizeKey normalises a configuration key: surrounding space is trimmed,
// inner whitespace runs become "_", the key is lower-cased when fold is set,
// and every rune other than a letter, digit, '-', '_', '.' or '+' is dropped.
// SanitizeKey(SanitizeKey(k, f), f) == SanitizeKey(k, f).
func SanitizeKey(key string, fold bool) string {
	key = strings.Join(strings.Fields(key), "_")
	if fold {
		key = cases.Lower(language.Und).String(key)
	}
	return strings.Map(func(r rune) rune {
		if keyRune(r) {
			return r
		}
		return -1
	}, key)
}

func keyRune(r rune) bool {
	switch r {
	case '-', '_', '.', '+':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// KeyPolicy controls key normalisation and which keys may be written.
type KeyPolicy struct {
	// FoldCase lower-cases keys before storage and lookup.
	FoldCase bool
	// Allowed, when non-empty, is the complete set of writable keys. Reads and
	// deletes are not restricted by it.
	Allowed []string
}

type keyRules struct {
	fold    bool
	allowed map[string]struct{}
}

func newKeyRules(p KeyPolicy) keyRules {
	r := keyRules{fold: p.FoldCase}
	if len(p.Allowed) > 0 {
		r.allowed = make(map[string]struct{}, len(p.Allowed))
		for _, k := range p.Allowed {
			if k = SanitizeKey(k, p.FoldCase); k != "" {
				r.allowed[k] = struct{}{}
			}
		}
	}
	return r
}

func (r keyRules) sanitize(key string) (string, bool) {
	k := SanitizeKey(key, r.fold)
	return k, k != ""
}

func (r keyRules) writable(key string) bool {
	if r.allowed == nil {
		return true
	}
	_, ok := r.allowed[key]
	return ok
}
