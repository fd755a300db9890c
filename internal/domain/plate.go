package domain

import "strings"

// PlateNormalizer canonicalizes raw OCR text into a comparable plate key.
// OCR output for the same physical plate flickers between look-alike
// characters frame to frame, so a fixed substitution table maps the usual
// confusions onto one canonical form before anything downstream compares
// plates.
type PlateNormalizer struct {
	minLength     int
	substitutions map[rune]rune
}

// DefaultSubstitutions covers the confusions the camera OCR produces most
// often. Whether a letter or a digit is correct for a given position is not
// knowable without per-state plate templates, so the table maps every
// ambiguous glyph to the digit form, which keeps normalization deterministic.
func DefaultSubstitutions() map[rune]rune {
	return map[rune]rune{
		'O': '0',
		'Q': '0',
		'D': '0',
		'I': '1',
		'L': '1',
		'Z': '2',
		'S': '5',
		'B': '8',
	}
}

func NewPlateNormalizer(minLength int, substitutions map[rune]rune) *PlateNormalizer {
	if minLength <= 0 {
		minLength = 4
	}
	if substitutions == nil {
		substitutions = map[rune]rune{}
	}
	return &PlateNormalizer{minLength: minLength, substitutions: substitutions}
}

// Normalize strips non-alphanumeric characters, uppercases, applies the
// substitution table and checks the minimal plate shape. The second return
// is false when the input does not look like a plate at all; callers must
// discard such observations without any effect.
func (n *PlateNormalizer) Normalize(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			continue
		}
		if sub, ok := n.substitutions[r]; ok {
			r = sub
		}
		b.WriteRune(r)
	}
	key := b.String()
	if len(key) < n.minLength {
		return "", false
	}
	return key, true
}
