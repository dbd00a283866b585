// Package postcode validates and canonicalizes UK postcodes.
//
// A Postcode value can only be obtained from Normalize, so any Postcode that
// is not the zero value has passed validation.
package postcode

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidPostcode is returned when input does not match the postcode grammar.
var ErrInvalidPostcode = errors.New("postcode: invalid postcode")

// maxRawLength bounds the trimmed input in runes. The longest canonical
// postcode is 8 characters; the slack allows for stray inner spacing.
const maxRawLength = 16

const inwardLength = 3

// compactPattern matches a postcode with all whitespace removed.
var compactPattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?[0-9][A-Z]{2}$`)

// Postcode is a canonical postcode: uppercase, outward and inward code
// separated by a single space.
type Postcode struct {
	value string
}

// Normalize validates raw input and returns its canonical form.
func Normalize(raw string) (Postcode, error) {
	folded := strings.TrimSpace(norm.NFKC.String(raw))
	if folded == "" || utf8.RuneCountInString(folded) > maxRawLength {
		return Postcode{}, ErrInvalidPostcode
	}

	compact := strings.ToUpper(strings.Map(dropSpace, folded))
	if !compactPattern.MatchString(compact) {
		return Postcode{}, ErrInvalidPostcode
	}

	split := len(compact) - inwardLength
	return Postcode{value: compact[:split] + " " + compact[split:]}, nil
}

// Valid reports whether raw would normalize successfully.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// String returns the canonical form, e.g. "SW1A 1AA".
func (p Postcode) String() string {
	return p.value
}

// Compact returns the canonical form without the separating space.
func (p Postcode) Compact() string {
	return strings.ReplaceAll(p.value, " ", "")
}

// Outward returns the outward code, e.g. "SW1A".
func (p Postcode) Outward() string {
	outward, _, _ := strings.Cut(p.value, " ")
	return outward
}

// Inward returns the inward code, e.g. "1AA".
func (p Postcode) Inward() string {
	_, inward, _ := strings.Cut(p.value, " ")
	return inward
}

// IsZero reports whether p was never produced by Normalize.
func (p Postcode) IsZero() bool {
	return p.value == ""
}

func dropSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return -1
	}
	return r
}
