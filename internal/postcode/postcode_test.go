package postcode

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeCanonicalizes(t *testing.T) {
	cases := map[string]string{
		"SW1A 1AA":     "SW1A 1AA",
		"sw1a1aa":      "SW1A 1AA",
		"  ls1   1aa ": "LS1 1AA",
		"m11ae":        "M1 1AE",
		"B33 8TH":      "B33 8TH",
		"cr2 6xh":      "CR2 6XH",
		"DN55 1PT":     "DN55 1PT",
		"ZZ99 9ZZ":     "ZZ99 9ZZ",
		"ＳＷ１Ａ １ＡＡ":    "SW1A 1AA",
		"ec1a\t1bb":    "EC1A 1BB",
	}

	for raw, want := range cases {
		got, err := Normalize(raw)
		if err != nil {
			t.Fatalf("expected %q to be valid, got %v", raw, err)
		}
		if got.String() != want {
			t.Fatalf("expected %q to normalize to %q, got %q", raw, want, got.String())
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, raw := range []string{"sw1a1aa", "  ls1   1aa ", "M1 1AE", "zz999zz"} {
		first, err := Normalize(raw)
		if err != nil {
			t.Fatalf("expected %q to be valid, got %v", raw, err)
		}
		second, err := Normalize(first.String())
		if err != nil {
			t.Fatalf("expected canonical %q to be valid, got %v", first.String(), err)
		}
		if first != second {
			t.Fatalf("expected idempotent normalization, got %q then %q", first.String(), second.String())
		}
	}
}

func TestNormalizeRejectsInvalidInput(t *testing.T) {
	invalid := []string{
		"",
		"   ",
		"SW1A",
		"1AA",
		"SW1A 1A",
		"SW1A-1AA",
		"12345",
		"ABC1 1AA",
		"SW1A 1AAA",
		strings.Repeat("A", 17),
		"SW1A " + strings.Repeat(" ", 20) + "1AA",
		"<script>",
	}

	for _, raw := range invalid {
		got, err := Normalize(raw)
		if !errors.Is(err, ErrInvalidPostcode) {
			t.Fatalf("expected %q to fail with ErrInvalidPostcode, got %v", raw, err)
		}
		if !got.IsZero() {
			t.Fatalf("expected zero postcode for %q, got %q", raw, got.String())
		}
	}
}

func TestPostcodeParts(t *testing.T) {
	pc, err := Normalize("sw1a1aa")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.Outward() != "SW1A" || pc.Inward() != "1AA" {
		t.Fatalf("expected SW1A/1AA, got %q/%q", pc.Outward(), pc.Inward())
	}
	if pc.Compact() != "SW1A1AA" {
		t.Fatalf("expected compact SW1A1AA, got %q", pc.Compact())
	}
	if Valid("not a postcode") {
		t.Fatal("expected Valid to reject garbage")
	}
}
