package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLetters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page string
		want []string
	}{
		{name: "from page name", page: "12-afklappe.txt", want: []string{"A"}},
		{name: "non-ascii letter", page: "3600-øre.txt", want: []string{"Ø"}},
		{name: "two-letter page", page: "3555-ybisk.txt", want: []string{"X", "Y"}},
		{name: "parenthesized name", page: "569-(flyning).txt", want: []string{"F"}},
		{name: "no headword", page: "cover.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, Letters(tt.page)); diff != "" {
				t.Errorf("Letters(%q) mismatch (-want +got):\n%s", tt.page, diff)
			}
		})
	}
}

func TestPageMetadata(t *testing.T) {
	t.Parallel()

	if got := MetaLineIndex("1400-knuderig.txt"); got != 2 {
		t.Errorf("MetaLineIndex() = %d, want 2", got)
	}
	if got := MetaLineIndex("12-afklappe.txt"); got != 0 {
		t.Errorf("MetaLineIndex() = %d, want 0", got)
	}

	if at, ok := SplitPoint("484-fabel.txt"); !ok || at != 4 {
		t.Errorf("SplitPoint() = %d, %v, want 4, true", at, ok)
	}
	if _, ok := SplitPoint("12-afklappe.txt"); ok {
		t.Error("SplitPoint() ok for an ordinary page")
	}

	want := []Replacement{{Old: "Bandsdoc.", New: "Bandsdag,"}}
	if diff := cmp.Diff(want, Corrections("97-balstyrig.txt")); diff != "" {
		t.Errorf("Corrections() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyCorrections(t *testing.T) {
	t.Parallel()

	lines := []string{"meta", "Hovslager, sb.", "Hovslager sb. smed."}
	got := applyCorrections("1109-hosskrift.txt", lines)

	want := []string{"meta", "Hovslager, sb.", "Hovslager, sb. smed."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("applyCorrections() mismatch (-want +got):\n%s", diff)
	}
	if lines[1] != "Hovslager, sb." {
		t.Error("applyCorrections() modified its input")
	}

	got = applyCorrections("1-abelig.txt", []string{"x", "Ablat se oblat.", "Ablat se oblat."})
	want = []string{"x", "Ablat, se oblat.", "Ablat se oblat."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("applyCorrections() mismatch (-want +got):\n%s", diff)
	}
}

func TestAlphabet(t *testing.T) {
	t.Parallel()

	t.Run("order", func(t *testing.T) {
		t.Parallel()

		if !IsAfter("ø", "z") {
			t.Error(`IsAfter("ø", "z") = false`)
		}
		if IsAfter("A", "b") {
			t.Error(`IsAfter("A", "b") = true`)
		}
		if diff := cmp.Diff([]string{"A", "Z", "Æ", "Å"}, sortLetters([]string{"Å", "Z", "A", "Æ", "A"})); diff != "" {
			t.Errorf("sortLetters() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("sequential letters", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			a, b string
			want bool
		}{
			{"a", "b", true},
			{"B", "D", true},
			{"y", "x", true},
			{"Å", "Æ", false},
			{"Æ", "Ø", true},
			{"a", "e", false},
		}
		for _, tt := range tests {
			got, err := Sequential(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Sequential(%q, %q) error = %v", tt.a, tt.b, err)
			}
			if got != tt.want {
				t.Errorf("Sequential(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		}
	})

	t.Run("unknown letter", func(t *testing.T) {
		t.Parallel()

		if _, err := Sequential("c", "d"); !errors.Is(err, ErrUnknownLetter) {
			t.Errorf("Sequential() error = %v, want ErrUnknownLetter", err)
		}
	})
}
