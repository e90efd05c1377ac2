package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseEntry(t *testing.T) {
	t.Parallel()

	letters := []string{"A"}
	tests := []struct {
		name string
		raw  string
		want Entry
	}{
		{
			name: "headword ending in comma",
			raw:  "AFKLAPPE, vb. slå af. —",
			want: Entry{Headword: "Afklappe", Definitions: "vb. slå af. —"},
		},
		{
			name: "whitespace collapsed",
			raw:  "  AFKOM,  sb.\tefterslægt;   børn. ",
			want: Entry{Headword: "Afkom", Definitions: "sb. efterslægt; børn."},
		},
		{
			name: "continuation of previous entry",
			raw:  "af komne met wore mynde. —",
			want: Entry{Headword: "af", Definitions: "komne met wore mynde. —", Status: StatusPartial},
		},
		{
			name: "headword without comma",
			raw:  "Aalborg sb. by.",
			want: Entry{Headword: "Aalborg", Definitions: "sb. by.", Status: StatusPartial},
		},
		{
			name: "headword broken across lines",
			raw:  "AFKON- TRAFEJ, sb. billede.",
			want: Entry{Headword: "Afkontrafej", Definitions: "sb. billede."},
		},
		{
			name: "known typo",
			raw:  "AZELKØBSTAD, sb. by.",
			want: Entry{Headword: "Axelkøbstad", Definitions: "sb. by."},
		},
		{
			name: "headword run into definition",
			raw:  "Abeganterino.narreverk. Moth.",
			want: Entry{Headword: "Abeganteri", Definitions: "no. narreverk. Moth."},
		},
		{
			name: "headword only",
			raw:  "AFKORT,",
			want: Entry{Headword: "Afkort"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, ParseEntry(tt.raw, letters)); diff != "" {
				t.Errorf("ParseEntry() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("bare headword", func(t *testing.T) {
		t.Parallel()

		got := ParseEntry("X i forb x for v.", []string{"X"})
		want := Entry{Headword: "X", Definitions: "i forb x for v."}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ParseEntry() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestEntrySenses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		definitions string
		want        []string
	}{
		{
			name:        "single definition",
			definitions: "Foo bar baz",
			want:        []string{"Foo bar baz"},
		},
		{
			name:        "single numbered definition",
			definitions: "go. 1) at tale uforståe- ligt. Moth;",
			want:        []string{"go.", "1) at tale uforståe- ligt. Moth;"},
		},
		{
			name:        "several numbered definitions",
			definitions: "go. 1) komme fra. N. D. Mag. VI. 104. — 2) komme af (1526). — 3) aflægges.",
			want: []string{
				"go.",
				"1) komme fra. N. D. Mag. VI. 104. —",
				"2) komme af (1526). —",
				"3) aflægges.",
			},
		},
		{
			name:        "out of order numbers",
			definitions: "Foo bar baz 1) bar bar 3) baz baz 2) foo foo ",
			want:        []string{"Foo bar baz 1) bar bar 3) baz baz 2) foo foo "},
		},
		{
			name:        "numbering from the start",
			definitions: "1) en. 2) to.",
			want:        []string{"1) en.", "2) to."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := Entry{Headword: "Foo", Definitions: tt.definitions}
			if diff := cmp.Diff(tt.want, e.Senses()); diff != "" {
				t.Errorf("Senses() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntryCombine(t *testing.T) {
	t.Parallel()

	e := Entry{Headword: "Ydeko", Definitions: "no. ko, der gaves som", Page: "3555-ybisk.txt"}
	got := e.combine(Entry{Headword: "afgift;", Definitions: "DC 183. —", Status: StatusPartial, Page: "3556-ydekorn.txt"})

	want := Entry{Headword: "Ydeko", Definitions: "no. ko, der gaves som afgift; DC 183. —", Page: "3555-ybisk.txt"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("combine() mismatch (-want +got):\n%s", diff)
	}
}
