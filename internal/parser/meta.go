package parser

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// metaLineIndexes lists pages whose header is not the first line.
var metaLineIndexes = map[string]int{
	"71-arbejdelse.txt":            1,
	"97-balstyrig.txt":             1,
	"430-eftergøre.txt":            1,
	"875-gildeskorn.txt":           1,
	"897-gnistne.txt":              1,
	"1109-hosskrift.txt":           1,
	"1138-husbrand.txt":            1,
	"1233-indermere (inderst).txt": 2,
	"1267-istædelæder.txt":         1,
	"1289-jorsal.txt":              1,
	"1400-knuderig.txt":            2,
	"1461-krejge.txt":              1,
	"1508-kvartaladmiral.txt":      1,
	"1532-kæbel.txt":               2,
	"1549-kølve.txt":               2,
	"2514-skibels(e).txt":          1,
	"2523-skinbarlig.txt":          1,
	"2530-skjudebane.txt":          2,
	"2648-snablet.txt":             1,
}

// splitPoints lists pages where one letter ends and the next begins, with
// the line the second letter starts on.
var splitPoints = map[string]int{
	"87-axelkøbstad.txt":      50,
	"329-bøs.txt":             47,
	"484-fabel.txt":           4,
	"962-gørrel.txt":          37,
	"1200-høved(s)mand.txt":   24,
	"1269-ivæve.txt":          12,
	"1300-jødetempel.txt":     30,
	"1552-køterkro.txt":       7,
	"1912-mørsk.txt":          21,
	"2005-nøvelige.txt":       23,
	"2172-øxentorv.txt":       18,
	"2387-røtte (rotte).txt":  37,
	"2921-søstergård.txt":     26,
	"3156-tøve.txt":           16,
	"3554-vævel.txt":          49,
	"3555-ybisk.txt":          12,
	"3587-æven[æm]tyrlig.txt": 25,
	"3635-årtrålig.txt":       37,
}

// pageLetters overrides the headword letters derived from a page name.
var pageLetters = map[string][]string{
	"87-axelkøbstad.txt":           {"A", "B"},
	"329-bøs.txt":                  {"B", "D"},
	"484-fabel.txt":                {"E", "F"},
	"569-(flyning).txt":            {"F"},
	"785-(Vor) Frueaften.txt":      {"F"},
	"962-gørrel.txt":               {"G", "H"},
	"1200-høved(s)mand.txt":        {"H", "I"},
	"1269-ivæve.txt":               {"I", "J"},
	"1300-jødetempel.txt":          {"J", "K"},
	"1435-(Hellig)\nKorsaften.txt": {"H"},
	"1552-køterkro.txt":            {"K", "L"},
	"1912-mørsk.txt":               {"M", "N"},
	"2005-nøvelige.txt":            {"N", "O"},
	"2172-øxentorv.txt":            {"O", "P"},
	"2387-røtte (rotte).txt":       {"R", "S"},
	"2921-søstergård.txt":          {"S", "T"},
	"3156-tøve.txt":                {"T", "U"},
	"3554-vævel.txt":               {"V", "X"},
	"3555-ybisk.txt":               {"X", "Y"},
	"3587-æven[æm]tyrlig.txt":      {"Æ", "Ø"},
	"3635-årtrålig.txt":            {"Å", "Æ"},
}

// Replacement is a known OCR misreading on one page.
type Replacement struct {
	Old string
	New string
}

var corrections = map[string][]Replacement{
	"1-abelig.txt":       {{"Ablat se oblat.", "Ablat, se oblat."}},
	"97-balstyrig.txt":   {{"Bandsdoc.", "Bandsdag,"}},
	"1109-hosskrift.txt": {{"Hovslager", "Hovslager,"}},
	"1781-midaldret.txt": {{"Moth.—Middagskost,", "Moth. —Middagskost,"}},
	"1820-mildelse.txt":  {{"Moth.—Mildre", "Moth. —Mildre"}},
	"2387-røtte (rotte).txt": {
		{"Bøttelort", "Røttelort"},
		{"Røtteskår", "Røtteskar,"},
		{"Bøve", "Røve"},
	},
	"2172-øxentorv.txt": {{"Fadre", "Padre"}, {"Padse.", "Padse,"}},
}

// MetaLineIndex returns the line holding the page header.
func MetaLineIndex(name string) int {
	return metaLineIndexes[name]
}

// SplitPoint returns the line where the second letter of a two-letter page
// begins. ok is false for ordinary pages.
func SplitPoint(name string) (line int, ok bool) {
	line, ok = splitPoints[name]
	return line, ok
}

// Letters returns the upper-case letters headwords on the page start with.
// Unless overridden, this is the first letter of the headword in the page
// name "<index>-<headword>.txt". It returns nil when the name has no
// headword part.
func Letters(name string) []string {
	if letters, ok := pageLetters[name]; ok {
		return slices.Clone(letters)
	}
	_, headword, ok := strings.Cut(name, "-")
	if !ok || headword == "" {
		return nil
	}
	r, _ := utf8.DecodeRuneInString(headword)
	return []string{strings.ToUpper(string(r))}
}

// Corrections returns the known misreadings for the page.
func Corrections(name string) []Replacement {
	return slices.Clone(corrections[name])
}

// applyCorrections returns a copy of lines with each replacement applied to
// its first occurrence on the page. Lines that already read correctly are
// passed over.
func applyCorrections(name string, lines []string) []string {
	out := slices.Clone(lines)
	for _, r := range corrections[name] {
		for i, line := range out {
			if strings.Contains(r.New, r.Old) && strings.Contains(line, r.New) {
				continue
			}
			if strings.Contains(line, r.Old) {
				out[i] = strings.Replace(line, r.Old, r.New, 1)
				break
			}
		}
	}
	return out
}

// pageIndex returns the numeric prefix of a page name.
func pageIndex(name string) (int, bool) {
	prefix, _, ok := strings.Cut(name, "-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, false
	}
	return n, true
}
