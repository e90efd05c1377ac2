package parser

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// Alphabet is the old Danish alphabet in dictionary order.
	Alphabet = "abcdefghijklmnopqrstuvwxyzæøå"

	// HeadwordAlphabet holds the letters headwords can start with.
	HeadwordAlphabet = "abdefghijklmnopqrstuvwxyzæøå"
)

var (
	alphabetRunes = []rune(Alphabet)
	headwordRunes = []rune(HeadwordAlphabet)
)

// letterIndex returns the position of letter's first rune in alphabet, or -1.
func letterIndex(alphabet []rune, letter string) int {
	r, _ := utf8.DecodeRuneInString(strings.ToLower(letter))
	return slices.Index(alphabet, r)
}

// IsAfter reports whether a comes after b in Alphabet.
// Letters outside the alphabet sort last.
func IsAfter(a, b string) bool {
	return rank(a) > rank(b)
}

// Sequential reports whether a and b are the same or neighbouring headword
// letters, as on a page where one letter ends and the next begins.
func Sequential(a, b string) (bool, error) {
	i, j := letterIndex(headwordRunes, a), letterIndex(headwordRunes, b)
	if i < 0 || j < 0 {
		return false, fmt.Errorf("%w: %q and %q", ErrUnknownLetter, a, b)
	}
	d := i - j
	return d >= -1 && d <= 1, nil
}

func rank(letter string) int {
	if i := letterIndex(alphabetRunes, letter); i >= 0 {
		return i
	}
	return len(alphabetRunes)
}

// sortLetters orders letters alphabetically and drops duplicates.
func sortLetters(letters []string) []string {
	out := slices.Clone(letters)
	slices.SortFunc(out, func(a, b string) int {
		return cmp.Or(rank(a)-rank(b), strings.Compare(a, b))
	})
	return slices.Compact(out)
}
