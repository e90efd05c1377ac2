package parser

import "errors"

var (
	// ErrNotSplitPage is returned when a page has no recorded letter split.
	ErrNotSplitPage = errors.New("page has no letter split")

	// ErrSplitLetters is returned when a split page does not have exactly two letters.
	ErrSplitLetters = errors.New("split page needs exactly two letters")

	// ErrUnknownLetter is returned when a letter is not part of the headword alphabet.
	ErrUnknownLetter = errors.New("letter is not in the headword alphabet")
)
