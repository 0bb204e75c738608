package token

import "fmt"

// Kind represents the category of a grammar token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the input.
	EOF
	// Word is a run of letters, digits and underscores.
	Word
	// Separator is any single character that is not part of a word.
	Separator
	// Special is a configured special sequence such as "->" or "@".
	Special
	// String is a quoted literal, only produced while string recognition is on.
	String
	// Whitespace is a run of blanks, only produced while whitespace is significant.
	Whitespace
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Word:       "Word",
	Separator:  "Separator",
	Special:    "Special",
	String:     "String",
	Whitespace: "Whitespace",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Companion is a semantic tag attached to a special sequence.
type Companion uint8

const (
	CompNone Companion = iota
	// CompSpecialBlock marks the sentinel introducing a special block ("@").
	CompSpecialBlock
	// CompMap marks the mapping arrow ("->").
	CompMap
)

func (c Companion) String() string {
	switch c {
	case CompSpecialBlock:
		return "SpecialBlock"
	case CompMap:
		return "Map"
	default:
		return "None"
	}
}
