package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnterminatedString       Code = 1001
	LexUnterminatedBlockComment Code = 1002
	LexInvalidUTF8              Code = 1003

	// Парсерные
	SynInfo                    Code = 2000
	SynUnexpectedToken         Code = 2001
	SynUnexpectedEOF           Code = 2002
	SynMalformedRewritePair    Code = 2003
	SynReservedRuleName        Code = 2004
	SynUnsupportedSpecialBlock Code = 2005
	SynDuplicateSpecialBlock   Code = 2006

	// Компиляция набора правил
	CmpInfo               Code = 3000
	CmpDuplicateRule      Code = 3001
	CmpUndefinedReference Code = 3002
	CmpCyclicReference    Code = 3003
	CmpInvalidPattern     Code = 3004
	CmpNotCompiled        Code = 3005

	// Применение правил
	AplInfo                Code = 4000
	AplUnknownTranslator   Code = 4001
	AplDuplicateTranslator Code = 4002
	AplScriptResultType    Code = 4003
	AplScriptEvaluation    Code = 4004
	AplRewriteLimit        Code = 4005
	AplTranslatorFailed    Code = 4006
	AplNoScriptEvaluator   Code = 4007
)

var codeTitles = map[Code]string{
	UnknownCode: "Unknown error",

	LexInfo:                     "Lexical information",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexInvalidUTF8:              "Invalid UTF-8 sequence",

	SynInfo:                    "Syntax information",
	SynUnexpectedToken:         "Unexpected token",
	SynUnexpectedEOF:           "Unexpected end of input",
	SynMalformedRewritePair:    "Malformed rewrite pair",
	SynReservedRuleName:        "Reserved rule name",
	SynUnsupportedSpecialBlock: "Unsupported special block",
	SynDuplicateSpecialBlock:   "Duplicate special block",

	CmpInfo:               "Compile information",
	CmpDuplicateRule:      "Duplicate rule",
	CmpUndefinedReference: "Undefined rule reference",
	CmpCyclicReference:    "Cyclic rule reference",
	CmpInvalidPattern:     "Invalid rule pattern",
	CmpNotCompiled:        "Rule set not compiled",

	AplInfo:                "Apply information",
	AplUnknownTranslator:   "Unknown translator",
	AplDuplicateTranslator: "Duplicate translator",
	AplScriptResultType:    "Script result is not text",
	AplScriptEvaluation:    "Script evaluation failed",
	AplRewriteLimit:        "Rewrite limit exceeded",
	AplTranslatorFailed:    "Translator failed",
	AplNoScriptEvaluator:   "No script evaluator",
}

// ID returns the stable identifier of the code, e.g. "SYN2001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("APL%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	if title, ok := codeTitles[c]; ok {
		return title
	}
	return codeTitles[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
