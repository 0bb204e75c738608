package translators

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gtrans/internal/rewrite"
)

// ImplicitType turns `var name = new Type(args);` captured as
// (name)(Type)(args) into `Type name = new Type(args);`.
func ImplicitType(m *rewrite.Match) (string, error) {
	g, err := groups(m, 3)
	if err != nil {
		return "", err
	}
	return g[2] + " " + g[1] + " = new " + g[2] + g[3] + ";", nil
}

// Lambda expands a filtering query into a loop. Groups: 1 collection type,
// 2 generic argument list with brackets, 3 new variable, 4 source,
// 6 iteration variable, 7 condition.
func Lambda(m *rewrite.Match) (string, error) {
	g, err := groups(m, 7)
	if err != nil {
		return "", err
	}
	generic := g[2]
	if len(generic) < 2 {
		return "", fmt.Errorf("%w: generic argument %q", ErrMissingGroup, generic)
	}
	typ := g[1] + generic
	name, src, it, cond := g[3], g[4], g[6], g[7]

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s = new %s();\n", typ, name, typ)
	fmt.Fprintf(&sb, "\t\tfor(%s %s : %s) {\n", generic[1:len(generic)-1], it, src)
	fmt.Fprintf(&sb, "\t\t\tif(%s)\n", cond)
	fmt.Fprintf(&sb, "\t\t\t\t%s.add(%s);\n\t\t}", name, it)
	return sb.String(), nil
}

var protoElement = regexp.MustCompile(`\[[^\[\]]+\]`)

// PrototypeString rewrites an interpolated string "$"a [x] b"" into
// ("a "+x+" b"). The first character of the match is the marker and is
// dropped.
func PrototypeString(m *rewrite.Match) (string, error) {
	_, size := utf8.DecodeRuneInString(m.Text)
	contents := m.Text[size:]
	for _, el := range protoElement.FindAllString(contents, -1) {
		contents = strings.ReplaceAll(contents, el, `"+`+el[1:len(el)-1]+`+"`)
	}
	return "(" + contents + ")", nil
}

// StringLiteral turns a verbatim string @"..." into a regular one: the
// marker is dropped, escapes \t \b \n \r \f \' \" are kept and every other
// backslash is doubled.
func StringLiteral(m *rewrite.Match) (string, error) {
	_, size := utf8.DecodeRuneInString(m.Text)
	in := m.Text[size:]

	var sb strings.Builder
	sb.Grow(len(in) + 8)
	for i := 0; i < len(in); i++ {
		if in[i] != '\\' {
			sb.WriteByte(in[i])
			continue
		}
		if i+1 < len(in) && strings.IndexByte(`tbnrf'"`, in[i+1]) >= 0 {
			sb.WriteByte('\\')
			sb.WriteByte(in[i+1])
			i++
			continue
		}
		sb.WriteString(`\\`)
	}
	return sb.String(), nil
}

// AutoProperty expands a C# auto-property into a backing field plus
// getter and setter. Groups: 1 modifiers, 2 type, 3 name, 4 "get;" or a
// getter block, 5 "set;" or a setter block.
func AutoProperty(m *rewrite.Match) (string, error) {
	g, err := groups(m, 5)
	if err != nil {
		return "", err
	}
	mods, typ := g[1], g[2]
	name := strings.TrimSpace(g[3])
	if name == "" {
		return "", fmt.Errorf("%w: empty property name", ErrMissingGroup)
	}
	field := "_" + lowerFirst(name)

	getBody := "return " + field + ";"
	if g[4] != "get;" {
		getBody = strings.ReplaceAll(strings.TrimSpace(blockBody(g[4])), name, field)
	}
	setBody := field + " = value;"
	if g[5] != "set;" {
		body := strings.NewReplacer("\r", "", "\n", "", "\t", "").Replace(strings.TrimSpace(blockBody(g[5])))
		setBody = strings.ReplaceAll(body, name, field)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "private %s %s;\n", typ, field)
	fmt.Fprintf(&sb, "\t\t%s %s %s() { %s }\n", mods, typ, name, getBody)
	fmt.Fprintf(&sb, "\t\t%s void %s(%s value) { %s }\n", mods, name, typ, setBody)
	return sb.String(), nil
}

// blockBody returns the text between the first '{' and the last '}'.
func blockBody(s string) string {
	open := strings.IndexByte(s, '{')
	closing := strings.LastIndexByte(s, '}')
	if open < 0 || closing <= open {
		return s
	}
	return s[open+1 : closing]
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
