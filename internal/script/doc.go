// Package script evaluates the inline scripts of script rules with an
// embedded Python interpreter (gpython).
//
// A script sees these globals:
//
//	match   tuple of group texts, match[0] is the whole match, None for groups that did not take part
//	text    the whole match
//	groups  dict of named groups
//	rule    key of the rule
//	start   byte offset of the match
//	end     byte offset just past the match
//
// A script that parses as an expression is evaluated and its value is the
// result. Otherwise it is executed as statements and the global result is
// read back. The result must be a str.
package script
