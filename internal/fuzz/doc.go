// Package fuzztests houses Go fuzz harnesses for the grammar front end
// (source -> lexer -> parser -> compile). They guard against panics, hangs
// and runaway token streams on arbitrary grammar text.
//
// Назначение: загружать байты в FileSet и прогонять их через лексер, парсер
// и компиляцию набора правил.
//
// Не делает: генерацию корпусов, запись файлов, применение правил к исходникам.
//
// Зависимости: internal/source, internal/lexer, internal/parser, internal/diag,
// internal/token.

package fuzztests
