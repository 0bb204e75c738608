package diagfmt

import (
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"

	"gtrans/internal/source"
)

const tabWidth = 4

// excerptLine is one source line shown under a diagnostic.
type excerptLine struct {
	num  uint32
	text string
	// колонки подчёркивания в экранных ячейках; under == 0 - без подчёркивания
	pad   int
	under int
}

// buildExcerpt collects the lines of span plus ctx lines around it.
func buildExcerpt(f *source.File, span source.Span, ctx int) []excerptLine {
	if f == nil {
		return nil
	}
	total := lineCount(f)
	start, end := f.Position(span.Start), f.Position(span.End)
	if int(start.Line) > total {
		// конец файла после завершающего '\n'
		last := uint32(total) // #nosec G115 -- bounded by LineIdx length
		start = source.LineCol{Line: last, Col: uint32(len(f.GetLine(last))) + 1} // #nosec G115
	}
	if end.Line < start.Line || int(end.Line) > total {
		end = start
	}
	// пустой спан в конце строки указывает на следующую
	if span.End > span.Start && end.Col == 1 && end.Line > start.Line {
		end.Line--
		end.Col = uint32(len(f.GetLine(end.Line))) + 1 // #nosec G115
	}

	ctx = max(ctx, 0)
	first := max(int(start.Line)-ctx, 1)
	last := min(int(end.Line)+ctx, total)

	out := make([]excerptLine, 0, last-first+1)
	for n := first; n <= last; n++ {
		num, err := safecast.Conv[uint32](n)
		if err != nil {
			break
		}
		raw := f.GetLine(num)
		line := excerptLine{num: num, text: expandTabs(raw)}
		if num >= start.Line && num <= end.Line {
			from := 0
			if num == start.Line {
				from = int(start.Col) - 1
			}
			to := len(raw)
			if num == end.Line {
				to = min(int(end.Col)-1, len(raw))
			}
			from = min(max(from, 0), len(raw))
			to = max(to, from)
			line.pad = displayWidth(raw[:from])
			line.under = max(displayWidth(raw[:to])-line.pad, 1)
		}
		out = append(out, line)
	}
	return out
}

func lineCount(f *source.File) int {
	n := len(f.LineIdx) + 1
	// завершающий перевод строки не открывает новую строку
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] == '\n' {
		n--
	}
	return max(n, 1)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

// clip shortens s to width display cells, marking the cut with "...".
func clip(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
