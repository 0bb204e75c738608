package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB на один seed
	maxFuzzInput = 1 << 16 // 64 KiB
)

// inlineSeeds cover every construct of the grammar language at least once.
var inlineSeeds = []string{
	"",
	"@rewrite { \"foo\" -> \"bar\" ; }",
	"@rewrite { \"a\\\"b\" -> \"c\" ; \"x\" -> \"\" ; }",
	"ident { [a-z]+ }\ngreet -> Hi { hello (<ident>) }",
	"shout { (\\w+)! } -> { match[1].upper() }",
	"swap { (\\w+),(\\w+) } -> {\n    a = match[1]\n    result = match[2] + a\n}",
	"brace { \\{ \\} }",
	"// comment\n/* block */ r { x }",
	"a { <b> }\nb { <a> }",
	"a -> T { x } -> { y }",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.gtg файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".gtg" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
