package project

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrNoGrammar indicates that [grammar].paths is missing or empty.
	ErrNoGrammar = errors.New("missing [grammar].paths")
	// ErrInvalidValue indicates a value outside its allowed range.
	ErrInvalidValue = errors.New("invalid value")
	// ErrUnknownKey indicates a key gtrans does not understand.
	ErrUnknownKey = errors.New("unknown key")
)

// Config mirrors gtrans.toml.
type Config struct {
	Grammar     GrammarConfig               `toml:"grammar"`
	Source      SourceConfig                `toml:"source"`
	Output      OutputConfig                `toml:"output"`
	Run         RunConfig                   `toml:"run"`
	Translators map[string]TranslatorConfig `toml:"translators"`
}

type GrammarConfig struct {
	Paths []string `toml:"paths"`
}

type SourceConfig struct {
	Path string `toml:"path"`
	// Extensions filters files of a source tree; empty keeps every file.
	Extensions []string `toml:"extensions"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type RunConfig struct {
	Jobs        int    `toml:"jobs"`
	Normalize   string `toml:"normalize"`
	SpanOnly    bool   `toml:"span_only"`
	Cache       bool   `toml:"cache"`
	MaxRewrites int    `toml:"max_rewrites"`
}

// TranslatorConfig is one [translators.<Name>] table. Exactly one key is set.
type TranslatorConfig struct {
	Builtin  string  `toml:"builtin"`
	Template string  `toml:"template"`
	Literal  *string `toml:"literal"`
}

// Manifest is a loaded gtrans.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	meta   toml.MetaData
}

// LoadManifest finds gtrans.toml from startDir upward and loads it.
// ok is false when there is no manifest.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := validate(&cfg, meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manifest{Path: abs, Root: filepath.Dir(abs), Config: cfg, meta: meta}, nil
}

func validate(cfg *Config, meta toml.MetaData) error {
	if !meta.IsDefined("grammar", "paths") || len(cfg.Grammar.Paths) == 0 {
		return ErrNoGrammar
	}
	if slices.ContainsFunc(cfg.Grammar.Paths, func(p string) bool { return strings.TrimSpace(p) == "" }) {
		return fmt.Errorf("%w: empty entry in [grammar].paths", ErrInvalidValue)
	}
	switch strings.ToLower(cfg.Run.Normalize) {
	case "", "nfc":
	default:
		return fmt.Errorf("%w: [run].normalize = %q (expected \"\" or \"nfc\")", ErrInvalidValue, cfg.Run.Normalize)
	}
	if cfg.Run.Jobs < 0 {
		return fmt.Errorf("%w: [run].jobs must not be negative", ErrInvalidValue)
	}
	if cfg.Run.MaxRewrites < 0 {
		return fmt.Errorf("%w: [run].max_rewrites must not be negative", ErrInvalidValue)
	}
	for i, ext := range cfg.Source.Extensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			cfg.Source.Extensions[i] = "." + ext
		}
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.Translators)) {
		tc := cfg.Translators[name]
		n := 0
		if tc.Builtin != "" {
			n++
		}
		if tc.Template != "" {
			n++
		}
		if tc.Literal != nil {
			n++
		}
		if n != 1 {
			return fmt.Errorf("%w: [translators.%s] needs exactly one of builtin, template, literal", ErrInvalidValue, name)
		}
	}
	return nil
}

// Defined reports whether key was set in the file, e.g. Defined("run", "jobs").
func (m *Manifest) Defined(key ...string) bool {
	if m == nil {
		return false
	}
	return m.meta.IsDefined(key...)
}

// GrammarPaths returns [grammar].paths resolved against the manifest directory.
func (m *Manifest) GrammarPaths() []string {
	out := make([]string, len(m.Config.Grammar.Paths))
	for i, p := range m.Config.Grammar.Paths {
		out[i] = m.resolve(p)
	}
	return out
}

// SourcePath returns [source].path resolved, or "" when unset.
func (m *Manifest) SourcePath() string {
	return m.resolve(m.Config.Source.Path)
}

// OutputDir returns [output].dir resolved, or "" when unset.
func (m *Manifest) OutputDir() string {
	return m.resolve(m.Config.Output.Dir)
}

func (m *Manifest) resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}
