package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit и BuildDate опциональны
	_ = GitCommit
	_ = BuildDate
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origGitCommit, origBuildDate
	})

	// как при сборке с -ldflags
	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if got := Colored(false); got != "1.2.3" {
		t.Errorf("Colored(false) = %q, want %q", got, "1.2.3")
	}
}

func TestColored(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	tests := []struct {
		version   string
		plainTail string
		colored   bool
	}{
		{"0.1.0-dev", "-dev", true},
		{"1.2.3", "", true},
		{"1.2.3-rc.1+build.123", "-rc.1+build.123", true},
		{"dev", "", false},
		{"1.2", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			Version = tt.version
			got := Colored(true)
			hasEscapes := strings.Contains(got, "\x1b[")
			if hasEscapes != tt.colored {
				t.Fatalf("Colored(%q) = %q, escapes=%v want %v", tt.version, got, hasEscapes, tt.colored)
			}
			if !strings.HasSuffix(got, tt.plainTail) {
				t.Fatalf("Colored(%q) = %q, want plain suffix %q", tt.version, got, tt.plainTail)
			}
			if !tt.colored && got != tt.version {
				t.Fatalf("Colored(%q) = %q, want unchanged", tt.version, got)
			}
		})
	}
}

// BenchmarkColored benchmarks rendering the coloured version string
func BenchmarkColored(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Colored(true)
	}
}
