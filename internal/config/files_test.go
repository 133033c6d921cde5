package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// writeTree creates empty files under root and returns their absolute paths
// keyed by the relative name.
func writeTree(t *testing.T, root string, names ...string) map[string]string {
	t.Helper()
	paths := make(map[string]string, len(names))
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("-- "+name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths[name] = path
	}
	return paths
}

func TestResolveLibraries(t *testing.T) {
	root := t.TempDir()
	p := writeTree(t, root,
		"rtl/b_core.vhd",
		"rtl/a_alu.vhdl",
		"rtl/old/legacy.vhd",
		"rtl/deep/x/fifo.vhd",
		"rtl/notes.txt",
		"sim/tb_core.vhd",
		"sim/tb_top.vhd",
		"sim/skip.sv",
		"ip/vendor.vhd",
	)

	tests := []struct {
		name string
		cfg  Config
		want []ResolvedLibrary
	}{
		{
			name: "globs with exclude, sorted files",
			cfg: Config{Libraries: map[string]LibraryConfig{
				"work": {Files: []string{"rtl/*.vhd", "rtl/*.vhdl", "rtl/*.txt"}, Exclude: []string{"rtl/b_*.vhd"}},
			}},
			want: []ResolvedLibrary{
				{Name: "work", Files: []string{p["rtl/a_alu.vhdl"]}},
			},
		},
		{
			name: "double star walks subdirectories",
			cfg: Config{Libraries: map[string]LibraryConfig{
				"work": {Files: []string{"rtl/**/*.vhd"}, Exclude: []string{"rtl/old/*.vhd"}},
			}},
			want: []ResolvedLibrary{
				{Name: "work", Files: []string{p["rtl/b_core.vhd"], p["rtl/deep/x/fifo.vhd"]}},
			},
		},
		{
			name: "explicit entries default to work and filter by language",
			cfg: Config{
				Libraries: map[string]LibraryConfig{
					"vendor": {Files: []string{"ip/*.vhd"}, IsThirdParty: true},
				},
				Files: []FileEntry{
					{File: "sim/tb_top.vhd"},
					{File: "sim/tb_core.vhd", Library: "sim", Language: "VHDL"},
					{File: "sim/skip.sv", Library: "sim", Language: "verilog"},
					{File: ""},
				},
			},
			want: []ResolvedLibrary{
				{Name: "sim", Files: []string{p["sim/tb_core.vhd"]}},
				{Name: "vendor", Files: []string{p["ip/vendor.vhd"]}, IsThirdParty: true},
				{Name: "work", Files: []string{p["sim/tb_top.vhd"]}},
			},
		},
		{
			name: "explicit entry joins a configured library",
			cfg: Config{
				Libraries: map[string]LibraryConfig{
					"work": {Files: []string{"rtl/b_core.vhd"}},
				},
				Files: []FileEntry{{File: p["sim/tb_core.vhd"]}},
			},
			want: []ResolvedLibrary{
				{Name: "work", Files: []string{p["rtl/b_core.vhd"], p["sim/tb_core.vhd"]}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ResolveLibraries(root)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("libraries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetAllFilesDeduplicates(t *testing.T) {
	root := t.TempDir()
	p := writeTree(t, root, "rtl/b.vhd", "rtl/a.vhd")

	cfg := Config{
		Libraries: map[string]LibraryConfig{
			"work":  {Files: []string{"rtl/*.vhd"}},
			"other": {Files: []string{"rtl/a.vhd"}},
		},
	}
	got, err := cfg.GetAllFiles(root)
	require.NoError(t, err)
	require.Equal(t, []string{p["rtl/a.vhd"], p["rtl/b.vhd"]}, got)
}

func TestGetFileLibrary(t *testing.T) {
	root := t.TempDir()
	p := writeTree(t, root, "rtl/core.vhd", "sim/tb_core.vhd", "ip/vendor.vhd", "loose.vhd")

	cfg := Config{
		Libraries: map[string]LibraryConfig{
			"work":   {Files: []string{"rtl/*.vhd", "sim/*.vhd"}},
			"vendor": {Files: []string{"ip/*.vhd"}, IsThirdParty: true},
		},
		Files: []FileEntry{
			{File: "sim/tb_core.vhd", Library: "sim", Language: "vhdl"},
			{File: "ip/vendor.vhd", Library: "vendor"},
		},
	}

	tests := []struct {
		file string
		want FileLibraryInfo
	}{
		// The explicit entry wins over the work glob that also matches.
		{p["sim/tb_core.vhd"], FileLibraryInfo{LibraryName: "sim"}},
		// An explicit entry inherits third-party status from its library.
		{p["ip/vendor.vhd"], FileLibraryInfo{LibraryName: "vendor", IsThirdParty: true}},
		{p["rtl/core.vhd"], FileLibraryInfo{LibraryName: "work"}},
		{p["loose.vhd"], FileLibraryInfo{LibraryName: "work"}},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.file), func(t *testing.T) {
			require.Equal(t, tt.want, cfg.GetFileLibrary(tt.file, root))
		})
	}
}

func TestThirdPartyAndIgnoreMatching(t *testing.T) {
	cfg := Config{
		Libraries: map[string]LibraryConfig{
			"vendor": {Files: []string{"*_ip.vhd"}, IsThirdParty: true},
			"work":   {Files: []string{"*.vhd"}},
		},
		Files: []FileEntry{
			{File: "/abs/override_ip.vhd", IsThirdParty: false},
		},
		Lint: LintConfig{IgnorePatterns: []string{"*_tb.vhd"}},
	}

	require.True(t, cfg.IsThirdPartyFile("/src/uart_ip.vhd"))
	require.False(t, cfg.IsThirdPartyFile("/src/uart.vhd"))
	require.False(t, cfg.IsThirdPartyFile("/abs/override_ip.vhd"), "explicit entry decides")

	require.True(t, cfg.ShouldIgnoreFile("/src/uart_tb.vhd"))
	require.False(t, cfg.ShouldIgnoreFile("/src/uart.vhd"))
}
