package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jarg/lang"
	"github.com/ardnew/jarg/pkg"
)

func TestResolve_FlagLookup(t *testing.T) {
	doc := `
log-level: debug
log_format: json
strict: true
chunk-size: 4096
presets:
  lines:
    type: string
`

	resolver, err := resolve(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	lookup := func(name string) any {
		t.Helper()

		flag := &kong.Flag{Value: &kong.Value{Name: name}}

		value, err := resolver.Resolve(nil, nil, flag)
		if err != nil {
			t.Fatalf("lookup %q: %v", name, err)
		}

		return value
	}

	if got := lookup("log-level"); got != "debug" {
		t.Errorf("hyphenated key: got %v", got)
	}

	if got := lookup("log-format"); got != "json" {
		t.Errorf("underscored key: got %v", got)
	}

	if got := lookup("strict"); got != true {
		t.Errorf("boolean value: got %v", got)
	}

	if got := lookup("chunk-size"); got != "4096" {
		t.Errorf("numeric value not rendered as string: got %#v", got)
	}

	if got := lookup("absent"); got != nil {
		t.Errorf("absent key: got %v", got)
	}

	// Preset definitions resolve no flags.
	if got := lookup("presets"); got != nil {
		t.Errorf("presets key leaked into flag resolution: got %v", got)
	}
}

func TestResolve_EmptyFile(t *testing.T) {
	resolver, err := resolve(strings.NewReader(""))
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	flag := &kong.Flag{Value: &kong.Value{Name: "anything"}}

	value, err := resolver.Resolve(nil, nil, flag)
	if err != nil || value != nil {
		t.Errorf("got %v, %v", value, err)
	}
}

func TestResolve_MalformedFile(t *testing.T) {
	_, err := resolve(strings.NewReader("a: [unclosed"))
	if !errors.Is(err, pkg.ErrReadConfig) {
		t.Errorf("got %v, want %v", err, pkg.ErrReadConfig)
	}
}

func TestLoadConfigPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	doc := `
log-level: info
presets:
  cli-config-lines:
    type: string
    collection: array
    split: "\n"
`

	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := loadConfigPresets(path); err != nil {
		t.Fatalf("load error: %v", err)
	}

	preset, err := lang.ResolvePreset("cli-config-lines")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if preset.Collection.Kind != lang.Array || preset.Collection.Split != '\n' {
		t.Errorf("got %+v", preset)
	}
}

func TestLoadConfigPresets_MissingFileOK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonesuch.yaml")

	if err := loadConfigPresets(path); err != nil {
		t.Errorf("missing file rejected: %v", err)
	}
}

func TestLoadPresets_Files(t *testing.T) {
	dir := t.TempDir()

	explicit := filepath.Join(dir, "extra.yaml")

	doc := `
cli-explicit-nums:
  type: number
  collection: array
`

	if err := os.WriteFile(explicit, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	// The default file is absent; only the explicit file loads.
	missing := filepath.Join(dir, "presets.yaml")

	if err := loadPresets(missing, []string{explicit}); err != nil {
		t.Fatalf("load error: %v", err)
	}

	preset, err := lang.ResolvePreset("cli-explicit-nums")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if preset.Type != lang.TypeNumber || preset.Collection.Kind != lang.Array {
		t.Errorf("got %+v", preset)
	}
}

func TestLoadPresets_ExplicitFileMustExist(t *testing.T) {
	dir := t.TempDir()

	err := loadPresets(
		filepath.Join(dir, "default.yaml"),
		[]string{filepath.Join(dir, "explicit.yaml")},
	)
	if !errors.Is(err, lang.ErrMissingFile) {
		t.Errorf("got %v, want %v", err, lang.ErrMissingFile)
	}
}
