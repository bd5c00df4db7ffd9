package cli

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/jarg/lang"
	"github.com/ardnew/jarg/pkg"
)

// presetsKey is the configuration key holding preset definitions. It is
// handled by [loadPresets] and excluded from flag resolution.
const presetsKey = "presets"

// resolve is a [kong.ConfigurationLoader] that reads flag defaults from a
// YAML configuration file.
//
// The file is a flat mapping of flag names to values. Hyphenated flag names
// (e.g., "log-level") may use underscores instead (e.g., "log_level").
// Command-line flags override configured values:
//
//	log-level: debug
//	log-format: json
//	strict: true
func resolve(r io.Reader) (kong.Resolver, error) {
	var root map[string]any

	err := yaml.NewDecoder(r).Decode(&root)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, pkg.ErrReadConfig.Wrap(err)
	}

	delete(root, presetsKey)

	return config(root), nil
}

// config implements [kong.Resolver] for YAML configuration files.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	underscored := strings.ReplaceAll(flag.Name, "-", "_")

	for _, key := range []string{flag.Name, underscored} {
		if value, ok := r[key]; ok {
			return flagValue(value), nil
		}
	}

	// Not found: let Kong use defaults.
	return nil, nil
}

// flagValue converts decoded YAML scalars to forms Kong can parse.
// Numbers in particular must be rendered as strings.
func flagValue(v any) any {
	switch v.(type) {
	case string, bool, nil, []any, map[string]any:
		return v

	default:
		return fmt.Sprint(v)
	}
}

// loadConfigPresets registers presets declared under the "presets" key of
// the main configuration file. A missing file is not an error.
func loadConfigPresets(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return lang.ErrMissingFile.Wrap(err)
	}

	var root struct {
		Presets map[string]lang.PresetSpec `yaml:"presets"`
	}

	err = yaml.Unmarshal(data, &root)
	if err != nil {
		return pkg.ErrReadConfig.Wrap(err)
	}

	for _, name := range slices.Sorted(maps.Keys(root.Presets)) {
		err := lang.DefineSpec(name, root.Presets[name])
		if err != nil {
			return err
		}
	}

	return nil
}

// loadPresets registers preset definitions from each named file.
// The default file may be absent; files named explicitly must exist.
func loadPresets(defaultPath string, explicit []string) error {
	paths := append([]string{defaultPath}, explicit...)

	for i, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			if i == 0 && os.IsNotExist(err) {
				continue
			}

			return lang.ErrMissingFile.Wrap(err)
		}

		err = lang.LoadPresets(file)
		file.Close()

		if err != nil {
			return err
		}
	}

	return nil
}
