package lang

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"
)

// Preset is a named bundle of default settings applied to an encode call.
// Presets are registered before any encode call references them and are
// never mutated during an in-flight call.
type Preset struct {
	Type       Type
	HasType    bool
	Collection Collection
	HasKind    bool
	Attrs      map[string]string
}

// registry is the process-wide defaults registry. Reads dominate; writes
// happen only during explicit definition calls, so a simple RWMutex
// suffices.
//
//nolint:gochecknoglobals
var registry = struct {
	sync.RWMutex
	presets map[string]Preset
}{
	presets: map[string]Preset{},
}

// Define registers or replaces the named preset. The preset's settings were
// validated when constructed, so definition never fails for a well-formed
// Preset; use DefineSpec for untrusted settings.
func Define(name string, preset Preset) {
	registry.Lock()
	defer registry.Unlock()

	registry.presets[name] = preset
}

// PresetSpec is the untyped form of a preset as written in configuration.
// Unrecognized type or collection names are rejected at definition time,
// not at use time.
type PresetSpec struct {
	Type       string            `yaml:"type"`
	Collection string            `yaml:"collection"`
	Split      string            `yaml:"split"`
	Format     string            `yaml:"format"`
	Attrs      map[string]string `yaml:"attrs"`
}

// DefineSpec validates raw preset settings and registers the result.
func DefineSpec(name string, spec PresetSpec) error {
	var preset Preset

	if spec.Type != "" {
		typ, err := ParseType(spec.Type)
		if err != nil {
			return ErrBadPreset.Wrap(err).With(slog.String("preset", name))
		}

		preset.Type = typ
		preset.HasType = true
	}

	if spec.Collection != "" {
		kind, err := ParseCollectionKind(spec.Collection)
		if err != nil {
			return ErrBadPreset.Wrap(err).With(slog.String("preset", name))
		}

		preset.Collection.Kind = kind
		preset.HasKind = true
	}

	if spec.Split != "" {
		if len(spec.Split) != 1 {
			return ErrBadPreset.With(
				slog.String("preset", name),
				slog.String("split", spec.Split),
			)
		}

		preset.Collection.Split = spec.Split[0]
		preset.Collection.HasSplit = true
	}

	if spec.Format != "" {
		format, err := ParseFormat(spec.Format)
		if err != nil {
			return ErrBadPreset.Wrap(err).With(slog.String("preset", name))
		}

		preset.Collection.Format = format
	}

	preset.Attrs = spec.Attrs

	Define(name, preset)

	return nil
}

// ResolvePreset returns the named preset. Referencing an unregistered name
// is a configuration error, reported with the closest registered name when
// one resembles it.
func ResolvePreset(name string) (Preset, error) {
	registry.RLock()
	defer registry.RUnlock()

	if preset, ok := registry.presets[name]; ok {
		return preset, nil
	}

	err := ErrUnknownPreset.With(slog.String("preset", name))

	if match := fuzzy.Find(name, presetNames()); len(match) > 0 {
		err = err.With(slog.String("suggest", match[0].Str))
	}

	return Preset{}, err
}

// PresetNames returns the sorted names of all registered presets.
func PresetNames() []string {
	registry.RLock()
	defer registry.RUnlock()

	return presetNames()
}

// presetNames reads the registry without locking; callers hold at least the
// read lock.
func presetNames() []string {
	names := make([]string, 0, len(registry.presets))
	for name := range registry.presets {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// LoadPresets reads a YAML mapping of preset names to settings and
// registers each one. Any invalid definition rejects the whole document.
func LoadPresets(r io.Reader) error {
	var specs map[string]PresetSpec

	err := yaml.NewDecoder(r).Decode(&specs)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return ErrBadPreset.Wrap(err)
	}

	for _, name := range slices.Sorted(maps.Keys(specs)) {
		err := DefineSpec(name, specs[name])
		if err != nil {
			return err
		}
	}

	return nil
}
