package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/jarg/lang"
	"github.com/ardnew/jarg/log"
	"github.com/ardnew/jarg/pkg"
)

// Init generates a starter configuration file with default flag values and
// an example preset.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// starterConfig is the document written by init: commonly tuned flags with
// their default values, plus one example preset showing the schema.
type starterConfig struct {
	LogLevel  string `yaml:"log-level"`
	LogFormat string `yaml:"log-format"`
	Type      string `yaml:"type"`
	Strict    bool   `yaml:"strict"`

	Presets map[string]lang.PresetSpec `yaml:"presets"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(pkg.ErrFileExists.Wrapf("use --force to overwrite"))
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	starter := starterConfig{
		LogLevel:  "warn",
		LogFormat: "text",
		Type:      "string",
		Strict:    false,
		Presets: map[string]lang.PresetSpec{
			"lines": {
				Type:       "string",
				Collection: "array",
				Split:      "\n",
			},
		},
	}

	err = yaml.NewEncoder(file, yaml.Indent(2)).Encode(starter)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}
