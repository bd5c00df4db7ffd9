package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/jarg/lang"
	"github.com/ardnew/jarg/log"
	"github.com/ardnew/jarg/pkg"
)

// Validate checks that each input document is syntactically valid JSON,
// optionally constrained to a given type or collection kind.
type Validate struct {
	Type       string `help:"Require each document to be a value of this type"  short:"t" enum:",${typeEnum}"    default:""`
	Collection string `help:"Require each document to be this collection kind"  short:"c" enum:",array,object"   default:""`

	Files []string `arg:"" help:"JSON file(s) or '-' for stdin" name:"file" optional:""`
}

// Run executes the validate command. Every input is checked even after a
// failure; the first error is returned so the exit code reflects it.
func (v *Validate) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	files := v.Files
	if len(files) == 0 {
		files = []string{"-"}
	}

	var firstErr error

	for _, file := range files {
		data, err := v.read(ctx, file)
		if err == nil {
			err = v.check(data)
		}

		if err != nil {
			log.ErrorContext(ctx, "invalid document",
				slog.String("file", file),
				slog.Any("reason", err),
			)

			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		log.DebugContext(ctx, "valid document", slog.String("file", file))
	}

	return firstErr
}

func (v *Validate) read(ctx context.Context, file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(stdioFrom(ctx).In)
		if err != nil {
			return nil, pkg.ErrReadInput.Wrap(err)
		}

		return data, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, lang.ErrMissingFile.Wrap(err)
	}

	return data, nil
}

func (v *Validate) check(data []byte) error {
	if v.Collection != "" {
		kind, err := lang.ParseCollectionKind(v.Collection)
		if err != nil {
			return err
		}

		typ := lang.TypeJSON

		if v.Type != "" {
			typ, err = lang.ParseType(v.Type)
			if err != nil {
				return err
			}
		}

		return lang.CheckCollection(data, kind, typ)
	}

	if v.Type != "" {
		typ, err := lang.ParseType(v.Type)
		if err != nil {
			return err
		}

		return lang.CheckType(data, typ)
	}

	return lang.Check(data)
}
