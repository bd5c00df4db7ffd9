package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ardnew/jarg/lang"
	"github.com/ardnew/jarg/log"
	"github.com/ardnew/jarg/pkg"
)

// Encode composes a JSON document from argument tokens.
type Encode struct {
	Array      bool   `help:"Compose a top-level array instead of an object"  short:"a"`
	Type       string `help:"Type applied to untyped tokens"                  short:"t" default:"string" enum:"${typeEnum}" placeholder:"${enum}"`
	Preset     string `help:"Apply a registered preset"                       short:"p"`
	Strict     bool   `help:"Fail on references to unset variables"`
	Join       string `help:"Join multi-valued scalars with this separator"   short:"j"`
	Stream     bool   `help:"Emit entries incrementally"                      short:"s"`
	ChunkSize  int    `help:"Bytes per streamed read of large sources"                  default:"8192"`
	ChunkCount int    `help:"Entries per emitted batch"                                 default:"16"`
	Out        string `help:"Write output to file instead of stdout"          short:"o" type:"path"`

	Tokens []string `arg:"" help:"Argument tokens" name:"token" optional:""`
}

// Run executes the encode command.
func (e *Encode) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	typ, err := lang.ParseType(e.Type)
	if err != nil {
		return err
	}

	stdio := stdioFrom(ctx)

	out := stdio.Out

	if e.Out != "" {
		file, err := os.Create(e.Out)
		if err != nil {
			return ErrOpenOutput.
				Wrap(err).
				With(slog.String("file", e.Out))
		}
		defer file.Close()

		out = file
	}

	shape := lang.Object
	if e.Array {
		shape = lang.Array
	}

	cfg := lang.Config{
		Shape:      shape,
		Type:       typ,
		Preset:     e.Preset,
		Strict:     e.Strict,
		Join:       e.Join,
		ChunkSize:  e.ChunkSize,
		ChunkCount: e.ChunkCount,
		Marker:     isTerminal(out),
		Stdin:      stdio.In,
	}

	log.DebugContext(ctx, "encode",
		slog.String("shape", shape.String()),
		slog.String("type", e.Type),
		slog.Bool("stream", e.Stream),
		slog.Int("tokens", len(e.Tokens)),
	)

	if e.Stream {
		return lang.EncodeTo(ctx, cfg, lang.OSSource{}, out, nil, e.Tokens)
	}

	buf, err := lang.Encode(ctx, cfg, lang.OSSource{}, e.Tokens)
	if err != nil {
		return err
	}

	_, err = out.Write(buf)
	if err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && isatty.IsTerminal(file.Fd())
}
