package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given
// kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdioKey is used to store a [Stdio] value in [context.Context].
type stdioKey struct{}

// Stdio bundles the standard streams used by commands. Tests substitute
// buffers; production code uses the process streams.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// WithStdio returns a new context.Context containing the given streams.
func WithStdio(ctx context.Context, stdio Stdio) context.Context {
	return context.WithValue(ctx, stdioKey{}, stdio)
}

func stdioFrom(ctx context.Context) Stdio {
	stdio, ok := ctx.Value(stdioKey{}).(Stdio)
	if !ok {
		return Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	}

	if stdio.In == nil {
		stdio.In = os.Stdin
	}

	if stdio.Out == nil {
		stdio.Out = os.Stdout
	}

	if stdio.Err == nil {
		stdio.Err = os.Stderr
	}

	return stdio
}
