package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/jarg/lang"
)

func encodeContext(t *testing.T, out *bytes.Buffer, in string) context.Context {
	t.Helper()

	return WithStdio(context.Background(), Stdio{
		In:  strings.NewReader(in),
		Out: out,
		Err: &bytes.Buffer{},
	})
}

func TestEncode_Run(t *testing.T) {
	tests := []struct {
		name string
		cmd  Encode
		env  map[string]string
		want string
	}{
		{
			name: "object from literal tokens",
			cmd:  Encode{Type: "string", Tokens: []string{"msg=hi", "n:number=1"}},
			want: `{"msg":"hi","n":1}` + "\n",
		},
		{
			name: "array shape",
			cmd:  Encode{Type: "string", Array: true, Tokens: []string{"a", "b"}},
			want: `["a","b"]` + "\n",
		},
		{
			name: "ambient type flag",
			cmd:  Encode{Type: "number", Tokens: []string{"n=42"}},
			want: `{"n":42}` + "\n",
		},
		{
			name: "environment reference",
			cmd:  Encode{Type: "string", Tokens: []string{"@JARG_ENC_USER"}},
			env:  map[string]string{"JARG_ENC_USER": "alice"},
			want: `{"JARG_ENC_USER":"alice"}` + "\n",
		},
		{
			name: "join flag",
			cmd:  Encode{Type: "string", Join: ",", Tokens: []string{"csv=a"}},
			want: `{"csv":"a"}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for name, value := range tt.env {
				t.Setenv(name, value)
			}

			var out bytes.Buffer

			if err := tt.cmd.Run(encodeContext(t, &out, "")); err != nil {
				t.Fatalf("run error: %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("got %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestEncode_Run_Stdin(t *testing.T) {
	cmd := Encode{Type: "string", Tokens: []string{"body@-"}}

	var out bytes.Buffer

	if err := cmd.Run(encodeContext(t, &out, "piped content")); err != nil {
		t.Fatalf("run error: %v", err)
	}

	if out.String() != `{"body":"piped content"}`+"\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestEncode_Run_Stream(t *testing.T) {
	cmd := Encode{
		Type:       "string",
		Stream:     true,
		ChunkCount: 1,
		Tokens:     []string{"a=1", "b=2"},
	}

	var out bytes.Buffer

	if err := cmd.Run(encodeContext(t, &out, "")); err != nil {
		t.Fatalf("run error: %v", err)
	}

	if out.String() != `{"a":"1","b":"2"}`+"\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestEncode_Run_OutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	cmd := Encode{Type: "string", Out: path, Tokens: []string{"a=1"}}

	var out bytes.Buffer

	if err := cmd.Run(encodeContext(t, &out, "")); err != nil {
		t.Fatalf("run error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	if string(data) != `{"a":"1"}`+"\n" {
		t.Errorf("got %q", data)
	}

	if out.Len() != 0 {
		t.Errorf("output also reached stdout: %q", out.String())
	}
}

func TestEncode_Run_OutFileUnwritable(t *testing.T) {
	cmd := Encode{
		Type:   "string",
		Out:    filepath.Join(t.TempDir(), "missing", "out.json"),
		Tokens: []string{"a=1"},
	}

	var out bytes.Buffer

	err := cmd.Run(encodeContext(t, &out, ""))
	if !errors.Is(err, ErrOpenOutput) {
		t.Errorf("got %v, want %v", err, ErrOpenOutput)
	}
}

func TestEncode_Run_ErrorEmitsNothing(t *testing.T) {
	cmd := Encode{Type: "string", Tokens: []string{"ok=1", "bad:number=x"}}

	var out bytes.Buffer

	err := cmd.Run(encodeContext(t, &out, ""))
	if !errors.Is(err, lang.ErrInvalidNumber) {
		t.Fatalf("got %v, want %v", err, lang.ErrInvalidNumber)
	}

	if out.Len() != 0 {
		t.Errorf("partial output emitted: %q", out.String())
	}
}

func TestEncode_Run_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		cmd  Encode
		want int
	}{
		{
			name: "bad value",
			cmd:  Encode{Type: "string", Tokens: []string{"n:number=x"}},
			want: ExitEncoding,
		},
		{
			name: "unknown preset",
			cmd:  Encode{Type: "string", Preset: "nonesuch", Tokens: []string{"a=1"}},
			want: ExitConfig,
		},
		{
			name: "strict unset reference",
			cmd:  Encode{Type: "string", Strict: true, Tokens: []string{"@JARG_ENC_UNSET"}},
			want: ExitUnbound,
		},
		{
			name: "missing file reference",
			cmd:  Encode{Type: "string", Tokens: []string{"a@/nonesuch/jarg"}},
			want: ExitResource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			err := tt.cmd.Run(encodeContext(t, &out, ""))
			if err == nil {
				t.Fatal("expected error")
			}

			if got := ExitCode(err); got != tt.want {
				t.Errorf("exit code: got %d, want %d", got, tt.want)
			}
		})
	}
}
