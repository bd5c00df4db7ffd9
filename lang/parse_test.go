package lang

import (
	"errors"
	"testing"
)

func TestParseToken_Segments(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		ambient Type
		want    Descriptor
	}{
		{
			name:    "key and literal value",
			token:   "msg=hi",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "msg"},
				Type:  TypeString,
				Value: Ref{Kind: Literal, Text: "hi"},
			},
		},
		{
			name:    "typed number value",
			token:   "data:number=42",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "data"},
				Type:  TypeNumber,
				Value: Ref{Kind: Literal, Text: "42"},
			},
		},
		{
			name:    "ambient type applies without a type segment",
			token:   "n=1",
			ambient: TypeNumber,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "n"},
				Type:  TypeNumber,
				Value: Ref{Kind: Literal, Text: "1"},
			},
		},
		{
			name:    "absent value adopts the key",
			token:   "msg",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "msg"},
				Type:  TypeString,
				Value: Ref{Kind: Literal, Text: "msg"},
			},
		},
		{
			name:    "absent value adopts key despite type segment",
			token:   "sizes:number",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "sizes"},
				Type:  TypeNumber,
				Value: Ref{Kind: Literal, Text: "sizes"},
			},
		},
		{
			name:    "true type supplies its own value",
			token:   "active:true",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "active"},
				Type:  TypeTrue,
				Value: Ref{Kind: Literal, Text: "true"},
			},
		},
		{
			name:    "false type supplies its own value",
			token:   "enabled:false",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "enabled"},
				Type:  TypeFalse,
				Value: Ref{Kind: Literal, Text: "false"},
			},
		},
		{
			name:    "null type supplies its own value",
			token:   "data:null",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "data"},
				Type:  TypeNull,
				Value: Ref{Kind: Literal, Text: "null"},
			},
		},
		{
			name:    "variable reference value",
			token:   "home@HOME",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "home"},
				Type:  TypeString,
				Value: Ref{Kind: VariableRef, Text: "HOME"},
			},
		},
		{
			name:    "absolute path value reference",
			token:   "hosts@/etc/hosts",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "hosts"},
				Type:  TypeString,
				Value: Ref{Kind: FileRef, Text: "/etc/hosts"},
			},
		},
		{
			name:    "stdin value reference",
			token:   "body@-",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "body"},
				Type:  TypeString,
				Value: Ref{Kind: FileRef, Text: "-"},
			},
		},
		{
			name:    "variable key moves to value position",
			token:   "@USER",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "USER"},
				Type:  TypeString,
				Value: Ref{Kind: VariableRef, Text: "USER"},
			},
		},
		{
			name:    "file key moves to value position",
			token:   "./notes.txt",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: Literal, Text: "./notes.txt"},
				Type:  TypeString,
				Value: Ref{Kind: FileRef, Text: "./notes.txt"},
			},
		},
		{
			name:    "variable key with explicit value stays a key",
			token:   "@NAME=fallback",
			ambient: TypeString,
			want: Descriptor{
				Key:   Ref{Kind: VariableRef, Text: "NAME"},
				Type:  TypeString,
				Value: Ref{Kind: Literal, Text: "fallback"},
			},
		},
		{
			name:    "splat over a variable reference",
			token:   "...@parts",
			ambient: TypeString,
			want: Descriptor{
				Splat: true,
				Key:   Ref{Kind: Literal, Text: "parts"},
				Type:  TypeString,
				Value: Ref{Kind: VariableRef, Text: "parts"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseToken(tt.token, tt.ambient)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if d.Splat != tt.want.Splat {
				t.Errorf("splat: got %v, want %v", d.Splat, tt.want.Splat)
			}

			if d.Key != tt.want.Key {
				t.Errorf("key: got %+v, want %+v", d.Key, tt.want.Key)
			}

			if d.Type != tt.want.Type {
				t.Errorf("type: got %v, want %v", d.Type, tt.want.Type)
			}

			if d.Value != tt.want.Value {
				t.Errorf("value: got %+v, want %+v", d.Value, tt.want.Value)
			}
		})
	}
}

func TestParseToken_Escapes(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantKey   string
		wantValue Ref
	}{
		{
			name:      "doubled equals in key",
			token:     "a==b=c",
			wantKey:   "a=b",
			wantValue: Ref{Kind: Literal, Text: "c"},
		},
		{
			name:      "doubled colon in key",
			token:     "a::b=c",
			wantKey:   "a:b",
			wantValue: Ref{Kind: Literal, Text: "c"},
		},
		{
			name:      "doubled at in key",
			token:     "a@@b=c",
			wantKey:   "a@b",
			wantValue: Ref{Kind: Literal, Text: "c"},
		},
		{
			name:      "leading equals escapes the next byte",
			token:     "=@name=v",
			wantKey:   "@name",
			wantValue: Ref{Kind: Literal, Text: "v"},
		},
		{
			name:      "leading doubled equals yields a literal equals key",
			token:     "==x=v",
			wantKey:   "=x",
			wantValue: Ref{Kind: Literal, Text: "v"},
		},
		{
			name:      "value text is never escaped",
			token:     "k=a==b",
			wantKey:   "k",
			wantValue: Ref{Kind: Literal, Text: "a==b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseToken(tt.token, TypeString)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if d.Key.Kind != Literal || d.Key.Text != tt.wantKey {
				t.Errorf("key: got %+v, want literal %q", d.Key, tt.wantKey)
			}

			if d.Value != tt.wantValue {
				t.Errorf("value: got %+v, want %+v", d.Value, tt.wantValue)
			}
		})
	}
}

func TestParseToken_Flags(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantKey   Flags
		wantValue Flags
	}{
		{
			name:      "omit flag on key",
			token:     "~k=v",
			wantKey:   Flags{Omit: 1},
			wantValue: Flags{},
		},
		{
			name:      "value flag before the value terminator",
			token:     "k?=v",
			wantKey:   Flags{},
			wantValue: Flags{Empty: 1},
		},
		{
			name:      "doubled empty flag",
			token:     "k??@VAR",
			wantKey:   Flags{},
			wantValue: Flags{Empty: 2},
		},
		{
			name:      "empty flag saturates at two",
			token:     "k????=v",
			wantKey:   Flags{},
			wantValue: Flags{Empty: 2},
		},
		{
			name:      "strict flag after type segment",
			token:     "k:number+=5",
			wantKey:   Flags{},
			wantValue: Flags{Strict: 1},
		},
		{
			name:      "key flags carry to an adopted value",
			token:     "~@MAYBE",
			wantKey:   Flags{Omit: 1},
			wantValue: Flags{Omit: 1},
		},
		{
			name:      "mixed flag run",
			token:     "+~k=v",
			wantKey:   Flags{Strict: 1, Omit: 1},
			wantValue: Flags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseToken(tt.token, TypeString)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if d.KeyFlags != tt.wantKey {
				t.Errorf("key flags: got %+v, want %+v", d.KeyFlags, tt.wantKey)
			}

			if d.ValueFlags != tt.wantValue {
				t.Errorf("value flags: got %+v, want %+v", d.ValueFlags, tt.wantValue)
			}
		})
	}
}

func TestParseToken_Collections(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  Collection
	}{
		{
			name:  "array marker",
			token: "k:string[]=v",
			want:  Collection{Kind: Array},
		},
		{
			name:  "array marker with split byte",
			token: "k:string[;]=v",
			want:  Collection{Kind: Array, Split: ';', HasSplit: true},
		},
		{
			name:  "object marker",
			token: "k:json{}=v",
			want:  Collection{Kind: Object},
		},
		{
			name:  "object marker with format",
			token: "k:json{:attrs}=v",
			want:  Collection{Kind: Object, Format: FormatAttrs},
		},
		{
			name:  "object marker with split and format",
			token: "k:json{,:json}=v",
			want:  Collection{Kind: Object, Split: ',', HasSplit: true, Format: FormatJSON},
		},
		{
			name:  "marker without a type name keeps the ambient type",
			token: "k:[]=v",
			want:  Collection{Kind: Array},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseToken(tt.token, TypeString)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if d.Collection != tt.want {
				t.Errorf("collection: got %+v, want %+v", d.Collection, tt.want)
			}
		})
	}
}

func TestParseToken_Attrs(t *testing.T) {
	d, err := ParseToken("k:string/split=;,collection=array,x==y=a,,b/=v", TypeString)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	want := []Attr{
		{Key: "split", Value: ";"},
		{Key: "collection", Value: "array"},
		{Key: "x=y", Value: "a,b"},
	}

	if len(d.Attrs) != len(want) {
		t.Fatalf("attrs: got %d pairs, want %d", len(d.Attrs), len(want))
	}

	for i, attr := range want {
		if d.Attrs[i] != attr {
			t.Errorf("attr %d: got %+v, want %+v", i, d.Attrs[i], attr)
		}
	}

	if d.Collection.Kind != Array {
		t.Errorf("collection attr not applied: got %v", d.Collection.Kind)
	}

	if !d.Collection.HasSplit || d.Collection.Split != ';' {
		t.Errorf("split attr not applied: got %+v", d.Collection)
	}
}

func TestParseToken_AttrOverrides(t *testing.T) {
	d, err := ParseToken("k:string[;]/split=|,type=number,format=json/=v", TypeString)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if d.Collection.Split != '|' {
		t.Errorf("split override: got %q", d.Collection.Split)
	}

	if d.Type != TypeNumber {
		t.Errorf("type override: got %v", d.Type)
	}

	if d.Collection.Format != FormatJSON {
		t.Errorf("format override: got %v", d.Collection.Format)
	}
}

func TestParseToken_Errors(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty token", token: "", want: ErrEmptyToken},
		{name: "two leading dots", token: "..k=v", want: ErrBadSplat},
		{name: "four leading dots", token: "....k=v", want: ErrBadSplat},
		{name: "dots alone", token: "....", want: ErrBadSplat},
		{name: "unknown type name", token: "k:bogus=v", want: ErrUnknownType},
		{name: "unterminated collection", token: "k:number[=v", want: ErrBadCollection},
		{name: "multi-byte split", token: "k:string[ab]=v", want: ErrBadCollection},
		{name: "unknown object format", token: "k:json{:xml}=v", want: ErrBadCollection},
		{name: "unterminated attrs", token: "k:string/split=;=v", want: ErrBadAttribute},
		{name: "multi-byte split attr", token: "k:string/split=ab/=v", want: ErrBadAttribute},
		{name: "unknown collection attr", token: "k:string/collection=tree/=v", want: ErrBadAttribute},
		{name: "bare at value marker", token: "k@", want: ErrSyntax},
		{name: "trailing garbage after collection", token: "k:string[]x", want: ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, TypeString)
			if err == nil {
				t.Fatalf("expected error for %q", tt.token)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseCached_SharedStructure(t *testing.T) {
	first, err := parseCached("k:number[;]=1", TypeString)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	// Callers may adjust collection settings on their copy without the
	// cached descriptor observing the change.
	first.Collection.Split = '|'
	first.Type = TypeRaw

	second, err := parseCached("k:number[;]=1", TypeString)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if second.Collection.Split != ';' || second.Type != TypeNumber {
		t.Errorf("cached descriptor mutated: %+v", second)
	}
}

func TestParseCached_AmbientTypeKeyed(t *testing.T) {
	asString, err := parseCached("k=v", TypeString)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	asNumber, err := parseCached("k=v", TypeNumber)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if asString.Type != TypeString || asNumber.Type != TypeNumber {
		t.Errorf("ambient types conflated: %v, %v", asString.Type, asNumber.Type)
	}
}
