package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteTemplates(t *testing.T) {
	program := []byte("#pragma version 10\npushint TMPL_count\nint TMPL_count\nbyte TMPL_label\npushbytes\tTMPL_label\nbyte TMPL_undeclared\n")
	declared := map[string]string{"count": "uint64", "label": "AVMBytes"}

	out, err := substituteTemplates(program, declared, map[string]any{"count": 42, "label": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "#pragma version 10\npushint 42\nint 42\nbyte 0x6869\npushbytes\t0x6869\nbyte TMPL_undeclared\n", string(out))
}

func TestSubstituteTemplates_Errors(t *testing.T) {
	tests := []struct {
		name     string
		program  string
		declared map[string]string
		values   map[string]any
		want     error
	}{
		{
			name:     "count mismatch",
			program:  "pushint TMPL_a",
			declared: map[string]string{"a": "uint64"},
			values:   map[string]any{},
			want:     ErrTemplateVariableCountMismatch,
		},
		{
			name:     "missing variable",
			program:  "pushint TMPL_a",
			declared: map[string]string{"a": "uint64"},
			values:   map[string]any{"b": 1},
			want:     ErrMissingTemplateVariable,
		},
		{
			name:     "bytes variable pushed as int",
			program:  "pushint TMPL_a",
			declared: map[string]string{"a": "bytes"},
			values:   map[string]any{"a": []byte{1}},
			want:     ErrTemplateOpcode,
		},
		{
			name:     "int variable pushed as bytes",
			program:  "byte TMPL_a",
			declared: map[string]string{"a": "AVMUint64"},
			values:   map[string]any{"a": uint64(1)},
			want:     ErrTemplateOpcode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := substituteTemplates([]byte(tt.program), tt.declared, tt.values)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTemplateLiteral(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		value   any
		want    string
		wantErr bool
	}{
		{"uint64", "uint64", uint64(18446744073709551615), "18446744073709551615", false},
		{"int", "uint64", 7, "7", false},
		{"decimal string", "AVMUint64", "12", "12", false},
		{"float from json", "uint64", float64(3), "3", false},
		{"negative", "uint64", -1, "", true},
		{"fraction", "uint64", 1.5, "", true},
		{"bytes", "bytes", []byte{0xde, 0xad}, "0xdead", false},
		{"string as bytes", "AVMString", "ok", "0x6f6b", false},
		{"number as bytes", "bytes", 5, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := templateLiteral(tt.typ, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
