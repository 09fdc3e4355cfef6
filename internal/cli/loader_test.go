package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/minrx/internal/bytecode"
	"github.com/roach88/minrx/internal/compiler"
	"github.com/roach88/minrx/internal/pattern"
)

// a*b
var starThenB = pattern.Concat(pattern.Star(pattern.Lit("a")), pattern.Lit("b"))

func TestLoadPattern_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "p.yaml", "cat:\n  - star: a\n  - b\n"},
		{"yml", "p.yml", "cat: [{star: {lit: a}}, {lit: b}]\n"},
		{"json", "p.json", `{"cat": [{"star": "a"}, {"lit": "b"}]}`},
		{"cue", "p.cue", "pattern: {\n\tcat: [{star: \"a\"}, \"b\"]\n}\n"},
		{"cue with definitions", "p.cue", "#A: {star: \"a\"}\npattern: cat: [#A, {lit: \"b\"}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			n, err := LoadPattern(path)
			require.NoError(t, err)
			assert.Equal(t, starThenB, n)
		})
	}
}

func TestLoadPattern_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"unsupported extension", "p.txt", "a", ErrCodeUnsupported},
		{"yaml syntax", "p.yaml", "cat: [a, b\n", ErrCodeParseFailed},
		{"unknown node kind", "p.yaml", "plus: a\n", ErrCodeInvalidPattern},
		{"two keys", "p.json", `{"lit": "a", "star": "b"}`, ErrCodeInvalidPattern},
		{"null document", "p.yaml", "~\n", ErrCodeInvalidPattern},
		{"cue syntax", "p.cue", "pattern: {cat: [\n", ErrCodeParseFailed},
		{"cue without pattern", "p.cue", "other: \"a\"\n", ErrCodeMissingPattern},
		{"cue not concrete", "p.cue", "pattern: string\n", ErrCodeBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			_, err := LoadPattern(path)
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
			assert.Equal(t, tt.wantCode, loadErr.Code)
		})
	}
}

func TestLoadPattern_NotFound(t *testing.T) {
	_, err := LoadPattern(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, loadErrorCode(err))
}

func TestLoadPattern_CUEErrorPosition(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.cue", "pattern: {cat: [\n")
	_, err := LoadPattern(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	require.True(t, loadErr.Pos.IsValid())
	assert.Contains(t, loadErr.Error(), "p.cue:")
}

func TestWriteAndLoadProgram(t *testing.T) {
	prog := compiler.Compile(starThenB)
	path := filepath.Join(t.TempDir(), "p"+bytecode.FileExtension)

	require.NoError(t, WriteProgram(path, prog))

	loaded, err := LoadProgram(path)
	require.NoError(t, err)
	assert.True(t, prog.Equal(loaded))
}

func TestLoadProgram_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.mrxb", "not cbor at all")
	_, err := LoadProgram(path)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidProgram, loadErrorCode(err))
}

func TestLoadErrorCode_Generic(t *testing.T) {
	assert.Equal(t, ErrCodeGeneric, loadErrorCode(errors.New("boom")))
}
