package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/minrx/internal/bytecode"
	"github.com/roach88/minrx/internal/pattern"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeReadFailed   = "E002" // File read error
	ErrCodeUnsupported  = "E003" // Unsupported file extension
	ErrCodeParseFailed  = "E004" // YAML/JSON/CUE syntax error
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE evaluation failed
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeConfigFailed = "E008" // Config file error

	// Pattern errors
	ErrCodeInvalidPattern = "E101" // Malformed pattern document
	ErrCodeMissingPattern = "E102" // CUE file has no pattern field

	// Program errors
	ErrCodeInvalidProgram = "E201" // Undecodable or malformed serialized program

	// Execution errors
	ErrCodeMalformedProgram = "E301" // Branch target out of range at run time
	ErrCodeStepsExceeded    = "E302" // Run exceeded --max-steps
	ErrCodeRejected         = "E303" // Subject rejected
	ErrCodeDisagreement     = "E304" // VM and oracle disagree

	// Store errors
	ErrCodeStoreFailed = "E401" // Database error
	ErrCodeRunNotFound = "E402" // Unknown run ID
	ErrCodeNoDatabase  = "E403" // No --db given
)

// LoadError represents an error that occurred while loading an input file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// LoadPattern reads a pattern document. The format is chosen by extension:
// .yaml, .yml and .json files hold the document itself, .cue files must
// define a top-level `pattern` field.
func LoadPattern(path string) (pattern.Node, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return decodeYAMLPattern(path, data)
	case ".cue":
		return decodeCUEPattern(path, data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported pattern file %s: want .yaml, .yml, .json or .cue", path),
		}
	}
}

// decodeYAMLPattern handles YAML and JSON alike, JSON being a YAML subset.
func decodeYAMLPattern(path string, data []byte) (pattern.Node, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	return decodePattern(path, raw)
}

func decodeCUEPattern(path string, data []byte) (pattern.Node, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(ErrCodeParseFailed, err)
	}

	patVal := value.LookupPath(cue.ParsePath("pattern"))
	if !patVal.Exists() {
		return nil, &LoadError{Code: ErrCodeMissingPattern, Message: fmt.Sprintf("%s: no pattern field", path)}
	}
	if err := patVal.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, err)
	}

	var raw any
	if err := patVal.Decode(&raw); err != nil {
		return nil, cueLoadError(ErrCodeBuildFailed, err)
	}
	return decodePattern(path, raw)
}

func decodePattern(path string, raw any) (pattern.Node, error) {
	n, err := pattern.Decode(raw)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidPattern, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return n, nil
}

// cueLoadError converts a CUE error to a LoadError carrying the position
// of its first underlying error.
func cueLoadError(code string, err error) *LoadError {
	loadErr := &LoadError{Code: code, Message: err.Error()}
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			loadErr.Pos = pos
			loadErr.Message = e.Error()
			break
		}
	}
	return loadErr
}

// LoadProgram reads and validates a serialized program.
func LoadProgram(path string) (*bytecode.Program, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	p, err := bytecode.Unmarshal(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidProgram, Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return p, nil
}

// WriteProgram serializes p to path. The encoding is decoded again before
// writing so that only programs "match --program" accepts reach disk.
func WriteProgram(path string, p *bytecode.Program) error {
	data, err := bytecode.Marshal(p)
	if err != nil {
		return &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("encoding program: %v", err)}
	}
	back, err := bytecode.Unmarshal(data)
	if err != nil {
		return &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("encoded program does not load: %v", err)}
	}
	if !back.Equal(p) {
		return &LoadError{Code: ErrCodeWriteFailed, Message: "encoded program does not round-trip"}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing %s: %v", path, err)}
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return data, nil
}
