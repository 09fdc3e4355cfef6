package bytecode

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Serialized program envelope.
const (
	// Magic identifies minrx bytecode files.
	Magic = "MRXB"

	// FormatVersion is the current envelope version.
	FormatVersion = 1

	// FileExtension is the conventional extension for serialized programs.
	FileExtension = ".mrxb"
)

var (
	ErrBadMagic           = errors.New("not a minrx program: bad magic")
	ErrUnsupportedVersion = errors.New("unsupported program format version")
)

type envelope struct {
	Magic   string            `cbor:"1,keyasint"`
	Version int               `cbor:"2,keyasint"`
	Code    []wireInstruction `cbor:"3,keyasint"`
}

type wireInstruction struct {
	_      struct{} `cbor:",toarray"`
	Op     uint8
	Text   []byte // byte string: literals need not be valid UTF-8
	Offset int64
}

// Deterministic encoding: the same program always yields the same bytes.
var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Marshal encodes p as CBOR.
func Marshal(p *Program) ([]byte, error) {
	env := envelope{
		Magic:   Magic,
		Version: FormatVersion,
		Code:    make([]wireInstruction, len(p.code)),
	}
	for i, in := range p.code {
		env.Code[i] = wireInstruction{
			Op:     uint8(in.Op),
			Text:   []byte(in.Text),
			Offset: int64(in.Offset),
		}
	}

	data, err := encMode.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding program: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a CBOR program produced by Marshal and validates it.
func Unmarshal(data []byte) (*Program, error) {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	if env.Magic != Magic {
		return nil, ErrBadMagic
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}

	code := make([]Instruction, len(env.Code))
	for i, w := range env.Code {
		code[i] = Instruction{Op: Op(w.Op), Text: string(w.Text), Offset: int(w.Offset)}
	}
	p := &Program{code: code}
	if len(code) == 0 {
		p.code = nil
	}

	if err := Validate(p); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	return p, nil
}
