package bytecode

import (
	"bytes"
	"fmt"

	"github.com/chazu/lispbc/value"
)

// ImageVersion is the current program image format version.
// Increment when making incompatible changes to the format.
const ImageVersion uint16 = 1

// ImageMagic prefixes every program image: "LSBC" (lispbc bytecode).
var ImageMagic = []byte{'L', 'S', 'B', 'C'}

type wireInstruction struct {
	Op     Opcode            `cbor:"1,keyasint"`
	Symbol string            `cbor:"2,keyasint,omitempty"`
	Const  *value.WireRecord `cbor:"3,keyasint,omitempty"`
}

type wireProgram struct {
	Version   uint16                       `cbor:"1,keyasint"`
	Sequences map[string][]wireInstruction `cbor:"2,keyasint"`
}

// MarshalProgram serializes a Program to a magic-prefixed canonical CBOR
// image. Canonical encoding makes the image deterministic for a given
// program.
func MarshalProgram(p *Program) ([]byte, error) {
	wp := wireProgram{
		Version:   ImageVersion,
		Sequences: make(map[string][]wireInstruction, len(p.seqs)),
	}
	for sym, seq := range p.seqs {
		out := make([]wireInstruction, len(seq))
		for i, in := range seq {
			out[i] = wireInstruction{Op: in.Op, Symbol: in.Symbol}
			switch GetOpcodeInfo(in.Op).Operands {
			case OperandConst, OperandConstSymbol:
				wr := value.RecordToWire(in.Const)
				out[i].Const = &wr
			}
		}
		wp.Sequences[sym] = out
	}

	body, err := value.Marshal(wp)
	if err != nil {
		return nil, fmt.Errorf("bytecode: marshal program: %w", err)
	}
	return append(append([]byte{}, ImageMagic...), body...), nil
}

// UnmarshalProgram decodes an image written by MarshalProgram.
func UnmarshalProgram(data []byte) (*Program, error) {
	if len(data) < len(ImageMagic) || !bytes.Equal(data[:len(ImageMagic)], ImageMagic) {
		return nil, fmt.Errorf("invalid program image magic")
	}

	var wp wireProgram
	if err := value.Unmarshal(data[len(ImageMagic):], &wp); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	if wp.Version > ImageVersion {
		return nil, fmt.Errorf("program image version %d is newer than supported version %d", wp.Version, ImageVersion)
	}

	p := &Program{seqs: make(map[string][]Instruction, len(wp.Sequences))}
	for sym, seq := range wp.Sequences {
		out := make([]Instruction, len(seq))
		for i, wi := range seq {
			if !wi.Op.Valid() {
				return nil, fmt.Errorf("sequence %s: instruction %d: unknown opcode 0x%02X", sym, i, byte(wi.Op))
			}
			out[i] = Instruction{Op: wi.Op, Symbol: wi.Symbol}
			if wi.Const != nil {
				r, err := value.RecordFromWire(*wi.Const)
				if err != nil {
					return nil, fmt.Errorf("sequence %s: instruction %d: %w", sym, i, err)
				}
				out[i].Const = r
			}
		}
		p.seqs[sym] = out
	}
	return p, nil
}

// IsImage reports whether data starts with the program image magic.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, ImageMagic)
}
