package attestor

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/zkgeo/geoattest/circuits"
	"github.com/zkgeo/geoattest/circuits/signing"
	"github.com/zkgeo/geoattest/types"
)

// ErrEncoding reports a signature or key byte-level encoding failure.
var ErrEncoding = errors.New("encoding error")

// ExtractSignature maps the proof's verified output field elements back into
// the 64-byte compact signature. Each of the 4 elements contributes the low
// 16 bytes of its 32-byte big-endian encoding, concatenated in order: the raw
// r || s concatenation split into four field-safe chunks.
//
// An element wider than 128 bits means the packing would be lossy; that is an
// encoding error, never silently truncated.
func ExtractSignature(outputs []*big.Int) (types.HexBytes, error) {
	if err := circuits.CheckArity(outputs, signing.PrimaryArity); err != nil {
		return nil, err
	}
	sig := make([]byte, signing.PrimaryArity*signing.ChunkBytes)
	for i, out := range outputs {
		if out.Sign() < 0 || out.BitLen() > signing.ChunkBytes*8 {
			return nil, fmt.Errorf("%w: output element %d exceeds %d bits", ErrEncoding, i, signing.ChunkBytes*8)
		}
		out.FillBytes(sig[i*signing.ChunkBytes : (i+1)*signing.ChunkBytes])
	}
	return sig, nil
}

// Compare reports whether the signature extracted from the proof pipeline
// equals the reference signature. This is a diagnostic comparison validating
// that the circuit computed the same signing algorithm as the reference path,
// not a cryptographic verification against the public key.
func Compare(extracted, reference types.HexBytes) bool {
	return extracted.Equal(reference)
}
