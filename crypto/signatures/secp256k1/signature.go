// Package secp256k1 provides the reference (non-circuit) ECDSA signing path
// over the secp256k1 curve. Signatures are deterministic (RFC 6979 nonces,
// low-s normalized), so repeated calls with the same digest and key yield
// byte-identical results — a property the proof pipeline cross-check relies
// on.
package secp256k1

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/zkgeo/geoattest/types"
)

const (
	// SignatureLength is the size of a recoverable ECDSA signature in bytes
	// (r || s || v).
	SignatureLength = 65
	// CompactLength is the size of the compact signature encoding (r || s).
	CompactLength = 64
	// CompressedPubKeyLength is the size of a compressed public key.
	CompressedPubKeyLength = 33
)

// ErrInvalidKeyMaterial is returned when a private scalar does not decode to
// a valid nonzero scalar below the curve order.
var ErrInvalidKeyMaterial = errors.New("invalid key material")

// ErrMalformedDigest is returned when a digest is not exactly 32 bytes.
var ErrMalformedDigest = errors.New("malformed digest")

// Signature represents an ECDSA signature with R and S scalar components and
// the recovery identifier. The components are stored as big.Int values within
// the secp256k1 scalar field.
type Signature struct {
	R        *big.Int `json:"r"`
	S        *big.Int `json:"s"`
	recovery byte
}

// BytesToSignature creates a new Signature from a raw signature byte payload
// of at least 64 bytes (r || s, optionally followed by the recovery byte).
func BytesToSignature(signature []byte) (*Signature, error) {
	if len(signature) < CompactLength {
		return nil, fmt.Errorf("signature length is less than %d", CompactLength)
	}
	sig := new(Signature).SetBytes(signature)
	if sig == nil {
		return nil, fmt.Errorf("wrong signature bytes")
	}
	return sig, nil
}

// Valid checks that both R and S components are set.
func (sig *Signature) Valid() bool {
	return sig.R != nil && sig.S != nil
}

// Compact returns the 64-byte compact encoding of the signature: the R and S
// scalars as 32-byte big-endian values, concatenated. This is the canonical
// external representation used for transport and for the cross-check against
// the proof pipeline output.
func (sig *Signature) Compact() types.HexBytes {
	out := make([]byte, CompactLength)
	sig.R.FillBytes(out[:32])
	sig.S.FillBytes(out[32:])
	return out
}

// Bytes returns the 65-byte recoverable encoding (r || s || v).
func (sig *Signature) Bytes() types.HexBytes {
	return append(sig.Compact(), sig.recovery)
}

// SetBytes sets the Signature from a byte slice of at least 64 bytes, where
// the first 64 bytes are the R and S values. A 65th byte, if present, is the
// recovery identifier.
func (sig *Signature) SetBytes(signature []byte) *Signature {
	if len(signature) < CompactLength {
		return nil
	}
	sig.R = new(big.Int).SetBytes(signature[:32])
	sig.S = new(big.Int).SetBytes(signature[32:64])
	sig.recovery = 0
	if len(signature) >= SignatureLength {
		v := signature[64]
		if v >= 27 {
			v -= 27
		}
		if v > 3 {
			return nil
		}
		sig.recovery = v
	}
	return sig
}

// String returns a string representation of the signature components.
func (sig *Signature) String() string {
	return fmt.Sprintf("R: %s, S: %s, Recovery: %d", sig.R.String(), sig.S.String(), sig.recovery)
}
