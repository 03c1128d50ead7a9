package secp256k1

import (
	"crypto/ecdsa"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/zkgeo/geoattest/types"
)

// Signer wraps a secp256k1 ECDSA private key. Construction validates the
// private scalar, so a Signer in hand always carries a valid nonzero scalar
// below the curve order, together with its derived public key.
type Signer ecdsa.PrivateKey

// NewSignerFromHex creates a Signer from a hex-encoded 32-byte private
// scalar. It fails with ErrInvalidKeyMaterial if the scalar is zero, not 32
// bytes, or not below the curve order.
func NewSignerFromHex(hexKey string) (*Signer, error) {
	raw, err := types.HexStringToHexBytes(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	return NewSignerFromBytes(raw)
}

// NewSignerFromBytes creates a Signer from a raw 32-byte private scalar.
func NewSignerFromBytes(raw []byte) (*Signer, error) {
	key, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	return (*Signer)(key), nil
}

// PrivateKey returns the underlying ECDSA private key.
func (s *Signer) PrivateKey() *ecdsa.PrivateKey {
	return (*ecdsa.PrivateKey)(s)
}

// CompressedPublicKey returns the 33-byte compressed encoding of the public
// key derived from the private scalar.
func (s *Signer) CompressedPublicKey() types.HexBytes {
	return ethcrypto.CompressPubkey(&s.PublicKey)
}

// SignDigest signs a 32-byte digest with the private scalar. The nonce is
// derived deterministically (RFC 6979) and s is normalized to the low half of
// the group order, so the signature is a pure function of (digest, key).
func (s *Signer) SignDigest(digest []byte) (*Signature, error) {
	if len(digest) != types.DigestLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedDigest, len(digest), types.DigestLength)
	}
	raw, err := ethcrypto.Sign(digest, s.PrivateKey())
	if err != nil {
		return nil, fmt.Errorf("could not sign digest: %w", err)
	}
	sig := new(Signature).SetBytes(raw)
	if sig == nil {
		return nil, fmt.Errorf("could not decode signature bytes")
	}
	return sig, nil
}
