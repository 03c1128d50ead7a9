package secp256k1

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math/big"

	gsecp256k1 "github.com/consensys/gnark-crypto/ecc/secp256k1"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
	"github.com/zkgeo/geoattest/types"
)

// Trace is the full witness of one ECDSA signature computation: the signature
// scalars together with the nonce that produced them. It is what the signing
// circuit needs to attest the computation, and it must never leave the prover.
//
// The trace satisfies the single signing equation
//
//	S * Nonce == Digest + R * key  (mod n)
//
// with R equal to the x-coordinate of Nonce*G. When low-s normalization flips
// the S scalar, the nonce is replaced by n - k so that the equation still
// holds (k*G and (n-k)*G share their x-coordinate).
type Trace struct {
	R     *big.Int
	S     *big.Int
	Nonce *big.Int
}

// Trace recomputes the deterministic signature of a 32-byte digest from first
// principles and returns the scalars together with the RFC 6979 nonce. The
// resulting (R, S) pair is byte-identical to the one SignDigest produces; the
// agreement is what the reconciliation harness checks end to end.
func (s *Signer) Trace(digest []byte) (*Trace, error) {
	if len(digest) != types.DigestLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedDigest, len(digest), types.DigestLength)
	}

	n := fr.Modulus()
	z := hashToScalar(digest, n)
	d := s.D

	k := deterministicNonce(d, z, n)

	// R = x(k*G) mod n
	var point gsecp256k1.G1Affine
	point.ScalarMultiplicationBase(k)
	r := point.X.BigInt(new(big.Int))
	r.Mod(r, n)
	if r.Sign() == 0 {
		// RFC 6979 retries with an updated nonce here; for a fixed digest
		// and key this is a 2^-256 event, not worth a loop nobody can test.
		return nil, fmt.Errorf("degenerate signature: r == 0")
	}

	// S = k^-1 * (z + r*d) mod n
	kInv := new(big.Int).ModInverse(k, n)
	sc := new(big.Int).Mul(r, d)
	sc.Add(sc, z)
	sc.Mul(sc, kInv)
	sc.Mod(sc, n)
	if sc.Sign() == 0 {
		return nil, fmt.Errorf("degenerate signature: s == 0")
	}

	// Normalize s to the low half of the group order, flipping the nonce to
	// keep the signing equation satisfied.
	halfN := new(big.Int).Rsh(n, 1)
	if sc.Cmp(halfN) > 0 {
		sc.Sub(n, sc)
		k.Sub(n, k)
	}

	return &Trace{R: r, S: sc, Nonce: k}, nil
}

// hashToScalar interprets a digest as a big-endian integer reduced into the
// scalar field, the standard ECDSA bits2int conversion for a 256-bit curve.
func hashToScalar(digest []byte, n *big.Int) *big.Int {
	z := new(big.Int).SetBytes(digest)
	return z.Mod(z, n)
}

// deterministicNonce derives the signing nonce from the private scalar and
// the digest scalar following RFC 6979 with HMAC-SHA256, the same derivation
// the underlying secp256k1 signer uses. No extra entropy is mixed in.
func deterministicNonce(d, z, n *big.Int) *big.Int {
	x := d.FillBytes(make([]byte, 32))
	h := z.FillBytes(make([]byte, 32))

	v := bytes.Repeat([]byte{0x01}, 32)
	key := make([]byte, 32)

	key = hmacSHA256(key, v, []byte{0x00}, x, h)
	v = hmacSHA256(key, v)
	key = hmacSHA256(key, v, []byte{0x01}, x, h)
	v = hmacSHA256(key, v)

	for {
		v = hmacSHA256(key, v)
		k := new(big.Int).SetBytes(v)
		if k.Sign() > 0 && k.Cmp(n) < 0 {
			return k
		}
		key = hmacSHA256(key, v, []byte{0x00})
		v = hmacSHA256(key, v)
	}
}

func hmacSHA256(key []byte, chunks ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, chunk := range chunks {
		mac.Write(chunk)
	}
	return mac.Sum(nil)
}
