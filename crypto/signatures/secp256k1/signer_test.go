package secp256k1

import (
	"crypto/sha256"
	"errors"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// secp256k1 group order, big-endian hex.
const curveOrderHex = "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"

func testDigest() []byte {
	sum := sha256.Sum256([]byte(`{"latitude":48.8566,"longitude":2.3522,"timestamp":1700000000}`))
	return sum[:]
}

func TestNewSignerFromHex(t *testing.T) {
	c := qt.New(t)

	signer, err := NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)
	c.Assert(signer, qt.Not(qt.IsNil))
	c.Assert(signer.CompressedPublicKey(), qt.HasLen, CompressedPubKeyLength)

	// Invalid scalars: zero, >= curve order, wrong length, not hex.
	for _, hexKey := range []string{
		strings.Repeat("00", 32),
		curveOrderHex,
		strings.Repeat("ff", 32),
		"1234",
		"not a hex key",
	} {
		_, err := NewSignerFromHex(hexKey)
		c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("key %q", hexKey))
		c.Assert(errors.Is(err, ErrInvalidKeyMaterial), qt.IsTrue)
	}
}

func TestSignDigestDeterminism(t *testing.T) {
	c := qt.New(t)

	signer, err := NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)

	digest := testDigest()
	first, err := signer.SignDigest(digest)
	c.Assert(err, qt.IsNil)
	second, err := signer.SignDigest(digest)
	c.Assert(err, qt.IsNil)

	// RFC 6979 nonces: same digest and key, byte-identical signatures.
	c.Assert(first.Compact().Equal(second.Compact()), qt.IsTrue)
	c.Assert(first.Compact(), qt.HasLen, CompactLength)
}

func TestSignDigestMalformedDigest(t *testing.T) {
	c := qt.New(t)

	signer, err := NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)

	for _, digest := range [][]byte{nil, make([]byte, 31), make([]byte, 33)} {
		_, err := signer.SignDigest(digest)
		c.Assert(errors.Is(err, ErrMalformedDigest), qt.IsTrue)
	}
}

func TestSignatureBytesRoundTrip(t *testing.T) {
	c := qt.New(t)

	signer, err := NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)

	sig, err := signer.SignDigest(testDigest())
	c.Assert(err, qt.IsNil)

	back, err := BytesToSignature(sig.Bytes())
	c.Assert(err, qt.IsNil)
	c.Assert(back.R.Cmp(sig.R), qt.Equals, 0)
	c.Assert(back.S.Cmp(sig.S), qt.Equals, 0)

	_, err = BytesToSignature(make([]byte, 10))
	c.Assert(err, qt.Not(qt.IsNil))
}
