package attestor

import (
	"context"
	"errors"
	"math"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/zkgeo/geoattest/circuits"
	"github.com/zkgeo/geoattest/circuits/signing"
	"github.com/zkgeo/geoattest/crypto/signatures/secp256k1"
	"github.com/zkgeo/geoattest/types"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func testReport() *types.GeoReport {
	return &types.GeoReport{Latitude: 48.8566, Longitude: 2.3522, Timestamp: 1700000000}
}

func TestExtractSignature(t *testing.T) {
	c := qt.New(t)

	// 4 elements of 16 big-endian bytes each re-concatenate in order.
	outputs := []*big.Int{
		new(big.Int).SetBytes([]byte{0x01, 0x02}),
		big.NewInt(0),
		new(big.Int).Lsh(big.NewInt(1), 127),
		big.NewInt(0xff),
	}
	sig, err := ExtractSignature(outputs)
	c.Assert(err, qt.IsNil)
	c.Assert(sig, qt.HasLen, secp256k1.CompactLength)
	c.Assert(sig[14:16], qt.DeepEquals, []byte{0x01, 0x02})
	c.Assert(sig[32], qt.Equals, byte(0x80))
	c.Assert(sig[63], qt.Equals, byte(0xff))
}

func TestExtractSignatureRejectsWideElements(t *testing.T) {
	c := qt.New(t)

	outputs := circuits.ZeroVector(signing.PrimaryArity)
	outputs[1] = new(big.Int).Lsh(big.NewInt(1), 128)
	_, err := ExtractSignature(outputs)
	c.Assert(errors.Is(err, ErrEncoding), qt.IsTrue)

	outputs[1] = big.NewInt(-1)
	_, err = ExtractSignature(outputs)
	c.Assert(errors.Is(err, ErrEncoding), qt.IsTrue)
}

func TestExtractSignatureArity(t *testing.T) {
	c := qt.New(t)

	_, err := ExtractSignature(circuits.ZeroVector(3))
	c.Assert(errors.Is(err, circuits.ErrArityMismatch), qt.IsTrue)
}

func TestCompare(t *testing.T) {
	c := qt.New(t)

	a := types.HexBytes{0x01, 0x02}
	b := types.HexBytes{0x01, 0x02}
	c.Assert(Compare(a, b), qt.IsTrue)
	b[1] = 0x03
	c.Assert(Compare(a, b), qt.IsFalse)
	c.Assert(Compare(a, a[:1]), qt.IsFalse)
}

func TestSignReport(t *testing.T) {
	c := qt.New(t)

	signer, err := secp256k1.NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)

	signed, err := New(signer).SignReport(testReport())
	c.Assert(err, qt.IsNil)
	c.Assert(signed.Signature, qt.HasLen, secp256k1.CompactLength)
	c.Assert(signed.PublicKey, qt.HasLen, secp256k1.CompressedPubKeyLength)
	c.Assert(signed.Position, qt.DeepEquals, *testReport())

	// Deterministic signing, deterministic report.
	again, err := New(signer).SignReport(testReport())
	c.Assert(err, qt.IsNil)
	c.Assert(again.Signature.Equal(signed.Signature), qt.IsTrue)
}

// TestAttestEndToEnd runs the full pipeline, including the one-time circuit
// setup and a real Groth16 proof of the signing circuit. It takes minutes;
// use -short to skip it.
func TestAttestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full proof pipeline in -short mode")
	}
	c := qt.New(t)

	signer, err := secp256k1.NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)

	att, err := New(signer).Attest(context.Background(), testReport())
	c.Assert(err, qt.IsNil)
	c.Assert(att.Match, qt.IsTrue)
	c.Assert(att.Extracted.Equal(att.Signed.Signature), qt.IsTrue)
	c.Assert(att.ProofOutputs, qt.HasLen, signing.PrimaryArity)
}

func TestAttestCancelledContext(t *testing.T) {
	c := qt.New(t)

	signer, err := secp256k1.NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(signer).Attest(ctx, testReport())
	c.Assert(errors.Is(err, context.Canceled), qt.IsTrue)
}

func TestAttestRejectsNonFiniteReport(t *testing.T) {
	c := qt.New(t)

	signer, err := secp256k1.NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)

	bad := testReport()
	bad.Latitude = math.Inf(1)
	_, err = New(signer).Attest(context.Background(), bad)
	c.Assert(err, qt.Not(qt.IsNil))
}
