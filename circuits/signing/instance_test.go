package signing

import (
	"errors"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/zkgeo/geoattest/circuits"
	"github.com/zkgeo/geoattest/crypto/signatures/secp256k1"
	"github.com/zkgeo/geoattest/types"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func testSetup(c *qt.C) (*secp256k1.Signer, types.HexBytes) {
	signer, err := secp256k1.NewSignerFromHex(testKeyHex)
	c.Assert(err, qt.IsNil)
	report := &types.GeoReport{Latitude: 48.8566, Longitude: 2.3522, Timestamp: 1700000000}
	digest, err := report.Digest()
	c.Assert(err, qt.IsNil)
	return signer, digest
}

func TestNewInstanceValidation(t *testing.T) {
	c := qt.New(t)
	signer, digest := testSetup(c)

	inst, err := NewInstance(digest, signer)
	c.Assert(err, qt.IsNil)
	c.Assert(inst.Arity(), qt.Equals, PrimaryArity)

	_, err = NewInstance(digest[:16], signer)
	c.Assert(errors.Is(err, secp256k1.ErrMalformedDigest), qt.IsTrue)
	_, err = NewInstance(nil, signer)
	c.Assert(errors.Is(err, secp256k1.ErrMalformedDigest), qt.IsTrue)
}

func TestInstanceEvalPacksSignature(t *testing.T) {
	c := qt.New(t)
	signer, digest := testSetup(c)

	inst, err := NewInstance(digest, signer)
	c.Assert(err, qt.IsNil)

	// From the zero vector, the step output is the packed compact
	// signature: each element holds 16 big-endian bytes of r || s.
	out, err := inst.Eval(circuits.ZeroVector(PrimaryArity))
	c.Assert(err, qt.IsNil)
	c.Assert(out, qt.HasLen, PrimaryArity)

	sig, err := signer.SignDigest(digest)
	c.Assert(err, qt.IsNil)
	compact := sig.Compact()
	for i, el := range out {
		chunk := new(big.Int).SetBytes(compact[i*ChunkBytes : (i+1)*ChunkBytes])
		c.Assert(el.Cmp(chunk), qt.Equals, 0, qt.Commentf("chunk %d", i))
	}
	c.Assert(inst.CompactSignature().Equal(compact), qt.IsTrue)
}

func TestInstanceArityChecks(t *testing.T) {
	c := qt.New(t)
	signer, digest := testSetup(c)

	inst, err := NewInstance(digest, signer)
	c.Assert(err, qt.IsNil)

	_, err = inst.Eval(circuits.ZeroVector(3))
	c.Assert(errors.Is(err, circuits.ErrArityMismatch), qt.IsTrue)
	_, err = inst.Assign(circuits.ZeroVector(4), circuits.ZeroVector(5))
	c.Assert(errors.Is(err, circuits.ErrArityMismatch), qt.IsTrue)
}

func TestTrivialStep(t *testing.T) {
	c := qt.New(t)

	trivial := NewTrivial()
	c.Assert(trivial.Arity(), qt.Equals, SecondaryArity)

	in := []*big.Int{big.NewInt(7)}
	out, err := trivial.Eval(in)
	c.Assert(err, qt.IsNil)
	c.Assert(out[0].Cmp(in[0]), qt.Equals, 0)

	_, err = trivial.Eval(circuits.ZeroVector(2))
	c.Assert(errors.Is(err, circuits.ErrArityMismatch), qt.IsTrue)
}
