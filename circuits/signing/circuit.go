// Package signing contains the arithmetized ECDSA signing computation and its
// trivial secondary-curve companion. The circuit proves that the prover knows
// a private scalar (and nonce) producing a valid secp256k1 signature over a
// committed digest, and exposes the 64 raw signature bytes packed into four
// 128-bit public field elements.
package signing

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	"github.com/consensys/gnark/std/math/emulated"
)

const (
	// PrimaryArity is the number of public IO field elements on the primary
	// curve: the 64-byte compact signature split into four 16-byte chunks.
	PrimaryArity = 4
	// SecondaryArity is the number of public IO field elements on the
	// secondary curve, carried only for the recursion bookkeeping.
	SecondaryArity = 1

	// ChunkBytes is the number of signature bytes packed into each output
	// element. 16 bytes fit any proving field of 129+ bits, so the packing
	// is lossless on both recursion curves.
	ChunkBytes = 16
	chunkBits  = ChunkBytes * 8
	scalarBits = 2 * chunkBits
)

// Circuit proves one execution of the ECDSA signing algorithm over secp256k1.
//
// Witness: the digest z and private scalar d (the inputs of the signing
// request), plus the nonce k and signature scalar s of the signing trace.
// Constraints:
//
//	d != 0, k != 0
//	r == x(k*G)
//	s*k == z + r*d  (mod n)
//
// Public IO: StepOut[i] == StepIn[i] + chunk_i, where chunk_0..3 are the four
// 128-bit big-endian chunks of r || s. With the zero-initialized input vector
// the step output is exactly the packed compact signature.
type Circuit struct {
	StepIn  [PrimaryArity]frontend.Variable `gnark:",public"`
	StepOut [PrimaryArity]frontend.Variable `gnark:",public"`

	Digest emulated.Element[emulated.Secp256k1Fr]
	Key    emulated.Element[emulated.Secp256k1Fr]
	Nonce  emulated.Element[emulated.Secp256k1Fr]
	SigS   emulated.Element[emulated.Secp256k1Fr]
}

// Define declares the signing constraints.
func (c *Circuit) Define(api frontend.API) error {
	scalarField, err := emulated.NewField[emulated.Secp256k1Fr](api)
	if err != nil {
		return err
	}
	baseField, err := emulated.NewField[emulated.Secp256k1Fp](api)
	if err != nil {
		return err
	}
	curve, err := sw_emulated.New[emulated.Secp256k1Fp, emulated.Secp256k1Fr](api, sw_emulated.GetCurveParams[emulated.Secp256k1Fp]())
	if err != nil {
		return err
	}

	// A zero private scalar or nonce makes the proof unsatisfiable: a bad
	// key is caught at proof time, never silently signed with.
	api.AssertIsEqual(scalarField.IsZero(&c.Key), 0)
	api.AssertIsEqual(scalarField.IsZero(&c.Nonce), 0)

	// r is the x-coordinate of k*G. The base-field coordinate is carried
	// over to the scalar field through its bit decomposition; the wrap case
	// x >= n has probability ~2^-128 and is rejected by the prover side.
	point := curve.ScalarMulBase(&c.Nonce)
	rBits := truncateBits(api, baseField.ToBits(&point.X))
	r := scalarField.FromBits(rBits...)

	// s*k == z + r*d (mod n)
	lhs := scalarField.Mul(&c.SigS, &c.Nonce)
	rhs := scalarField.Add(&c.Digest, scalarField.Mul(r, &c.Key))
	scalarField.AssertIsEqual(lhs, rhs)

	sBits := truncateBits(api, scalarField.ToBits(&c.SigS))

	// Pack r || s into four 128-bit chunks, most significant half of r
	// first, and fold them into the step IO vector.
	chunks := [PrimaryArity]frontend.Variable{
		api.FromBinary(rBits[chunkBits:scalarBits]...),
		api.FromBinary(rBits[:chunkBits]...),
		api.FromBinary(sBits[chunkBits:scalarBits]...),
		api.FromBinary(sBits[:chunkBits]...),
	}
	for i := range c.StepOut {
		api.AssertIsEqual(c.StepOut[i], api.Add(c.StepIn[i], chunks[i]))
	}
	return nil
}

// truncateBits returns the low 256 bits of a little-endian decomposition,
// asserting that any surplus high bits are zero.
func truncateBits(api frontend.API, bits []frontend.Variable) []frontend.Variable {
	for _, bit := range bits[scalarBits:] {
		api.AssertIsEqual(bit, 0)
	}
	return bits[:scalarBits]
}
