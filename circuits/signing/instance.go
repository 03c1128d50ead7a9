package signing

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/zkgeo/geoattest/circuits"
	"github.com/zkgeo/geoattest/crypto/signatures/secp256k1"
	"github.com/zkgeo/geoattest/types"
)

// Instance is the signing circuit bound to one (digest, key) pair. It is
// created once per proof run and never mutated: the signing trace (nonce and
// signature scalars) is computed at construction so every later assignment is
// a pure projection of it.
type Instance struct {
	digest *big.Int // digest as secp256k1 scalar
	key    *big.Int
	trace  *secp256k1.Trace
	chunks [PrimaryArity]*big.Int
}

// NewInstance builds the arithmetized signing computation for the given
// 32-byte digest and signer. It fails with ErrMalformedDigest when the digest
// has the wrong length; an invalid private scalar cannot occur here because
// Signer construction already rejects it.
func NewInstance(digest types.HexBytes, signer *secp256k1.Signer) (*Instance, error) {
	if len(digest) != types.DigestLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", secp256k1.ErrMalformedDigest, len(digest), types.DigestLength)
	}
	n := fr.Modulus()
	key := signer.PrivateKey().D
	if key.Sign() == 0 || key.Cmp(n) >= 0 {
		return nil, fmt.Errorf("%w: scalar out of range", secp256k1.ErrInvalidKeyMaterial)
	}

	trace, err := signer.Trace(digest)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		digest: new(big.Int).Mod(new(big.Int).SetBytes(digest), n),
		key:    new(big.Int).Set(key),
		trace:  trace,
	}

	// Pre-compute the four 128-bit chunks of r || s that the circuit folds
	// into its output vector.
	compact := make([]byte, PrimaryArity*ChunkBytes)
	trace.R.FillBytes(compact[:32])
	trace.S.FillBytes(compact[32:])
	for i := range inst.chunks {
		inst.chunks[i] = new(big.Int).SetBytes(compact[i*ChunkBytes : (i+1)*ChunkBytes])
	}
	return inst, nil
}

// Curve returns the primary proving curve.
func (inst *Instance) Curve() ecc.ID {
	return ecc.BN254
}

// Arity returns the public IO vector length of the signing circuit.
func (inst *Instance) Arity() int {
	return PrimaryArity
}

// Placeholder returns an empty signing circuit for compilation.
func (inst *Instance) Placeholder() frontend.Circuit {
	return &Circuit{}
}

// Eval computes the native step function: the signature chunks folded into
// the running vector, reduced in the proving field.
func (inst *Instance) Eval(in []*big.Int) ([]*big.Int, error) {
	if err := circuits.CheckArity(in, PrimaryArity); err != nil {
		return nil, err
	}
	mod := inst.Curve().ScalarField()
	out := make([]*big.Int, PrimaryArity)
	for i := range out {
		out[i] = new(big.Int).Add(in[i], inst.chunks[i])
		out[i].Mod(out[i], mod)
	}
	return out, nil
}

// Assign returns the full witness assignment for one signing step.
func (inst *Instance) Assign(in, out []*big.Int) (frontend.Circuit, error) {
	if err := circuits.CheckArity(in, PrimaryArity); err != nil {
		return nil, err
	}
	if err := circuits.CheckArity(out, PrimaryArity); err != nil {
		return nil, err
	}
	assignment := &Circuit{
		Digest: emulated.ValueOf[emulated.Secp256k1Fr](inst.digest),
		Key:    emulated.ValueOf[emulated.Secp256k1Fr](inst.key),
		Nonce:  emulated.ValueOf[emulated.Secp256k1Fr](inst.trace.Nonce),
		SigS:   emulated.ValueOf[emulated.Secp256k1Fr](inst.trace.S),
	}
	for i := range in {
		assignment.StepIn[i] = in[i]
		assignment.StepOut[i] = out[i]
	}
	return assignment, nil
}

// PublicAssign returns an assignment carrying only the public IO vectors.
func (inst *Instance) PublicAssign(in, out []*big.Int) frontend.Circuit {
	assignment := &Circuit{}
	for i := range assignment.StepIn {
		assignment.StepIn[i] = in[i]
		assignment.StepOut[i] = out[i]
	}
	return assignment
}

// CompactSignature returns the 64-byte compact signature of the underlying
// trace, the value the verified proof output must reconcile with.
func (inst *Instance) CompactSignature() types.HexBytes {
	out := make([]byte, 64)
	inst.trace.R.FillBytes(out[:32])
	inst.trace.S.FillBytes(out[32:])
	return out
}
