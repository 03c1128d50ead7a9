package signing

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/zkgeo/geoattest/circuits"
)

// TrivialCircuit is the identity circuit on the secondary curve. Its sole
// role in the folding protocol is bookkeeping for the recursion; it carries
// no signing logic.
type TrivialCircuit struct {
	StepIn  [SecondaryArity]frontend.Variable `gnark:",public"`
	StepOut [SecondaryArity]frontend.Variable `gnark:",public"`
}

// Define constrains the output vector to equal the input vector.
func (c *TrivialCircuit) Define(api frontend.API) error {
	for i := range c.StepOut {
		api.AssertIsEqual(c.StepOut[i], c.StepIn[i])
	}
	return nil
}

// Trivial is the secondary-curve companion step.
type Trivial struct{}

// NewTrivial returns the trivial secondary-curve step.
func NewTrivial() *Trivial {
	return &Trivial{}
}

// Curve returns the secondary proving curve.
func (t *Trivial) Curve() ecc.ID {
	return ecc.BLS12_377
}

// Arity returns the public IO vector length of the trivial circuit.
func (t *Trivial) Arity() int {
	return SecondaryArity
}

// Placeholder returns an empty trivial circuit for compilation.
func (t *Trivial) Placeholder() frontend.Circuit {
	return &TrivialCircuit{}
}

// Eval applies the identity step function.
func (t *Trivial) Eval(in []*big.Int) ([]*big.Int, error) {
	if err := circuits.CheckArity(in, SecondaryArity); err != nil {
		return nil, err
	}
	out := make([]*big.Int, SecondaryArity)
	for i := range out {
		out[i] = new(big.Int).Set(in[i])
	}
	return out, nil
}

// Assign returns the witness assignment for one identity step.
func (t *Trivial) Assign(in, out []*big.Int) (frontend.Circuit, error) {
	if err := circuits.CheckArity(in, SecondaryArity); err != nil {
		return nil, err
	}
	if err := circuits.CheckArity(out, SecondaryArity); err != nil {
		return nil, err
	}
	return t.PublicAssign(in, out), nil
}

// PublicAssign returns an assignment carrying only the public IO vectors.
// For the trivial circuit this is the whole witness.
func (t *Trivial) PublicAssign(in, out []*big.Int) frontend.Circuit {
	assignment := &TrivialCircuit{}
	for i := range assignment.StepIn {
		assignment.StepIn[i] = in[i]
		assignment.StepOut[i] = out[i]
	}
	return assignment
}
