// Package prover implements the recursive proof driver: one-time public
// parameter setup for the dual-curve circuit pair, construction of the
// initial proof state, single-step folding, and verification that yields the
// circuit's public output vector.
package prover

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/zkgeo/geoattest/circuits"
	"github.com/zkgeo/geoattest/log"
)

var (
	// ErrSetup reports a failure while compiling the circuit shapes or
	// generating the proving material.
	ErrSetup = errors.New("proof setup failed")
	// ErrInitialization reports a failure while building the initial proof
	// state.
	ErrInitialization = errors.New("proof state initialization failed")
	// ErrStep reports a failure while folding one circuit execution into
	// the proof state, typically because the constraints are unsatisfiable
	// for the given private inputs.
	ErrStep = errors.New("proof step failed")
	// ErrVerification reports an inconsistent accumulated proof: parameter
	// mismatch, a tampered proof, or a circuit bug. It is fatal for the
	// run and never retried.
	ErrVerification = errors.New("proof verification failed")

	// ErrArityMismatch is re-exported for callers that only import the
	// driver.
	ErrArityMismatch = circuits.ErrArityMismatch
)

// shapeParams holds the compiled shape and Groth16 material for one curve of
// the recursion.
type shapeParams struct {
	Curve ecc.ID
	Arity int
	CCS   constraint.ConstraintSystem
	PK    groth16.ProvingKey
	VK    groth16.VerifyingKey

	// publicAssign rebuilds a public-only witness assignment for a step of
	// this shape; captured at setup so verification does not need the
	// circuit instances.
	publicAssign func(in, out []*big.Int) frontend.Circuit
}

// PublicParams binds the proving engine to the primary and secondary circuit
// shapes. They are computed once, are read-only afterwards, and may be shared
// across concurrent pipelines: they depend only on the circuit shapes, never
// on report content.
type PublicParams struct {
	Primary   shapeParams
	Secondary shapeParams
}

// Setup compiles both circuit shapes and generates their Groth16 proving and
// verifying keys. This is the dominant one-time cost of the pipeline.
func Setup(primary, secondary circuits.Step) (*PublicParams, error) {
	pp := &PublicParams{}
	for _, shape := range []struct {
		name string
		step circuits.Step
		out  *shapeParams
	}{
		{"primary", primary, &pp.Primary},
		{"secondary", secondary, &pp.Secondary},
	} {
		start := time.Now()
		ccs, err := frontend.Compile(shape.step.Curve().ScalarField(), r1cs.NewBuilder, shape.step.Placeholder())
		if err != nil {
			return nil, fmt.Errorf("%w: compile %s circuit: %v", ErrSetup, shape.name, err)
		}
		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s circuit keys: %v", ErrSetup, shape.name, err)
		}
		*shape.out = shapeParams{
			Curve:        shape.step.Curve(),
			Arity:        shape.step.Arity(),
			CCS:          ccs,
			PK:           pk,
			VK:           vk,
			publicAssign: shape.step.PublicAssign,
		}
		log.Debugw("circuit shape ready",
			"shape", shape.name,
			"curve", shape.step.Curve().String(),
			"constraints", ccs.GetNbConstraints(),
			"took", time.Since(start).String())
	}
	return pp, nil
}
