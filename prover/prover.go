package prover

import (
	"bytes"
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/zkgeo/geoattest/circuits"
	"github.com/zkgeo/geoattest/log"
	"github.com/zkgeo/geoattest/types"
)

// stepProof is the artifact of one folding step: the serialized proofs on
// both curves plus the claimed IO vectors they attest to. Proof bytes are
// kept serialized so the accumulated state is a plain, inspectable value;
// verification deserializes and re-checks them against the IO chain.
type stepProof struct {
	PrimaryProof   types.HexBytes
	SecondaryProof types.HexBytes
	PrimaryIn      []*big.Int
	PrimaryOut     []*big.Int
	SecondaryIn    []*big.Int
	SecondaryOut   []*big.Int
}

// State is the accumulated recursive proof. It is created from the declared
// zero input vectors, advanced exactly one step at a time, and finally
// consumed by Verify. A State is exclusively owned by one pipeline run.
type State struct {
	zPrimary   []*big.Int
	zSecondary []*big.Int
	steps      []stepProof
}

// NewState builds the starting proof state for the given circuit pair. It
// fails when the input vector lengths do not match the arities the circuits
// (and the public parameters) declare.
func NewState(pp *PublicParams, primary, secondary circuits.Step, zeroPrimary, zeroSecondary []*big.Int) (*State, error) {
	if primary.Arity() != pp.Primary.Arity || secondary.Arity() != pp.Secondary.Arity {
		return nil, fmt.Errorf("%w: %w: circuit arities do not match public parameters",
			ErrInitialization, circuits.ErrArityMismatch)
	}
	if err := circuits.CheckArity(zeroPrimary, pp.Primary.Arity); err != nil {
		return nil, fmt.Errorf("%w: primary inputs: %w", ErrInitialization, err)
	}
	if err := circuits.CheckArity(zeroSecondary, pp.Secondary.Arity); err != nil {
		return nil, fmt.Errorf("%w: secondary inputs: %w", ErrInitialization, err)
	}
	return &State{
		zPrimary:   copyVector(zeroPrimary),
		zSecondary: copyVector(zeroSecondary),
	}, nil
}

// Steps returns the number of folding steps accumulated so far.
func (s *State) Steps() int {
	return len(s.steps)
}

// StepProofBytes exposes the serialized primary proof of step i. Mutating the
// returned slice corrupts the state; that is intentional, the tamper tests
// rely on it.
func (s *State) StepProofBytes(i int) types.HexBytes {
	return s.steps[i].PrimaryProof
}

// ProveStep folds one more execution of the circuit pair into the state. It
// fails with ErrStep when the constraints are unsatisfiable for the given
// private inputs — this is the mechanism by which a bad key is caught at
// proof time rather than silently producing a wrong signature.
func (s *State) ProveStep(pp *PublicParams, primary, secondary circuits.Step) error {
	start := time.Now()

	primaryOut, err := primary.Eval(s.zPrimary)
	if err != nil {
		return fmt.Errorf("%w: primary step function: %w", ErrStep, err)
	}
	secondaryOut, err := secondary.Eval(s.zSecondary)
	if err != nil {
		return fmt.Errorf("%w: secondary step function: %w", ErrStep, err)
	}

	primaryProof, err := proveShape(&pp.Primary, primary, s.zPrimary, primaryOut)
	if err != nil {
		return fmt.Errorf("%w: primary circuit: %v", ErrStep, err)
	}
	secondaryProof, err := proveShape(&pp.Secondary, secondary, s.zSecondary, secondaryOut)
	if err != nil {
		return fmt.Errorf("%w: secondary circuit: %v", ErrStep, err)
	}

	s.steps = append(s.steps, stepProof{
		PrimaryProof:   primaryProof,
		SecondaryProof: secondaryProof,
		PrimaryIn:      s.zPrimary,
		PrimaryOut:     primaryOut,
		SecondaryIn:    s.zSecondary,
		SecondaryOut:   secondaryOut,
	})
	s.zPrimary = copyVector(primaryOut)
	s.zSecondary = copyVector(secondaryOut)

	log.Debugw("folding step proven", "step", len(s.steps), "took", time.Since(start).String())
	return nil
}

// Verify checks that the accumulated proof is internally consistent for
// exactly `steps` folding steps starting from the declared zero inputs. On
// success it returns the primary curve's output field elements.
func (s *State) Verify(pp *PublicParams, steps int, zeroPrimary, zeroSecondary []*big.Int) ([]*big.Int, error) {
	if err := circuits.CheckArity(zeroPrimary, pp.Primary.Arity); err != nil {
		return nil, err
	}
	if err := circuits.CheckArity(zeroSecondary, pp.Secondary.Arity); err != nil {
		return nil, err
	}
	if steps != len(s.steps) {
		return nil, fmt.Errorf("%w: state holds %d steps, verification requested %d",
			ErrVerification, len(s.steps), steps)
	}

	zPrimary, zSecondary := zeroPrimary, zeroSecondary
	for i, step := range s.steps {
		if !equalVectors(step.PrimaryIn, zPrimary) || !equalVectors(step.SecondaryIn, zSecondary) {
			return nil, fmt.Errorf("%w: broken IO chain at step %d", ErrVerification, i+1)
		}
		if err := verifyShape(&pp.Primary, step.PrimaryProof, step.PrimaryIn, step.PrimaryOut); err != nil {
			return nil, fmt.Errorf("%w: primary proof of step %d: %v", ErrVerification, i+1, err)
		}
		if err := verifyShape(&pp.Secondary, step.SecondaryProof, step.SecondaryIn, step.SecondaryOut); err != nil {
			return nil, fmt.Errorf("%w: secondary proof of step %d: %v", ErrVerification, i+1, err)
		}
		zPrimary, zSecondary = step.PrimaryOut, step.SecondaryOut
	}
	return copyVector(zPrimary), nil
}

// proveShape generates and serializes the Groth16 proof of one step on one
// curve.
func proveShape(shape *shapeParams, step circuits.Step, in, out []*big.Int) (types.HexBytes, error) {
	assignment, err := step.Assign(in, out)
	if err != nil {
		return nil, err
	}
	witness, err := frontend.NewWitness(assignment, shape.Curve.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to create witness: %w", err)
	}
	proof, err := groth16.Prove(shape.CCS, shape.PK, witness)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize proof: %w", err)
	}
	return buf.Bytes(), nil
}

// verifyShape deserializes one step proof and verifies it against the public
// witness rebuilt from the claimed IO vectors.
func verifyShape(shape *shapeParams, raw types.HexBytes, in, out []*big.Int) error {
	proof := groth16.NewProof(shape.Curve)
	if _, err := proof.ReadFrom(bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("failed to deserialize proof: %w", err)
	}
	witness, err := frontend.NewWitness(shape.publicAssign(in, out), shape.Curve.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("failed to create public witness: %w", err)
	}
	return groth16.Verify(proof, shape.VK, witness)
}

func copyVector(vec []*big.Int) []*big.Int {
	out := make([]*big.Int, len(vec))
	for i := range vec {
		out[i] = new(big.Int).Set(vec[i])
	}
	return out
}

func equalVectors(a, b []*big.Int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}
