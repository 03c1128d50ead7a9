// Package circuits defines the contract between circuit implementations and
// the recursive proof driver. A Step is one circuit execution folded into the
// accumulated proof: it declares its curve and public IO arity, evaluates its
// step function natively, and produces the witness assignments the driver
// proves and verifies against.
package circuits

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
)

// ErrArityMismatch is returned when an input or output vector does not match
// the arity a circuit declares. Vectors are never truncated or padded
// silently.
var ErrArityMismatch = errors.New("circuit arity mismatch")

// Step is a circuit execution that can be folded into a recursive proof. The
// driver threads a fixed-arity vector of field elements through consecutive
// steps: each step consumes the running vector and produces the next one.
type Step interface {
	// Curve returns the proving curve the circuit is compiled over.
	Curve() ecc.ID

	// Arity returns the length of the public input/output vectors.
	Arity() int

	// Placeholder returns an empty circuit of the right shape, used for
	// compilation and setup.
	Placeholder() frontend.Circuit

	// Eval computes the step function natively over the running vector.
	Eval(in []*big.Int) ([]*big.Int, error)

	// Assign returns the full witness assignment for one step with the
	// given input and output vectors.
	Assign(in, out []*big.Int) (frontend.Circuit, error)

	// PublicAssign returns an assignment carrying only the public IO
	// vectors, used to rebuild the public witness during verification.
	PublicAssign(in, out []*big.Int) frontend.Circuit
}

// CheckArity validates that the vector length matches the declared arity.
func CheckArity(vec []*big.Int, arity int) error {
	if len(vec) != arity {
		return fmt.Errorf("%w: got %d elements, want %d", ErrArityMismatch, len(vec), arity)
	}
	return nil
}

// ZeroVector returns a vector of n zero-valued field elements, the canonical
// initial input of a recursive proof.
func ZeroVector(n int) []*big.Int {
	vec := make([]*big.Int, n)
	for i := range vec {
		vec[i] = new(big.Int)
	}
	return vec
}

// FrontendError is an in-circuit helper to print an error message and an
// error trace, making the circuit fail.
func FrontendError(api frontend.API, msg string, trace error) {
	api.Println("in-circuit error: " + msg)
	if trace != nil {
		api.Println(fmt.Sprintf("%s: %s", msg, trace.Error()))
	}
	api.AssertIsEqual(1, 0)
}
