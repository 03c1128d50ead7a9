// Package attestor orchestrates the cross-validated signing pipeline: it
// signs a geolocation report through the conventional ECDSA path and through
// the recursive proof pipeline, then reconciles the two independently
// produced signatures. The duplication is the point — it is a verification
// harness demonstrating that the circuit enforces the exact signing algorithm
// of the reference path, not production redundancy.
package attestor

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/zkgeo/geoattest/circuits"
	"github.com/zkgeo/geoattest/circuits/signing"
	"github.com/zkgeo/geoattest/crypto/signatures/secp256k1"
	"github.com/zkgeo/geoattest/log"
	"github.com/zkgeo/geoattest/prover"
	"github.com/zkgeo/geoattest/types"
)

// Attestation is the outcome of one pipeline run: the reference-signed
// report, the proof pipeline's verified outputs, the signature extracted from
// them, and whether the two signatures agree.
type Attestation struct {
	Signed       *types.SignedReport
	ProofOutputs []*big.Int
	Extracted    types.HexBytes
	Match        bool
}

// Attestor runs the signing pipeline for one key. Public parameters are
// computed lazily on the first attestation and shared read-only by later
// runs; each run owns its proof state.
type Attestor struct {
	signer *secp256k1.Signer

	setupOnce sync.Once
	params    *prover.PublicParams
	setupErr  error
}

// New creates an Attestor around the given signer. The key material is
// injected here, never compiled in: the signer is the single source of the
// private scalar for both signing paths.
func New(signer *secp256k1.Signer) *Attestor {
	return &Attestor{signer: signer}
}

// SignReport signs a report through the conventional (non-circuit) path and
// assembles the canonical signed-report interchange value.
func (a *Attestor) SignReport(report *types.GeoReport) (*types.SignedReport, error) {
	digest, err := report.Digest()
	if err != nil {
		return nil, err
	}
	sig, err := a.signer.SignDigest(digest)
	if err != nil {
		return nil, err
	}
	return &types.SignedReport{
		Position:  *report,
		Signature: sig.Compact(),
		PublicKey: a.signer.CompressedPublicKey(),
	}, nil
}

// Attest runs the full cross-validated pipeline for one report:
// canonicalize, digest, reference-sign, build the signing circuit instance,
// set up parameters (first run only), initialize the proof state, fold one
// step, verify, extract the signature from the verified outputs and compare
// it with the reference. Every failure aborts the run; nothing is retried or
// swallowed.
func (a *Attestor) Attest(ctx context.Context, report *types.GeoReport) (*Attestation, error) {
	digest, err := report.Digest()
	if err != nil {
		return nil, err
	}
	log.Debugw("report digested", "digest", digest.Hex())

	signed, err := a.SignReport(report)
	if err != nil {
		return nil, err
	}

	instance, err := signing.NewInstance(digest, a.signer)
	if err != nil {
		return nil, err
	}
	secondary := signing.NewTrivial()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pp, err := a.publicParams(instance, secondary)
	if err != nil {
		return nil, err
	}

	zeroPrimary := circuits.ZeroVector(signing.PrimaryArity)
	zeroSecondary := circuits.ZeroVector(signing.SecondaryArity)

	state, err := prover.NewState(pp, instance, secondary, zeroPrimary, zeroSecondary)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := state.ProveStep(pp, instance, secondary); err != nil {
		return nil, err
	}
	log.Infow("recursive proof generated", "took", time.Since(start).String())

	outputs, err := state.Verify(pp, 1, zeroPrimary, zeroSecondary)
	if err != nil {
		return nil, err
	}

	extracted, err := ExtractSignature(outputs)
	if err != nil {
		return nil, err
	}
	match := Compare(extracted, signed.Signature)
	if !match {
		log.Warnw("signature mismatch between proof and reference paths",
			"extracted", extracted.Hex(), "reference", signed.Signature.Hex())
	}

	return &Attestation{
		Signed:       signed,
		ProofOutputs: outputs,
		Extracted:    extracted,
		Match:        match,
	}, nil
}

// publicParams performs the one-time circuit setup. Parameters depend only on
// the circuit shapes, so they are safe to share across runs and, if it ever
// comes to that, across concurrent pipelines.
func (a *Attestor) publicParams(primary, secondary circuits.Step) (*prover.PublicParams, error) {
	a.setupOnce.Do(func() {
		start := time.Now()
		log.Infow("producing public parameters, this can take a while")
		a.params, a.setupErr = prover.Setup(primary, secondary)
		if a.setupErr == nil {
			log.Infow("public parameters ready", "took", time.Since(start).String())
		}
	})
	if a.setupErr != nil {
		return nil, fmt.Errorf("public parameter setup: %w", a.setupErr)
	}
	return a.params, nil
}
