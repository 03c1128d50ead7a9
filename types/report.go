// Package types defines the data model shared across the geoattest pipeline:
// the geolocation report, its canonical encoding and digest, and the signed
// report interchange format.
package types

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
)

// DigestLength is the size in bytes of a report content digest (SHA-256).
const DigestLength = 32

// GeoReport is a geolocation observation. It is immutable once constructed;
// its canonical serialization is the pre-image of the digest that both signing
// paths (reference and in-circuit) must agree on, so field order and numeric
// formatting are fixed by the JSON struct definition below.
type GeoReport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp uint64  `json:"timestamp"`
}

// Valid checks that the report coordinates are finite numbers. NaN and
// infinities have no canonical JSON encoding, so they are rejected before
// hashing rather than producing a runtime-dependent serialization.
func (r *GeoReport) Valid() error {
	for name, v := range map[string]float64{
		"latitude":  r.Latitude,
		"longitude": r.Longitude,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("report %s is not a finite number", name)
		}
	}
	return nil
}

// Canonical returns the canonical byte serialization of the report. The
// encoding is deterministic: fixed field order (latitude, longitude,
// timestamp) and shortest round-trip float formatting, matching the JSON
// object {"latitude":...,"longitude":...,"timestamp":...}.
func (r *GeoReport) Canonical() ([]byte, error) {
	if err := r.Valid(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("cannot serialize report: %w", err)
	}
	return payload, nil
}

// Digest returns the SHA-256 digest of the canonical report serialization.
// It is a pure function of the report contents.
func (r *GeoReport) Digest() (HexBytes, error) {
	payload, err := r.Canonical()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(payload)
	return sum[:], nil
}

// SignedReport is the canonical interchange shape for a signed geolocation
// report: the report itself, the 64-byte compact ECDSA signature and the
// 33-byte compressed public key, both hex-encoded in JSON.
type SignedReport struct {
	Position  GeoReport `json:"position"`
	Signature HexBytes  `json:"signature"`
	PublicKey HexBytes  `json:"public_key"`
}

// String returns the JSON encoding of the signed report.
func (sr *SignedReport) String() string {
	data, err := json.Marshal(sr)
	if err != nil {
		return fmt.Sprintf("<unserializable signed report: %v>", err)
	}
	return string(data)
}
