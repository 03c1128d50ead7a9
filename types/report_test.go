package types

import (
	"encoding/json"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestGeoReportCanonical(t *testing.T) {
	c := qt.New(t)

	report := &GeoReport{Latitude: 48.8566, Longitude: 2.3522, Timestamp: 1700000000}

	payload, err := report.Canonical()
	c.Assert(err, qt.IsNil)
	// The canonical encoding is the pre-image of the digest: fixed field
	// order, shortest round-trip float formatting, no whitespace.
	c.Assert(string(payload), qt.Equals,
		`{"latitude":48.8566,"longitude":2.3522,"timestamp":1700000000}`)

	// Deterministic across calls.
	again, err := report.Canonical()
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.DeepEquals, payload)
}

func TestGeoReportCanonicalRejectsNonFinite(t *testing.T) {
	c := qt.New(t)

	for _, report := range []*GeoReport{
		{Latitude: math.NaN(), Longitude: 2.3522, Timestamp: 1},
		{Latitude: 48.8566, Longitude: math.Inf(1), Timestamp: 1},
		{Latitude: math.Inf(-1), Longitude: 2.3522, Timestamp: 1},
	} {
		_, err := report.Canonical()
		c.Assert(err, qt.Not(qt.IsNil))
		_, err = report.Digest()
		c.Assert(err, qt.Not(qt.IsNil))
	}
}

func TestGeoReportDigest(t *testing.T) {
	c := qt.New(t)

	report := &GeoReport{Latitude: 48.8566, Longitude: 2.3522, Timestamp: 1700000000}

	digest, err := report.Digest()
	c.Assert(err, qt.IsNil)
	c.Assert(digest, qt.HasLen, DigestLength)

	// Stable across repeated calls.
	again, err := report.Digest()
	c.Assert(err, qt.IsNil)
	c.Assert(again.Equal(digest), qt.IsTrue)

	// Any single-field change produces a different digest.
	for _, other := range []GeoReport{
		{Latitude: 48.8567, Longitude: 2.3522, Timestamp: 1700000000},
		{Latitude: 48.8566, Longitude: 2.3523, Timestamp: 1700000000},
		{Latitude: 48.8566, Longitude: 2.3522, Timestamp: 1700000001},
	} {
		otherDigest, err := other.Digest()
		c.Assert(err, qt.IsNil)
		c.Assert(otherDigest.Equal(digest), qt.IsFalse)
	}
}

func TestSignedReportJSON(t *testing.T) {
	c := qt.New(t)

	sr := &SignedReport{
		Position:  GeoReport{Latitude: 48.8566, Longitude: 2.3522, Timestamp: 42},
		Signature: HexBytes{0x01, 0x02},
		PublicKey: HexBytes{0x03},
	}

	data, err := json.Marshal(sr)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals,
		`{"position":{"latitude":48.8566,"longitude":2.3522,"timestamp":42},"signature":"0102","public_key":"03"}`)

	var back SignedReport
	c.Assert(json.Unmarshal(data, &back), qt.IsNil)
	c.Assert(&back, qt.DeepEquals, sr)
}
