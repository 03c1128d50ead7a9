// geoattest signs a geolocation report twice — once with a conventional
// secp256k1 ECDSA signer and once inside a recursive zero-knowledge proof —
// and checks that the signature extracted from the verified proof outputs is
// byte-identical to the reference one.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/zkgeo/geoattest/attestor"
	"github.com/zkgeo/geoattest/crypto/signatures/secp256k1"
	"github.com/zkgeo/geoattest/log"
	"github.com/zkgeo/geoattest/types"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output, nil)

	signer, err := secp256k1.NewSignerFromHex(cfg.Key.PrivKey)
	if err != nil {
		log.Fatalf("Invalid private key: %v", err)
	}

	timestamp := cfg.Report.Timestamp
	if timestamp == 0 {
		timestamp = uint64(time.Now().Unix())
	}
	report := &types.GeoReport{
		Latitude:  cfg.Report.Latitude,
		Longitude: cfg.Report.Longitude,
		Timestamp: timestamp,
	}
	log.Infow("attesting geolocation report",
		"latitude", report.Latitude,
		"longitude", report.Longitude,
		"timestamp", report.Timestamp)

	result, err := attestor.New(signer).Attest(context.Background(), report)
	if err != nil {
		log.Fatalf("Attestation failed: %v", err)
	}

	signedJSON, err := json.Marshal(result.Signed)
	if err != nil {
		log.Fatalf("Failed to encode signed report: %v", err)
	}
	fmt.Printf("Signed report: %s\n", signedJSON)
	fmt.Printf("Proof signature    : %s\n", result.Extracted.Hex())
	fmt.Printf("Reference signature: %s\n", result.Signed.Signature.Hex())
	if !result.Match {
		log.Fatal("proof and reference signatures do not match")
	}
	log.Infow("proof and reference signatures match")
}
