package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainCells = "collcopy/cells/v1"
	DomainArray = "collcopy/array/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes the content digest of a collection.
//
// Name, title and identity fields are excluded: a faithful copy of a
// collection under a new name has the same digest as its source.
func Digest(c Collection) (string, error) {
	enc, err := MarshalCollection(c)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return DigestEncoded(enc), nil
}

// DigestEncoded computes the digest of an already encoded collection.
func DigestEncoded(enc Encoded) string {
	if enc.Kind == KindCells {
		return hashWithDomain(DomainCells, enc.Payload)
	}
	return hashWithDomain(DomainArray+"/"+string(enc.ElementType), enc.Payload)
}

// MustDigest is like Digest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustDigest(c Collection) string {
	d, err := Digest(c)
	if err != nil {
		panic(err)
	}
	return d
}
