package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed versions.
// Version suffix enables future algorithm migration.
const (
	DomainBlob = "statuslog/blob/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentVersion returns the content-addressed version of a blob.
// Adapters without a native generation counter use it as their version token.
func ContentVersion(content []byte) string {
	return hashWithDomain(DomainBlob, content)
}
