package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainCall  = "vector/call/v1"
	DomainTable = "vector/table/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CallID computes the content-addressed ID of a recorded call.
// The ID is stable across replays given the same session, name, argument
// batches and sequence number.
func CallID(sessionID, name string, args IRArray, seq int64) (string, error) {
	obj := IRObject{
		"session_id": IRString(sessionID),
		"name":       IRString(name),
		"args":       args,
		"seq":        IRInt(seq),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CallID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainCall, canonical), nil
}

// TableHash computes the content hash of a compiled table.
func TableHash(t TableSpec) (string, error) {
	canonical, err := MarshalCanonical(t.IR())
	if err != nil {
		return "", fmt.Errorf("TableHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}

// MustCallID is like CallID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustCallID(sessionID, name string, args IRArray, seq int64) string {
	id, err := CallID(sessionID, name, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}
