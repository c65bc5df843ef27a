package model

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

// mainIDHashLength is the number of hex characters of the identity hash
// kept in a derived main ID. 16 hex characters (64 bits) keeps IDs short
// enough for URLs while making collisions between subjects implausible.
const mainIDHashLength = 16

// NewMainID derives a fresh subject identifier from the queried name,
// location, and the query time.
//
// The timestamp is deliberately part of the hash: two independent fresh
// searches for the same name produce distinct subjects. Callers that want
// to build a history for one subject must capture the main ID from the
// first response and pass it back on later queries.
func NewMainID(name, location string, now time.Time) string {
	sum := sha3.Sum256(fmt.Appendf(nil, "%s|%s|%d", name, location, now.UnixNano()))
	return "report_" + hex.EncodeToString(sum[:])[:mainIDHashLength]
}

// NewSubID generates a fresh query snapshot identifier. Sub IDs are
// unique across the whole system, so they are trivially unique within
// any one subject's report map.
func NewSubID() string {
	return "sub_" + uuid.NewString()
}
