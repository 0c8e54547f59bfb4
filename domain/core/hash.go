package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash is a cryptographic content hash, used to derive stable identifiers
// without an owning reference (spec §9: "model as edges... never as owning
// references").
type Hash string

// NewHash hashes arbitrary bytes into a Hash.
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation.
func (h Hash) String() string { return string(h) }

// ClusterID stably identifies a coordination cluster bucket, the way
// spec §4.6 requires ("Cluster id is a stable function of bucket epoch").
type ClusterID Hash

// NewClusterID derives a cluster identifier from its hour-bucket epoch so
// that clustering is deterministic and reruns land on the same ID.
func NewClusterID(bucketEpoch int64) ClusterID {
	return ClusterID(NewHash([]byte(fmt.Sprintf("cluster:%d", bucketEpoch))))
}

func (c ClusterID) String() string { return Hash(c).String() }
