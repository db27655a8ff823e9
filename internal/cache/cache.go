package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching store lookups
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// LookupKey generates a cache key for a (store, patient, kind) lookup
func LookupKey(store, patientID, kind string) string {
	hash := sha256.Sum256([]byte(store + "\x00" + patientID + "\x00" + kind))
	return "intake:v1:" + hex.EncodeToString(hash[:])
}
