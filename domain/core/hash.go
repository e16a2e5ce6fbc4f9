package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeRunFingerprint hashes the inputs that determine a run's output.
// Marker and parameter order does not change the fingerprint.
func ComputeRunFingerprint(markers, parameters []string, patientCount int, settings map[string]interface{}) Hash {
	m := append([]string(nil), markers...)
	p := append([]string(nil), parameters...)
	sort.Strings(m)
	sort.Strings(p)

	var data strings.Builder
	data.WriteString("markers:")
	data.WriteString(strings.Join(m, ","))
	data.WriteString("|parameters:")
	data.WriteString(strings.Join(p, ","))
	data.WriteString(fmt.Sprintf("|patients:%d", patientCount))

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		data.WriteString("|")
		data.WriteString(key)
		data.WriteString("=")
		data.WriteString(fmt.Sprintf("%v", settings[key]))
	}

	return NewHash([]byte(data.String()))
}
