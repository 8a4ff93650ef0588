package store

import (
	"fmt"
	"strings"
	"time"
)

// Policy decides what happens when the destination database already exists.
type Policy string

const (
	PolicyAppend    Policy = "append"
	PolicyOverwrite Policy = "overwrite"
	PolicyError     Policy = "error"
)

var policySet = map[Policy]struct{}{
	PolicyAppend:    {},
	PolicyOverwrite: {},
	PolicyError:     {},
}

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(value string) (Policy, error) {
	policy := Policy(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := policySet[policy]; !ok {
		return "", fmt.Errorf("unknown store policy %q (append, overwrite, error)", value)
	}
	return policy, nil
}

// MismatchPolicy decides what to do with checksums persisted under a hash
// algorithm other than the configured one.
type MismatchPolicy string

const (
	MismatchError  MismatchPolicy = "error"
	MismatchRehash MismatchPolicy = "rehash"
)

var mismatchSet = map[MismatchPolicy]struct{}{
	MismatchError:  {},
	MismatchRehash: {},
}

// ParseMismatchPolicy converts a configuration string into a MismatchPolicy.
func ParseMismatchPolicy(value string) (MismatchPolicy, error) {
	policy := MismatchPolicy(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := mismatchSet[policy]; !ok {
		return "", fmt.Errorf("unknown hash mismatch policy %q (error, rehash)", value)
	}
	return policy, nil
}

// Session is one engine run's persisted configuration. Every file row
// references the session that admitted it.
type Session struct {
	ID             string
	SearchDirs     []string
	BaseDir        string
	ExcludeDirs    []string
	ContentCheck   bool
	HashAlgorithm  string
	BufferSize     int
	FlushThreshold int
	ImportSource   string
	CreatedAt      time.Time

	// FileCount is populated by Sessions listings, zero elsewhere.
	FileCount int
}
