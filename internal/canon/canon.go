// Package canon derives deterministic canonical strings and digests from
// pipeline inputs, used to address the content cache.
package canon

import (
	"crypto/md5" //nolint:gosec // content addressing, not security
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Delimiter separates entity canonical forms inside a composite key.
const Delimiter = "|"

// String returns the canonical string form of a single pipeline input.
// Raw strings pass through unchanged; structured entities are rendered as
// compact JSON. encoding/json sorts map keys, so the output is stable
// across process restarts regardless of map iteration order.
func String(input any) (string, error) {
	switch v := input.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to canonicalize %T: %w", input, err)
		}
		return string(data), nil
	}
}

// Join builds the canonical string for a composite input spanning multiple
// entities: each entity's canonical form joined with the delimiter in
// argument order, followed by a stage-identifying suffix. The suffix keeps
// the same entity pair from colliding across different stages, and doubles
// as a version marker: bumping it orphans entries written under the old
// stage semantics.
func Join(suffix string, inputs ...any) (string, error) {
	parts := make([]string, 0, len(inputs)+1)
	for _, input := range inputs {
		part, err := String(input)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, Delimiter), nil
}

// Digest returns the fixed-length hex digest of a canonical string. This
// is the physical cache key.
func Digest(canonical string) string {
	sum := md5.Sum([]byte(canonical)) //nolint:gosec // content addressing, not security
	return hex.EncodeToString(sum[:])
}
