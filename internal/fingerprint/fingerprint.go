// Package fingerprint computes the digest that identifies the structural
// compatibility of a cache generation: the checksum key plus the canonical
// dataset shape. Two equal fingerprints mean a stored artifact was built from
// the same schema; any difference forces a rebuild.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"

	"github.com/neoatlantis/na-gribtools/internal/dataset"
)

// Fingerprint hashes the checksum key together with the shape descriptor.
// Pure and deterministic across runs: every field is length-prefixed so that
// adjacent fields cannot alias, and descriptor contents are sorted before
// hashing regardless of caller order. An empty descriptor is a valid
// degenerate input with a stable digest. Never fails.
func Fingerprint(checksumKey string, shape dataset.Descriptor) string {
	h := sha256.New()
	writeField(h, []byte(checksumKey))

	vars := make([]dataset.Variable, len(shape.Variables))
	copy(vars, shape.Variables)
	sort.Slice(vars, func(i, j int) bool { return vars[i].ID < vars[j].ID })
	for _, v := range vars {
		writeField(h, []byte(v.ID))
		writeField(h, []byte(v.Name))
		writeField(h, []byte(v.Level))
		writeField(h, []byte(strconv.Itoa(v.Band)))
	}

	steps := make([]int, len(shape.Steps))
	copy(steps, shape.Steps)
	sort.Ints(steps)
	for _, s := range steps {
		writeField(h, []byte(strconv.Itoa(s)))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	h.Write(n[:])
	h.Write(b)
}
