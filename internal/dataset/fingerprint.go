package dataset

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/blake2b"

	"findash/pkg/contracts/domain"
)

// Fingerprint hashes the table content. Equal tables hash equal regardless
// of where they were loaded from, so the value doubles as an ETag.
func Fingerprint(t *domain.Table) string {
	h, _ := blake2b.New(16, nil)

	var buf [8]byte
	for _, col := range t.Columns() {
		h.Write([]byte(col))
		h.Write([]byte{0})
	}
	for _, rec := range t.Records() {
		h.Write([]byte(rec.Company))
		h.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], uint64(rec.FiscalYear))
		h.Write(buf[:])
		for _, col := range t.Columns() {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(rec.Get(col)))
			h.Write(buf[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
