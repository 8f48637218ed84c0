package access

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Signature fingerprints the shape of a query: the path variant, the sort
// index, the predicate shape and the ordering field. Literal values and
// the direction are not part of it.
type Signature uint64

func (s Signature) String() string {
	return fmt.Sprintf("%016x", uint64(s))
}

// SignatureBuilder accumulates the parts of a Signature.
type SignatureBuilder struct {
	d *xxhash.Digest
}

func NewSignatureBuilder(kind Kind) *SignatureBuilder {
	b := &SignatureBuilder{d: xxhash.New()}
	b.d.Write([]byte{byte(kind)})
	return b
}

// Add mixes one part into the signature. Parts are length prefixed so that
// adjacent parts cannot run together.
func (b *SignatureBuilder) Add(part string) *SignatureBuilder {
	var n [4]byte
	l := len(part)
	n[0], n[1], n[2], n[3] = byte(l), byte(l>>8), byte(l>>16), byte(l>>24)
	b.d.Write(n[:])
	b.d.WriteString(part)
	return b
}

func (b *SignatureBuilder) Sum() Signature {
	return Signature(b.d.Sum64())
}
