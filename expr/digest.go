package expr

import (
	"cmp"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Digest is the BLAKE3-256 content address of a subtree: the node kind, its payload and
// the digests of its children in stored order. Structurally identical trees share a
// digest no matter how or when they were built.
type Digest [32]byte

func (d Digest) Uint64() uint64 {
	return binary.LittleEndian.Uint64(d[:8])
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:8])
}

var (
	trueDigest  = blake3.Sum256([]byte{byte(KindLiteral), 1})
	falseDigest = blake3.Sum256([]byte{byte(KindLiteral), 0})
)

func literalDigest(value bool) Digest {
	if value {
		return trueDigest
	}
	return falseDigest
}

func variableDigest[K cmp.Ordered](key K) Digest {
	buf := []byte{byte(KindVariable)}
	switch k := any(key).(type) {
	case string:
		buf = append(buf, k...)
	default:
		buf = fmt.Append(buf, k)
	}
	return blake3.Sum256(buf)
}

func compositeDigest[K cmp.Ordered](kind Kind, children []Expr[K]) Digest {
	buf := make([]byte, 1, 1+len(children)*len(Digest{}))
	buf[0] = byte(kind)
	for _, c := range children {
		d := c.Digest()
		buf = append(buf, d[:]...)
	}
	return blake3.Sum256(buf)
}
