package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job ids are ULIDs: 48 bits of millisecond timestamp followed by 80 random
// bits, Crockford Base32 encoded to 26 characters. Ids sort by submission
// time, which keeps output files in OutputDir listable in job order.

const base32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var idGen struct {
	sync.Mutex
	ms  uint64
	seq uint16
}

func generateULID() string {
	idGen.Lock()
	ms := uint64(time.Now().UnixMilli())
	if ms == idGen.ms {
		idGen.seq++
	} else {
		idGen.ms, idGen.seq = ms, 0
	}
	seq := idGen.seq
	idGen.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ms<<16)
	rand.Read(b[6:])
	// The first two random bytes carry the sequence counter, so ids minted
	// within the same millisecond stay distinct and ordered.
	binary.BigEndian.PutUint16(b[6:8], seq)

	// 128 bits render as 26 five-bit groups, with two zero bits padding the
	// front so the first character only spans the top three bits.
	out := make([]byte, 26)
	for i := range out {
		var v byte
		for j := 0; j < 5; j++ {
			v <<= 1
			bit := i*5 + j - 2
			if bit >= 0 && b[bit/8]&(1<<(7-bit%8)) != 0 {
				v |= 1
			}
		}
		out[i] = base32Alphabet[v]
	}
	return string(out)
}
