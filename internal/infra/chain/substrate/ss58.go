package substrate

import (
	"bytes"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	publicKeyLength = 32
	checksumLength  = 2
)

var checksumPrefix = []byte("SS58PRE")

// decodeSS58 decodes an SS58 account address and returns its network prefix.
// Both the one-byte (prefix < 64) and the two-byte prefix forms are accepted.
func decodeSS58(address string) (uint16, bool) {
	raw, err := base58.Decode(address)
	if err != nil {
		return 0, false
	}

	var (
		prefix    uint16
		prefixLen int
	)
	switch len(raw) {
	case 1 + publicKeyLength + checksumLength:
		if raw[0] >= 64 {
			return 0, false
		}
		prefix, prefixLen = uint16(raw[0]), 1
	case 2 + publicKeyLength + checksumLength:
		if raw[0] < 64 || raw[0] > 127 {
			return 0, false
		}
		lower := (raw[0]&0x3f)<<2 | raw[1]>>6
		upper := raw[1] & 0x3f
		prefix, prefixLen = uint16(lower)|uint16(upper)<<8, 2
	default:
		return 0, false
	}

	body := raw[:prefixLen+publicKeyLength]
	sum := blake2b.Sum512(append(append([]byte{}, checksumPrefix...), body...))

	if !bytes.Equal(sum[:checksumLength], raw[len(body):]) {
		return 0, false
	}

	return prefix, true
}
