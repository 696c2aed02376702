package validation

import (
	"errors"
	"strings"

	"github.com/mr-tron/base58"
)

var ErrInvalidCID = errors.New("invalid IPFS content identifier")

const (
	multihashSHA256 = 0x12
	sha256Length    = 0x20
	cidVersion1     = 0x01
	base32Alphabet  = "abcdefghijklmnopqrstuvwxyz234567"
	base36Alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ValidateCID accepts CIDv0 ("Qm…", base58btc sha2-256 multihash) and CIDv1
// in the multibases a node prints: base32 ("b…"), base36 ("k…") and
// base58btc ("z…"). An "ipfs://" prefix is tolerated.
func ValidateCID(cid string) error {
	cid = strings.TrimPrefix(strings.TrimSpace(cid), "ipfs://")

	switch {
	case strings.HasPrefix(cid, "Qm"):
		if len(cid) != 46 {
			return ErrInvalidCID
		}
		decoded, err := base58.Decode(cid)
		if err != nil || len(decoded) != 34 || decoded[0] != multihashSHA256 || decoded[1] != sha256Length {
			return ErrInvalidCID
		}
		return nil
	case strings.HasPrefix(cid, "b"):
		return checkAlphabet(cid[1:], base32Alphabet)
	case strings.HasPrefix(cid, "k"):
		return checkAlphabet(cid[1:], base36Alphabet)
	case strings.HasPrefix(cid, "z"):
		decoded, err := base58.Decode(cid[1:])
		if err != nil || len(decoded) < 4 || decoded[0] != cidVersion1 {
			return ErrInvalidCID
		}
		return nil
	}
	return ErrInvalidCID
}

func checkAlphabet(body, alphabet string) error {
	if len(body) < 8 {
		return ErrInvalidCID
	}
	for _, r := range body {
		if !strings.ContainsRune(alphabet, r) {
			return ErrInvalidCID
		}
	}
	return nil
}
