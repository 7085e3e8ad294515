package shelfcode

import (
	"crypto/rand"
	"math/big"
)

// alphabet omits 0/O/1/I so codes survive being read out loud.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const DefaultLen = 6

// New returns a random class-join code of n characters.
func New(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
