package schema

import (
	"crypto/rand"
	"math/big"
)

const (
	completionIDPrefix = "chatcmpl-"
	completionIDLength = 24
	idAlphabet         = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// NewCompletionID returns a new pseudo-random chat completion identifier in
// the conventional "chatcmpl-" form.
func NewCompletionID() string {
	buf := make([]byte, completionIDLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is unrecoverable for this process.
			panic(err)
		}
		buf[i] = idAlphabet[n.Int64()]
	}
	return completionIDPrefix + string(buf)
}
