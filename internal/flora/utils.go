package flora

import (
	"crypto/rand"
	"encoding/hex"
)

func newRandomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
