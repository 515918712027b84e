package disco

import (
	"crypto/rand"
	"encoding/base64"

	goerrors "github.com/goliatone/go-errors"
)

// ResetTokenTTL is how long a password reset token stays valid.
var ResetTokenTTL = "1h"

// opaqueTokenBytes is the entropy behind every lifecycle token. 32 bytes is
// double the 128 bit floor the tokens are required to carry.
const opaqueTokenBytes = 32

// NewOpaqueToken returns a URL safe, high entropy, single purpose token.
// Callers decide which column it lands on; verification and reset tokens
// never share a namespace.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read random source")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
