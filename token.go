package auth

import (
	"crypto/rand"
	"encoding/base64"

	goerrors "github.com/goliatone/go-errors"
)

// opaqueTokenSize is the entropy in bytes behind each issued link token.
const opaqueTokenSize = 32

// NewOpaqueToken returns a cryptographically random URL safe token value.
// The value carries no decodable structure; stores resolve it by exact
// match only.
func NewOpaqueToken() (string, error) {
	raw := make([]byte, opaqueTokenSize)
	if _, err := rand.Read(raw); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate token entropy")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
