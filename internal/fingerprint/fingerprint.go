// Package fingerprint derives the best-effort visitor identity used to
// deduplicate likes.
//
// A fingerprint is the hex SHA-256 digest of the request IP, the user-agent
// header and the session viewer id, concatenated in that order with no
// separators. It is deliberately weak: shared IPs or a cleared cookie yield a
// new visitor. It is a deduplication key, not an authenticated identity.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Size is the length of a fingerprint in hex characters.
const Size = sha256.Size * 2

// Of returns the fingerprint for (ip, userAgent, sessionID).
func Of(ip, userAgent, sessionID string) string {
	h := sha256.New()
	h.Write([]byte(ip))
	h.Write([]byte(userAgent))
	h.Write([]byte(sessionID))
	return hex.EncodeToString(h.Sum(nil))
}
