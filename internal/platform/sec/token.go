// Copyright (c) 2026 Campora. All rights reserved.

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random string with byteLength bytes
// of entropy (base64url-encoded, no padding).
//
// # Usage
//
// Refresh tokens, email verification tokens, and password reset tokens are
// all opaque capability strings produced here. At 32 bytes the value carries
// 256 bits of entropy; collisions are practically unreachable, but callers
// persisting tokens under a unique constraint must still handle the conflict
// by regenerating.
func GenerateSecureToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
