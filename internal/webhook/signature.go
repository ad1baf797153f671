// Copyright 2025 The Prscribe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const signaturePrefix = "sha256="

// ValidateSignature verifies the HMAC-SHA256 signature of a GitHub webhook payload.
// It returns true if the signature is valid, false otherwise.
//
// The signature should be in the format "sha256=<hex-encoded-hmac>" and must be
// computed over exactly the bytes in payload. Both the signature and secret must
// be non-empty for validation to succeed.
func ValidateSignature(payload []byte, signature string, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}

	receivedMAC, err := hex.DecodeString(strings.TrimPrefix(signature, signaturePrefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)

	// Constant-time comparison to prevent timing attacks
	return hmac.Equal(receivedMAC, mac.Sum(nil))
}

// Sign returns the X-Hub-Signature-256 header value for payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
