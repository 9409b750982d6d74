package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HeaderName is the header ActiveCampaign puts the body signature in.
const HeaderName = "X-ActiveCampaign-Signature"

// Sign returns the lowercase hex HMAC-SHA256 of payload keyed with secret.
// Surrounding whitespace in secret is ignored, as in Verify.
func Sign(payload []byte, secret string) string {
	return hex.EncodeToString(sum(payload, strings.TrimSpace(secret)))
}

// Verify reports whether signatureHeader is the HMAC-SHA256 of payload under
// webhookSecret. It never panics and treats anything missing as invalid.
func Verify(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" || len(payload) == 0 {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	return hmac.Equal(sum(payload, secret), decodedSig)
}

func sum(payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}
