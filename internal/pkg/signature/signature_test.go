package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_MatchesHMACSHA256Hex(t *testing.T) {
	payload := []byte(`{"type":"contact_add"}`)
	secret := "top-secret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, Sign(payload, secret))
}

func TestVerify_RoundTrip(t *testing.T) {
	cases := []struct {
		secret string
		body   string
	}{
		{secret: "top-secret", body: `{"foo":"bar"}`},
		{secret: "CorvusSolutions", body: `type=contact_add&contact%5Bemail%5D=a%40b.c`},
		{secret: "k", body: "x"},
		{secret: strings.Repeat("s", 200), body: strings.Repeat("{}", 5000)},
	}

	for _, tc := range cases {
		sig := Sign([]byte(tc.body), tc.secret)
		assert.True(t, Verify([]byte(tc.body), sig, tc.secret), "body %q", tc.body)
		assert.True(t, Verify([]byte(tc.body), strings.ToUpper(sig), tc.secret), "upper-case hex must verify")
		assert.True(t, Verify([]byte(tc.body), "  "+sig+"\n", tc.secret), "surrounding whitespace is ignored")
	}
}

func TestVerify_SingleByteBodyMutation(t *testing.T) {
	body := []byte(`{"type":"contact_add","contact":{"email":"test@example.com"}}`)
	secret := "top-secret"
	sig := Sign(body, secret)

	for i := range body {
		mutated := append([]byte(nil), body...)
		mutated[i] ^= 0x01
		assert.False(t, Verify(mutated, sig, secret), "mutation at byte %d must fail", i)
	}
}

func TestVerify_SingleCharSignatureMutation(t *testing.T) {
	body := []byte(`{"type":"contact_add"}`)
	secret := "top-secret"
	sig := Sign(body, secret)

	for i := range sig {
		replacement := byte('0')
		if sig[i] == '0' {
			replacement = '1'
		}
		mutated := sig[:i] + string(replacement) + sig[i+1:]
		assert.False(t, Verify(body, mutated, secret), "mutation at char %d must fail", i)
	}
}

func TestVerify_RejectsMissingInputs(t *testing.T) {
	body := []byte(`{"foo":"bar"}`)
	sig := Sign(body, "top-secret")

	assert.False(t, Verify(body, "", "top-secret"), "missing signature")
	assert.False(t, Verify(body, sig, ""), "missing secret")
	assert.False(t, Verify(nil, Sign(nil, "top-secret"), "top-secret"), "empty body")
	assert.False(t, Verify(body, "not-hex!", "top-secret"), "non-hex signature")
	assert.False(t, Verify(body, sig[:len(sig)-2], "top-secret"), "truncated signature")
	assert.False(t, Verify(body, sig, "other-secret"), "wrong secret")
}

func TestSignAndVerify_SecretWhitespaceIgnored(t *testing.T) {
	body := []byte(`{"type":"contact_add"}`)

	assert.True(t, Verify(body, Sign(body, " s3cret\n"), " s3cret\n"))
	assert.Equal(t, Sign(body, "s3cret"), Sign(body, "  s3cret  "))
}
