// Package crypto holds the keyed-hash checks applied to inbound payloads.
//
// The storefront signature is base64(HMAC-SHA256(secret, canonical)), where
// canonical is the payload re-encoded by encoding/json:
//   - object keys sorted by byte order of their UTF-8 encoding, which differs
//     from UTF-16 code unit order for keys outside the BMP;
//   - no whitespace between tokens and no trailing newline;
//   - number literals copied verbatim (1.0 stays 1.0);
//   - strings escaped as encoding/json does with HTML escaping off: '"', '\\'
//     and control characters are escaped, U+2028 and U+2029 always become
//     \u2028 and \u2029, and invalid UTF-8 is replaced with U+FFFD.
//
// A signer that follows JSON.stringify conventions produces the same bytes
// except for the last two string rules and the key order note above.
package crypto

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"strings"
)

var (
	ErrEmptySecret     = errors.New("signing secret is empty")
	ErrBadSignatureHdr = errors.New("malformed signature header")
)

// Canonicalize re-serializes a JSON document with object keys sorted, no
// insignificant whitespace and number literals kept exactly as received.
func Canonicalize(payload []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode payload: trailing data")
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Sign returns base64(HMAC-SHA256(secret, canonical JSON of payload)).
func Sign(payload []byte, secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(canonical)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Verify reports whether claimed is exactly the signature of payload.
// Anything that prevents recomputing the signature counts as a mismatch.
func Verify(payload []byte, claimed, secret string) bool {
	claimed = strings.TrimSpace(claimed)
	if claimed == "" {
		return false
	}
	expected, err := Sign(payload, secret)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(claimed))
}

// VerifyOpenPayU checks PayU's OpenPayu-Signature header, e.g.
//
//	sender=checkout;signature=c33a38d89fb60f873c039fcec3a14743;algorithm=MD5;content=DOCUMENT
//
// The signature is hex(hash(body + secondKey)).
func VerifyOpenPayU(header string, body []byte, secondKey string) error {
	if secondKey == "" {
		return ErrEmptySecret
	}
	fields := parseHeader(header)
	sig := strings.ToLower(fields["signature"])
	if sig == "" {
		return ErrBadSignatureHdr
	}

	var h hash.Hash
	switch strings.ToUpper(fields["algorithm"]) {
	case "", "MD5":
		h = md5.New()
	case "SHA-256", "SHA256":
		h = sha256.New()
	default:
		return fmt.Errorf("%w: unsupported algorithm %q", ErrBadSignatureHdr, fields["algorithm"])
	}
	h.Write(body)
	h.Write([]byte(secondKey))
	expected := hex.EncodeToString(h.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return errors.New("signature mismatch")
	}
	return nil
}

func parseHeader(header string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(header, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}
