package payu

import (
	"errors"

	"payrelay/internal/crypto"
)

// SignatureHeader carries PayU's notification signature.
const SignatureHeader = "OpenPayu-Signature"

var ErrWebhookVerificationDisabled = errors.New("payu second key not configured")

// WebhookVerificationEnabled reports whether notifications must be signed.
func (p *Provider) WebhookVerificationEnabled() bool { return p.cfg.SecondKey != "" }

// ValidateWebhook checks the OpenPayu-Signature header against the raw body.
func (p *Provider) ValidateWebhook(body []byte, header string) error {
	if !p.WebhookVerificationEnabled() {
		return ErrWebhookVerificationDisabled
	}
	return crypto.VerifyOpenPayU(header, body, p.cfg.SecondKey)
}
