package provider

import (
	"context"
	"errors"
	"net"
)

// AccessToken is a short-lived bearer credential. It is never cached.
type AccessToken struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// Product is one line of a processor order; UnitPrice is in minor units.
type Product struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// OrderReq is the processor order-creation payload. MerchantPosID is filled
// by the processor client from its own configuration when empty.
type OrderReq struct {
	NotifyURL     string    `json:"notifyUrl"`
	ContinueURL   string    `json:"continueUrl"`
	CustomerIP    string    `json:"customerIp"`
	MerchantPosID string    `json:"merchantPosId"`
	Description   string    `json:"description"`
	CurrencyCode  string    `json:"currencyCode"`
	TotalAmount   string    `json:"totalAmount"`
	ExtOrderID    string    `json:"extOrderId"`
	Buyer         *Buyer    `json:"buyer,omitempty"`
	Products      []Product `json:"products"`
}

type Buyer struct {
	Email string `json:"email,omitempty"`
}

type OrderResp struct {
	OrderID     string `json:"orderId"`
	ExtOrderID  string `json:"extOrderId"`
	RedirectURI string `json:"redirectUri"`
	StatusCode  string `json:"-"`
}

// Common error types
type ProviderError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	ProviderErr string `json:"provider_error,omitempty"`
	Err         error  `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.ProviderErr != "" {
		return e.Message + ": " + e.ProviderErr
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Error codes
const (
	ErrAuthFailed       = "auth_failed"
	ErrOrderRejected    = "order_rejected"
	ErrInvalidOrder     = "invalid_order"
	ErrInvalidAmount    = "invalid_amount"
	ErrProviderTimeout  = "provider_timeout"
	ErrProviderDown     = "provider_down"
	ErrAPIError         = "api_error"
	ErrResponseParse    = "response_parse_failed"
	ErrStatusPushFailed = "status_push_failed"
)

// TransportError wraps a failed round trip, distinguishing timeouts.
func TransportError(err error) *ProviderError {
	code := ErrProviderDown
	if IsTimeout(err) {
		code = ErrProviderTimeout
	}
	return &ProviderError{Code: code, Message: "request failed", ProviderErr: err.Error(), Err: err}
}

func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Code extracts the ProviderError code from err, or "" when err is not one.
func Code(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
