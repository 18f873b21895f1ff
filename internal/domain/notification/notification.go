package notification

import (
	"encoding/json"
	"errors"
	"strings"

	"payrelay/internal/domain/payment"
)

var ErrMissingExtOrderID = errors.New("notification has no extOrderId")

// StatusNotification is PayU's asynchronous order-status callback.
type StatusNotification struct {
	Order struct {
		OrderID      string                  `json:"orderId"`
		ExtOrderID   string                  `json:"extOrderId"`
		Status       payment.ProcessorStatus `json:"status"`
		TotalAmount  string                  `json:"totalAmount,omitempty"`
		CurrencyCode string                  `json:"currencyCode,omitempty"`
	} `json:"order"`
	LocalReceiptDateTime string `json:"localReceiptDateTime,omitempty"`
}

// Parse decodes a callback body. Only the JSON shape is checked here; use
// ExtOrderID to test for the correlation key.
func Parse(body []byte) (StatusNotification, error) {
	var n StatusNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return StatusNotification{}, err
	}
	return n, nil
}

// ExtOrderID returns the storefront correlation key echoed back by PayU.
func (n StatusNotification) ExtOrderID() (string, error) {
	id := strings.TrimSpace(n.Order.ExtOrderID)
	if id == "" {
		return "", ErrMissingExtOrderID
	}
	return id, nil
}

// StorefrontStatus maps the processor status onto the storefront vocabulary.
func (n StatusNotification) StorefrontStatus() payment.StorefrontStatus {
	return payment.MapStatus(n.Order.Status)
}
