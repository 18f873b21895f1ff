package checkout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"payrelay/internal/domain/payment"

	"github.com/shopspring/decimal"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ID accepts both JSON strings and numbers; Ecwid sends order ids either way
// depending on API version.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type Order struct {
	ID          ID              `json:"id"`
	OrderNumber ID              `json:"orderNumber"`
	Currency    string          `json:"currency"`
	Total       decimal.Decimal `json:"total"`
	Items       []Item          `json:"items"`
	ReturnURL   string          `json:"returnUrl,omitempty"`
	IPAddress   string          `json:"ipAddress,omitempty"`
	Email       string          `json:"email,omitempty"`
}

// Request is the checkout notification posted by the storefront.
type Request struct {
	Order     Order
	ReturnURL string
}

// CorrelationID returns the storefront identifier PayU will echo back as
// extOrderId. key is "id" or "orderNumber".
func (r *Request) CorrelationID(key string) string {
	if key == "orderNumber" {
		return string(r.Order.OrderNumber)
	}
	return string(r.Order.ID)
}

// ContinueURL returns the caller-supplied return URL, or fallback.
func (r *Request) ContinueURL(fallback string) string {
	if u := strings.TrimSpace(r.ReturnURL); u != "" {
		return u
	}
	if u := strings.TrimSpace(r.Order.ReturnURL); u != "" {
		return u
	}
	return fallback
}

type envelope struct {
	Order *Order `json:"order"`
	Cart  *struct {
		Order *Order `json:"order"`
	} `json:"cart"`
	ReturnURL string `json:"returnUrl"`
}

// ValidationError describes a checkout payload that cannot be relayed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Decode parses a checkout payload in either the {"order":…} or the
// {"cart":{"order":…}} envelope and validates it.
func Decode(raw []byte) (*Request, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ValidationError{Message: "invalid json: " + err.Error()}
	}

	order := env.Order
	if order == nil && env.Cart != nil {
		order = env.Cart.Order
	}
	if order == nil {
		return nil, &ValidationError{Field: "order", Message: "is required"}
	}

	req := &Request{Order: *order, ReturnURL: env.ReturnURL}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Request) Validate() error {
	o := r.Order
	var errs []error
	if o.ID == "" && o.OrderNumber == "" {
		errs = append(errs, &ValidationError{Field: "order.id", Message: "id or orderNumber is required"})
	}
	switch {
	case strings.TrimSpace(o.Currency) == "":
		errs = append(errs, &ValidationError{Field: "order.currency", Message: "is required"})
	case !currencyPattern.MatchString(o.Currency):
		errs = append(errs, &ValidationError{Field: "order.currency", Message: "must be an ISO 4217 code"})
	}
	switch {
	case !o.Total.IsPositive():
		errs = append(errs, &ValidationError{Field: "order.total", Message: "must be greater than zero"})
	case !payment.IsWholeMinor(o.Total):
		errs = append(errs, &ValidationError{Field: "order.total", Message: "must be a whole number of minor units"})
	}
	if len(o.Items) == 0 {
		errs = append(errs, &ValidationError{Field: "order.items", Message: "at least one item is required"})
	}
	for i, it := range o.Items {
		if strings.TrimSpace(it.Name) == "" {
			errs = append(errs, &ValidationError{Field: fmt.Sprintf("order.items[%d].name", i), Message: "is required"})
		}
		if it.Quantity <= 0 {
			errs = append(errs, &ValidationError{Field: fmt.Sprintf("order.items[%d].quantity", i), Message: "must be positive"})
		}
		switch {
		case it.Price.IsNegative():
			errs = append(errs, &ValidationError{Field: fmt.Sprintf("order.items[%d].price", i), Message: "must not be negative"})
		case !payment.IsWholeMinor(it.Price):
			errs = append(errs, &ValidationError{Field: fmt.Sprintf("order.items[%d].price", i), Message: "must be a whole number of minor units"})
		}
	}
	return errors.Join(errs...)
}
