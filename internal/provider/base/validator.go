package base

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"payrelay/internal/provider"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// AmountValidator validates minor-unit amount strings
type AmountValidator struct {
	max int64
}

// NewAmountValidator creates an amount validator; max <= 0 means no cap.
func NewAmountValidator(max int64) *AmountValidator {
	return &AmountValidator{max: max}
}

// ValidateAmount checks that amount is a non-negative integer string,
// strictly positive unless allowZero is set.
func (v *AmountValidator) ValidateAmount(field, amount string, allowZero bool) error {
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("%s must be an integer amount in minor units", field),
		}
	}
	if n < 0 || (n == 0 && !allowZero) {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("%s must be greater than zero", field),
		}
	}
	if v.max > 0 && n > v.max {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidAmount,
			Message: fmt.Sprintf("%s must not exceed %d", field, v.max),
		}
	}
	return nil
}

// OrderValidator checks an order before it is sent upstream
type OrderValidator struct {
	amounts *AmountValidator
}

func NewOrderValidator(maxAmount int64) *OrderValidator {
	return &OrderValidator{amounts: NewAmountValidator(maxAmount)}
}

// ValidateOrderReq validates an order-creation request
func (v *OrderValidator) ValidateOrderReq(req *provider.OrderReq) error {
	if !currencyPattern.MatchString(req.CurrencyCode) {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidOrder,
			Message: fmt.Sprintf("currency %q is not an ISO 4217 code", req.CurrencyCode),
		}
	}
	if err := v.amounts.ValidateAmount("totalAmount", req.TotalAmount, false); err != nil {
		return err
	}
	if strings.TrimSpace(req.ExtOrderID) == "" {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidOrder,
			Message: "extOrderId is required",
		}
	}
	if strings.TrimSpace(req.Description) == "" {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidOrder,
			Message: "description is required",
		}
	}
	if len(req.Products) == 0 {
		return &provider.ProviderError{
			Code:    provider.ErrInvalidOrder,
			Message: "at least one product is required",
		}
	}
	for i, p := range req.Products {
		field := fmt.Sprintf("products[%d].unitPrice", i)
		if err := v.amounts.ValidateAmount(field, p.UnitPrice, true); err != nil {
			return err
		}
		if p.Quantity <= 0 {
			return &provider.ProviderError{
				Code:    provider.ErrInvalidOrder,
				Message: fmt.Sprintf("products[%d].quantity must be positive", i),
			}
		}
	}
	return nil
}
