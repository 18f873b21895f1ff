package base

import (
	"testing"

	"payrelay/internal/provider"

	"github.com/stretchr/testify/assert"
)

func validOrder() provider.OrderReq {
	return provider.OrderReq{
		Description:  "Order 1001",
		CurrencyCode: "PLN",
		TotalAmount:  "4900",
		ExtOrderID:   "abc123",
		Products:     []provider.Product{{Name: "Candle", UnitPrice: "4900", Quantity: 1}},
	}
}

func TestValidateOrderReq(t *testing.T) {
	v := NewOrderValidator(0)

	tests := []struct {
		name   string
		mutate func(*provider.OrderReq)
		ok     bool
	}{
		{"valid", func(*provider.OrderReq) {}, true},
		{"free product", func(r *provider.OrderReq) { r.Products[0].UnitPrice = "0" }, true},
		{"lowercase currency", func(r *provider.OrderReq) { r.CurrencyCode = "pln" }, false},
		{"zero total", func(r *provider.OrderReq) { r.TotalAmount = "0" }, false},
		{"decimal total", func(r *provider.OrderReq) { r.TotalAmount = "49.00" }, false},
		{"no ext id", func(r *provider.OrderReq) { r.ExtOrderID = "" }, false},
		{"no products", func(r *provider.OrderReq) { r.Products = nil }, false},
		{"negative price", func(r *provider.OrderReq) { r.Products[0].UnitPrice = "-1" }, false},
		{"zero quantity", func(r *provider.OrderReq) { r.Products[0].Quantity = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validOrder()
			tt.mutate(&req)
			err := v.ValidateOrderReq(&req)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, []string{provider.ErrInvalidOrder, provider.ErrInvalidAmount}, provider.Code(err))
		})
	}
}

func TestAmountCap(t *testing.T) {
	v := NewAmountValidator(1000)
	assert.NoError(t, v.ValidateAmount("totalAmount", "1000", false))
	assert.Error(t, v.ValidateAmount("totalAmount", "1001", false))
}
