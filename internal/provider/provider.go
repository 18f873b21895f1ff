package provider

import (
	"context"

	"payrelay/internal/domain/payment"
)

// PaymentProcessor is the upstream that issues tokens and hosts the payment page.
type PaymentProcessor interface {
	Name() string
	Authorize(ctx context.Context) (*AccessToken, error)
	CreateOrder(ctx context.Context, token string, req OrderReq) (*OrderResp, error)
}

// Storefront receives payment status updates for its orders.
type Storefront interface {
	Name() string
	PushStatus(ctx context.Context, orderID string, status payment.StorefrontStatus) error
}
