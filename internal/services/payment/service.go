package payment

import (
	"context"
	"errors"
	"fmt"

	"payrelay/internal/config"
	"payrelay/internal/crypto"
	"payrelay/internal/domain/checkout"
	"payrelay/internal/domain/notification"
	domain "payrelay/internal/domain/payment"
	"payrelay/internal/metrics"
	"payrelay/internal/provider"

	"github.com/rs/zerolog/log"
)

// Service relays checkouts to the processor and statuses back to the storefront.
// It holds no mutable state; one instance serves all requests.
type Service struct {
	cfg        config.Cfg
	processor  provider.PaymentProcessor
	storefront provider.Storefront
	metrics    *metrics.Metrics
}

// NewService creates a new payment relay service
func NewService(cfg config.Cfg, processor provider.PaymentProcessor, storefront provider.Storefront, m *metrics.Metrics) *Service {
	return &Service{
		cfg:        cfg,
		processor:  processor,
		storefront: storefront,
		metrics:    m,
	}
}

type CheckoutResult struct {
	RedirectURL string `json:"redirectUrl"`
}

// Checkout verifies a storefront checkout, opens a processor order for it and
// returns the hosted payment page URL. Nothing is called upstream until the
// payload is authenticated and valid.
func (s *Service) Checkout(ctx context.Context, raw []byte, signature string) (*CheckoutResult, error) {
	const op = "payment.Checkout"
	logger := log.Ctx(ctx)

	if err := s.authenticate(raw, signature); err != nil {
		logger.Warn().Err(err).Msg("checkout rejected: bad signature")
		return nil, &Error{Kind: KindUnauthorized, Op: op, Err: err}
	}

	req, err := checkout.Decode(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("checkout rejected: invalid payload")
		return nil, &Error{Kind: KindInvalidCheckout, Op: op, Err: err}
	}

	order, err := s.buildOrder(req)
	if err != nil {
		logger.Warn().Err(err).Str("order_number", string(req.Order.OrderNumber)).Msg("checkout rejected: amounts")
		return nil, &Error{Kind: KindInvalidCheckout, Op: op, Err: err}
	}

	logger.Info().
		Str("order_number", string(req.Order.OrderNumber)).
		Str("ext_order_id", order.ExtOrderID).
		Str("total_amount", order.TotalAmount).
		Str("currency", order.CurrencyCode).
		Int("items", len(order.Products)).
		Msg("received checkout")

	token, err := s.processor.Authorize(ctx)
	if err != nil {
		logger.Error().Err(err).Str("code", provider.Code(err)).Msg("processor authorization failed")
		return nil, &Error{Kind: KindUpstreamAuth, Op: op, Err: err}
	}

	out, err := s.processor.CreateOrder(ctx, token.Token, order)
	if err != nil {
		logger.Error().Err(err).Str("code", provider.Code(err)).Str("ext_order_id", order.ExtOrderID).Msg("processor order creation failed")
		return nil, &Error{Kind: KindUpstreamOrder, Op: op, Err: err}
	}
	if out.RedirectURI == "" {
		return nil, &Error{Kind: KindUpstreamOrder, Op: op, Err: errors.New("empty redirect uri")}
	}

	logger.Info().
		Str("ext_order_id", order.ExtOrderID).
		Str("processor_order_id", out.OrderID).
		Msg("redirecting buyer to processor")
	return &CheckoutResult{RedirectURL: out.RedirectURI}, nil
}

func (s *Service) authenticate(raw []byte, signature string) error {
	if signature == "" {
		if s.cfg.Sec.RequireSignature {
			return errMissingSignature
		}
		return nil
	}
	if !crypto.Verify(raw, signature, s.cfg.Sec.SigningSecret) {
		return errBadSignature
	}
	return nil
}

func (s *Service) buildOrder(req *checkout.Request) (provider.OrderReq, error) {
	total, err := domain.FromMajor(req.Order.Total)
	if err != nil {
		return provider.OrderReq{}, fmt.Errorf("order.total: %w", err)
	}

	products := make([]provider.Product, 0, len(req.Order.Items))
	for i, it := range req.Order.Items {
		price, err := domain.FromMajor(it.Price)
		if err != nil {
			return provider.OrderReq{}, fmt.Errorf("order.items[%d].price: %w", i, err)
		}
		products = append(products, provider.Product{
			Name:      it.Name,
			UnitPrice: price.String(),
			Quantity:  it.Quantity,
		})
	}

	extID := req.CorrelationID(s.cfg.App.CorrelationKey)
	if extID == "" {
		return provider.OrderReq{}, fmt.Errorf("order has no %s to correlate on", s.cfg.App.CorrelationKey)
	}

	label := req.Order.OrderNumber
	if label == "" {
		label = req.Order.ID
	}

	customerIP := req.Order.IPAddress
	if customerIP == "" {
		customerIP = s.cfg.App.CustomerIP
	}

	order := provider.OrderReq{
		NotifyURL:    s.cfg.NotifyURL(),
		ContinueURL:  req.ContinueURL(s.cfg.App.DefaultReturnURL),
		CustomerIP:   customerIP,
		Description:  "Order " + string(label),
		CurrencyCode: req.Order.Currency,
		TotalAmount:  total.String(),
		ExtOrderID:   extID,
		Products:     products,
	}
	if req.Order.Email != "" {
		order.Buyer = &provider.Buyer{Email: req.Order.Email}
	}
	return order, nil
}

// Notify maps a processor status callback onto the storefront order.
func (s *Service) Notify(ctx context.Context, n notification.StatusNotification) error {
	const op = "payment.Notify"
	logger := log.Ctx(ctx)

	orderID, err := n.ExtOrderID()
	if err != nil {
		logger.Warn().Str("processor_order_id", n.Order.OrderID).Msg("notification without extOrderId")
		return &Error{Kind: KindMalformedNotification, Op: op, Err: err}
	}

	status := n.StorefrontStatus()
	logger.Info().
		Str("ext_order_id", orderID).
		Str("processor_status", string(n.Order.Status)).
		Str("payment_status", string(status)).
		Msg("received payment notification")

	if err := s.storefront.PushStatus(ctx, orderID, status); err != nil {
		s.metrics.ObserveStatusUpdate(string(status), "error")
		logger.Error().Err(err).Str("code", provider.Code(err)).Str("ext_order_id", orderID).Msg("storefront status update failed")
		return &Error{Kind: KindDownstreamUpdate, Op: op, Err: err}
	}
	s.metrics.ObserveStatusUpdate(string(status), "ok")
	return nil
}
