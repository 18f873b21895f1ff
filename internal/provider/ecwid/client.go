package ecwid

import (
	"context"
	"fmt"
	"net/url"

	"payrelay/internal/config"
	"payrelay/internal/domain/payment"
	"payrelay/internal/metrics"
	"payrelay/internal/provider"
	"payrelay/internal/provider/base"

	"github.com/rs/zerolog/log"
)

// Client pushes payment statuses into Ecwid orders via the REST API v3.
type Client struct {
	storeID    string
	apiToken   string
	httpClient *base.HTTPClient
}

func New(cfg config.Cfg, m *metrics.Metrics) *Client {
	return &Client{
		storeID:    cfg.Ecwid.StoreID,
		apiToken:   cfg.Ecwid.APIToken,
		httpClient: base.NewHTTPClient("ecwid", cfg.Ecwid.BaseURL, cfg.HTTP.ClientTimeout, base.WithMetrics(m)),
	}
}

func (c *Client) Name() string { return "ecwid" }

// PushStatus writes the payment status onto a storefront order.
func (c *Client) PushStatus(ctx context.Context, orderID string, status payment.StorefrontStatus) error {
	endpoint := fmt.Sprintf("/api/v3/%s/orders/%s/payment_status", url.PathEscape(c.storeID), url.PathEscape(orderID))
	body := struct {
		PaymentStatus payment.StorefrontStatus `json:"paymentStatus"`
	}{status}

	resp, err := c.httpClient.PostJSON(ctx, "push_status", endpoint, body, map[string]string{
		"Authorization": "Bearer " + c.apiToken,
	})
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &provider.ProviderError{
			Code:        provider.ErrStatusPushFailed,
			Message:     fmt.Sprintf("status update returned status %d", resp.StatusCode),
			ProviderErr: errorMessage(resp),
		}
	}

	log.Ctx(ctx).Info().
		Str("provider", "ecwid").
		Str("order_id", orderID).
		Str("payment_status", string(status)).
		Msg("Ecwid payment status updated")
	return nil
}

func errorMessage(resp *base.HTTPResponse) string {
	var e struct {
		ErrorMessage string `json:"errorMessage"`
		ErrorCode    string `json:"errorCode"`
	}
	if err := resp.Decode(&e); err != nil {
		return ""
	}
	return e.ErrorCode + " " + e.ErrorMessage
}
