package payu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"payrelay/internal/config"
	"payrelay/internal/metrics"
	"payrelay/internal/provider"
	"payrelay/internal/provider/base"

	"github.com/rs/zerolog/log"
)

const (
	authorizePath = "/pl/standard/user/oauth/authorize"
	ordersPath    = "/api/v2_1/orders"

	statusSuccess = "SUCCESS"
)

// Provider implements the PayU REST API (OAuth client credentials + orders)
type Provider struct {
	cfg        config.PayUCfg
	httpClient *base.HTTPClient
	validator  *base.OrderValidator
}

// New creates a new PayU provider instance
func New(cfg config.Cfg, m *metrics.Metrics) *Provider {
	return &Provider{
		cfg:        cfg.PayU,
		httpClient: base.NewHTTPClient("payu", cfg.PayU.BaseURL, cfg.HTTP.ClientTimeout, base.WithoutRedirects(), base.WithMetrics(m)),
		validator:  base.NewOrderValidator(0),
	}
}

func (p *Provider) Name() string { return "payu" }

// Authorize exchanges the client credentials for an access token.
func (p *Provider) Authorize(ctx context.Context) (*provider.AccessToken, error) {
	q := url.Values{}
	q.Set("grant_type", "client_credentials")
	q.Set("client_id", p.cfg.ClientID)
	q.Set("client_secret", p.cfg.ClientSecret)

	resp, err := p.httpClient.PostQuery(ctx, "authorize", authorizePath, q, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &provider.ProviderError{
			Code:        provider.ErrAuthFailed,
			Message:     fmt.Sprintf("authorization returned status %d", resp.StatusCode),
			ProviderErr: errorDescription(resp),
		}
	}

	var token provider.AccessToken
	if err := resp.Decode(&token); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrResponseParse,
			Message: fmt.Sprintf("failed to parse auth response: %v", err),
			Err:     err,
		}
	}
	if token.Token == "" {
		return nil, &provider.ProviderError{
			Code:    provider.ErrAuthFailed,
			Message: "authorization response has no access_token",
		}
	}
	return &token, nil
}

// CreateOrder registers the order with PayU and returns the hosted-page URL.
func (p *Provider) CreateOrder(ctx context.Context, token string, req provider.OrderReq) (*provider.OrderResp, error) {
	if req.MerchantPosID == "" {
		req.MerchantPosID = p.cfg.PosID
	}
	if err := p.validator.ValidateOrderReq(&req); err != nil {
		return nil, err
	}

	resp, err := p.httpClient.PostJSON(ctx, "create_order", ordersPath, req, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, err
	}

	// PayU answers 302 Found with the JSON body on success; 200/201 are
	// seen on some sandbox configurations.
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusFound:
	default:
		return nil, &provider.ProviderError{
			Code:        provider.ErrAPIError,
			Message:     fmt.Sprintf("order creation returned status %d", resp.StatusCode),
			ProviderErr: errorDescription(resp),
		}
	}

	var out struct {
		Status struct {
			StatusCode string `json:"statusCode"`
			StatusDesc string `json:"statusDesc"`
		} `json:"status"`
		RedirectURI string `json:"redirectUri"`
		OrderID     string `json:"orderId"`
		ExtOrderID  string `json:"extOrderId"`
	}
	if err := resp.Decode(&out); err != nil {
		return nil, &provider.ProviderError{
			Code:    provider.ErrResponseParse,
			Message: fmt.Sprintf("failed to parse order response: %v", err),
			Err:     err,
		}
	}
	if out.Status.StatusCode != "" && out.Status.StatusCode != statusSuccess {
		return nil, &provider.ProviderError{
			Code:        provider.ErrOrderRejected,
			Message:     "order rejected",
			ProviderErr: out.Status.StatusCode + " " + out.Status.StatusDesc,
		}
	}
	if out.RedirectURI == "" {
		return nil, &provider.ProviderError{
			Code:    provider.ErrOrderRejected,
			Message: "order response has no redirectUri",
		}
	}

	log.Ctx(ctx).Info().
		Str("provider", "payu").
		Str("payu_order_id", out.OrderID).
		Str("ext_order_id", req.ExtOrderID).
		Str("total_amount", req.TotalAmount).
		Str("currency", req.CurrencyCode).
		Msg("PayU order created")

	return &provider.OrderResp{
		OrderID:     out.OrderID,
		ExtOrderID:  out.ExtOrderID,
		RedirectURI: out.RedirectURI,
		StatusCode:  out.Status.StatusCode,
	}, nil
}

// errorDescription pulls PayU's error description out of a failed response
// for logging; it is never sent back to callers.
func errorDescription(resp *base.HTTPResponse) string {
	var e struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Status           struct {
			StatusCode string `json:"statusCode"`
			StatusDesc string `json:"statusDesc"`
		} `json:"status"`
	}
	if err := resp.Decode(&e); err != nil {
		return ""
	}
	switch {
	case e.Error != "":
		return e.Error + " " + e.ErrorDescription
	case e.Status.StatusCode != "":
		return e.Status.StatusCode + " " + e.Status.StatusDesc
	}
	return ""
}
