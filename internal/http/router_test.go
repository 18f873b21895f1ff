package httpx

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"payrelay/internal/config"
	"payrelay/internal/crypto"
	domain "payrelay/internal/domain/payment"
	"payrelay/internal/metrics"
	"payrelay/internal/provider"
	"payrelay/internal/provider/payu"
	"payrelay/internal/services/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type processorMock struct{ mock.Mock }

func (m *processorMock) Name() string { return "payu" }

func (m *processorMock) Authorize(ctx context.Context) (*provider.AccessToken, error) {
	args := m.Called(ctx)
	tok, _ := args.Get(0).(*provider.AccessToken)
	return tok, args.Error(1)
}

func (m *processorMock) CreateOrder(ctx context.Context, token string, req provider.OrderReq) (*provider.OrderResp, error) {
	args := m.Called(ctx, token, req)
	out, _ := args.Get(0).(*provider.OrderResp)
	return out, args.Error(1)
}

type storefrontMock struct{ mock.Mock }

func (m *storefrontMock) Name() string { return "ecwid" }

func (m *storefrontMock) PushStatus(ctx context.Context, orderID string, status domain.StorefrontStatus) error {
	return m.Called(ctx, orderID, status).Error(0)
}

const (
	secret   = "ecwid-shared-secret"
	redirect = "https://merch-prod.snd.payu.com/pay/?orderId=ABC&token=xyz"
	checkout = `{"order":{"orderNumber":"1001","currency":"PLN","total":49.00,"id":"abc123","items":[{"name":"Candle","price":49.00,"quantity":1}]}}`
)

func testCfg() config.Cfg {
	return config.Cfg{
		App: config.AppCfg{
			Env:              "test",
			PublicBaseURL:    "https://relay.example.com",
			DefaultReturnURL: "https://shop.example.com/?payment_success=true",
			CustomerIP:       "127.0.0.1",
			CorrelationKey:   config.CorrelateByID,
		},
		HTTP: config.HTTPCfg{ClientTimeout: time.Second},
		PayU: config.PayUCfg{BaseURL: "http://payu.invalid", PosID: "145227"},
		Sec:  config.SecurityCfg{SigningSecret: secret},
	}
}

func newRouter(cfg config.Cfg, proc provider.PaymentProcessor, sf provider.Storefront) http.Handler {
	m := metrics.New()
	return NewRouter(RouterDependencies{
		Config:         cfg,
		PaymentService: payment.NewService(cfg, proc, sf, m),
		Metrics:        m,
	})
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPay(t *testing.T) {
	sig, err := crypto.Sign([]byte(checkout), secret)
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		sig        string
		setup      func(*processorMock)
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{
			name: "signed checkout",
			body: checkout,
			sig:  sig,
			setup: func(p *processorMock) {
				p.On("Authorize", mock.Anything).Return(&provider.AccessToken{Token: "tok"}, nil)
				p.On("CreateOrder", mock.Anything, "tok", mock.Anything).Return(&provider.OrderResp{RedirectURI: redirect}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"redirectUrl":"` + redirect + `"}`,
			wantCalls:  1,
		},
		{
			name:       "bad signature",
			body:       checkout,
			sig:        "AAAA",
			setup:      func(*processorMock) {},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "invalid order",
			body:       `{"order":{}}`,
			setup:      func(*processorMock) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "token exchange fails",
			body: checkout,
			setup: func(p *processorMock) {
				p.On("Authorize", mock.Anything).Return(nil, &provider.ProviderError{Code: provider.ErrAuthFailed, Message: "client_secret=leak"})
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Payment error\n",
			wantCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &processorMock{}
			tt.setup(proc)
			h := newRouter(testCfg(), proc, &storefrontMock{})

			headers := map[string]string{"Content-Type": "application/json"}
			if tt.sig != "" {
				headers["X-Ecwid-Signature"] = tt.sig
			}
			rec := do(h, http.MethodPost, "/pay", tt.body, headers)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				if strings.HasPrefix(tt.wantBody, "{") {
					assert.JSONEq(t, tt.wantBody, rec.Body.String())
				} else {
					assert.Equal(t, tt.wantBody, rec.Body.String())
				}
			}
			assert.NotContains(t, rec.Body.String(), "leak")
			proc.AssertNumberOfCalls(t, "Authorize", tt.wantCalls)
		})
	}
}

func TestNotify(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*storefrontMock)
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{
			name: "completed",
			body: `{"order":{"extOrderId":"abc123","status":"COMPLETED"}}`,
			setup: func(s *storefrontMock) {
				s.On("PushStatus", mock.Anything, "abc123", domain.StorefrontPaid).Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "OK",
			wantCalls:  1,
		},
		{
			name:       "missing ext order id",
			body:       `{"order":{"orderId":"X","status":"COMPLETED"}}`,
			setup:      func(*storefrontMock) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not json",
			body:       `status=COMPLETED`,
			setup:      func(*storefrontMock) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "storefront down",
			body: `{"order":{"extOrderId":"abc123","status":"REJECTED"}}`,
			setup: func(s *storefrontMock) {
				s.On("PushStatus", mock.Anything, "abc123", domain.StorefrontCancelled).Return(errors.New("503"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := &storefrontMock{}
			tt.setup(sf)
			h := newRouter(testCfg(), &processorMock{}, sf)

			rec := do(h, http.MethodPost, "/notify", tt.body, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			sf.AssertNumberOfCalls(t, "PushStatus", tt.wantCalls)
		})
	}
}

func TestNotify_SignedWebhooks(t *testing.T) {
	cfg := testCfg()
	cfg.PayU.SecondKey = "13a980d4f851f3d9a1cfc792fb1f5e50"
	body := `{"order":{"extOrderId":"abc123","status":"COMPLETED"}}`
	sum := md5.Sum([]byte(body + cfg.PayU.SecondKey))

	sf := &storefrontMock{}
	sf.On("PushStatus", mock.Anything, "abc123", domain.StorefrontPaid).Return(nil)
	m := metrics.New()
	h := NewRouter(RouterDependencies{
		Config:           cfg,
		PaymentService:   payment.NewService(cfg, &processorMock{}, sf, m),
		Metrics:          m,
		WebhookValidator: payu.New(cfg, m),
		WebhookHeader:    payu.SignatureHeader,
	})

	rec := do(h, http.MethodPost, "/notify", body, map[string]string{
		payu.SignatureHeader: "sender=checkout;signature=" + hex.EncodeToString(sum[:]) + ";algorithm=MD5;content=DOCUMENT",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, "/notify", body, map[string]string{
		payu.SignatureHeader: "sender=checkout;signature=00000000000000000000000000000000;algorithm=MD5",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	sf.AssertNumberOfCalls(t, "PushStatus", 1)
}

func TestInfoHealthMetrics(t *testing.T) {
	h := newRouter(testCfg(), &processorMock{}, &storefrontMock{})

	rec := do(h, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())

	rec = do(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","env":"test"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	b, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(b), `payrelay_http_requests_total{route="/health",status="200"} 1`)
}

func TestPanicIsIsolated(t *testing.T) {
	proc := &processorMock{}
	proc.On("Authorize", mock.Anything).Panic("boom").Once()
	proc.On("Authorize", mock.Anything).Return(&provider.AccessToken{Token: "tok"}, nil)
	proc.On("CreateOrder", mock.Anything, "tok", mock.Anything).Return(&provider.OrderResp{RedirectURI: redirect}, nil)
	h := newRouter(testCfg(), proc, &storefrontMock{})

	rec := do(h, http.MethodPost, "/pay", checkout, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(h, http.MethodPost, "/pay", checkout, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
