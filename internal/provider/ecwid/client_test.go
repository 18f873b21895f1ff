package ecwid

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payrelay/internal/config"
	"payrelay/internal/domain/payment"
	"payrelay/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCfg(baseURL string) config.Cfg {
	return config.Cfg{
		HTTP:  config.HTTPCfg{ClientTimeout: time.Second},
		Ecwid: config.EcwidCfg{BaseURL: baseURL, StoreID: "1003", APIToken: "secret_abc"},
	}
}

func TestPushStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v3/1003/orders/abc123/payment_status", r.URL.Path)
		assert.Equal(t, "Bearer secret_abc", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"paymentStatus":"PAID"}`, string(b))
		_, _ = w.Write([]byte(`{"updateCount":1}`))
	}))
	defer srv.Close()

	err := New(testCfg(srv.URL), nil).PushStatus(context.Background(), "abc123", payment.StorefrontPaid)
	require.NoError(t, err)
}

func TestPushStatus_EscapesOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/1003/orders/a%2Fb/payment_status", r.URL.EscapedPath())
	}))
	defer srv.Close()

	require.NoError(t, New(testCfg(srv.URL), nil).PushStatus(context.Background(), "a/b", payment.StorefrontCancelled))
}

func TestPushStatus_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessage":"Order not found","errorCode":"ORDER_NOT_FOUND"}`))
	}))
	defer srv.Close()

	err := New(testCfg(srv.URL), nil).PushStatus(context.Background(), "missing", payment.StorefrontPaid)
	require.Error(t, err)
	assert.Equal(t, provider.ErrStatusPushFailed, provider.Code(err))
	assert.NotContains(t, err.Error(), "secret_abc")
}

func TestPushStatus_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	err := New(testCfg(srv.URL), nil).PushStatus(context.Background(), "abc123", payment.StorefrontPaid)
	require.Error(t, err)
	assert.Equal(t, provider.ErrProviderDown, provider.Code(err))
}
