package notification

import (
	"testing"

	"payrelay/internal/domain/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	n, err := Parse([]byte(`{"order":{"orderId":"LDLW5N7MF4140324GUEST000P01","extOrderId":"abc123","status":"COMPLETED","totalAmount":"4900","currencyCode":"PLN"},"localReceiptDateTime":"2026-10-17T12:00:00.000+02:00"}`))
	require.NoError(t, err)

	id, err := n.ExtOrderID()
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, payment.StorefrontPaid, n.StorefrontStatus())
}

func TestMissingExtOrderID(t *testing.T) {
	for _, body := range []string{`{}`, `{"order":{"status":"COMPLETED"}}`, `{"order":{"extOrderId":"  "}}`} {
		n, err := Parse([]byte(body))
		require.NoError(t, err)
		_, err = n.ExtOrderID()
		assert.ErrorIs(t, err, ErrMissingExtOrderID, body)
	}
}

func TestAbsentStatus(t *testing.T) {
	n, err := Parse([]byte(`{"order":{"extOrderId":"abc123"}}`))
	require.NoError(t, err)
	assert.Equal(t, payment.StorefrontIncomplete, n.StorefrontStatus())
}

func TestParse_BadJSON(t *testing.T) {
	_, err := Parse([]byte(`{"order":`))
	assert.Error(t, err)
}
