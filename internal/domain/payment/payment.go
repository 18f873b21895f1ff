package payment

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount in smallest currency unit (cents)
type Money int64

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrLossyAmount    = errors.New("amount is not a whole number of minor units")
)

// FromMajor converts a major-unit amount (e.g. 19.99) into minor units.
// The arithmetic is exact, so 0.29 becomes 29 rather than 28; amounts finer
// than one minor unit (19.999) are rejected rather than rounded.
func FromMajor(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}
	if !IsWholeMinor(amount) {
		return 0, fmt.Errorf("%w: %s", ErrLossyAmount, amount.String())
	}
	rounded := amount.Mul(hundred).Truncate(0)
	if rounded.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("amount out of range: %s", amount.String())
	}
	return Money(rounded.IntPart()), nil
}

// IsWholeMinor reports whether amount*100 is an integer.
func IsWholeMinor(amount decimal.Decimal) bool {
	minor := amount.Mul(hundred)
	return minor.Equal(minor.Truncate(0))
}

// String renders minor units the way PayU expects them: an integer string.
func (m Money) String() string { return strconv.FormatInt(int64(m), 10) }

// ProcessorStatus is the order status reported by PayU notifications.
type ProcessorStatus string

const (
	ProcessorNew                    ProcessorStatus = "NEW"
	ProcessorPending                ProcessorStatus = "PENDING"
	ProcessorWaitingForConfirmation ProcessorStatus = "WAITING_FOR_CONFIRMATION"
	ProcessorCompleted              ProcessorStatus = "COMPLETED"
	ProcessorCanceled               ProcessorStatus = "CANCELED"
	ProcessorRejected               ProcessorStatus = "REJECTED"
)

// StorefrontStatus is Ecwid's payment status vocabulary.
type StorefrontStatus string

const (
	StorefrontPaid       StorefrontStatus = "PAID"
	StorefrontCancelled  StorefrontStatus = "CANCELLED"
	StorefrontIncomplete StorefrontStatus = "INCOMPLETE"
)

// MapStatus translates a processor status into the storefront vocabulary.
// It is total: unknown and empty statuses map to INCOMPLETE.
func MapStatus(s ProcessorStatus) StorefrontStatus {
	switch s {
	case ProcessorCompleted:
		return StorefrontPaid
	case ProcessorCanceled, ProcessorRejected:
		return StorefrontCancelled
	default:
		return StorefrontIncomplete
	}
}
