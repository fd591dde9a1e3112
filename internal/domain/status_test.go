package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

func TestOrderStatus_Labels(t *testing.T) {
	want := map[domain.OrderStatus]string{
		domain.OrderStatusReceived:    "未",
		domain.OrderStatusPaidOnline:  "ネット決済済",
		domain.OrderStatusPaidInStore: "店頭支払い済",
		domain.OrderStatusHandedOver:  "お渡し済",
		domain.OrderStatusCancelled:   "キャンセル",
	}
	for status, label := range want {
		assert.Equal(t, label, status.Label(), status)
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, domain.OrderStatus("PENDING").Valid())
	assert.Empty(t, domain.OrderStatus("PENDING").Label())
}

func TestOrderStatus_Transitions(t *testing.T) {
	allowed := map[domain.OrderStatus][]domain.OrderStatus{
		domain.OrderStatusReceived: {
			domain.OrderStatusPaidOnline,
			domain.OrderStatusPaidInStore,
			domain.OrderStatusHandedOver,
			domain.OrderStatusCancelled,
		},
		domain.OrderStatusPaidOnline:  {domain.OrderStatusHandedOver, domain.OrderStatusCancelled},
		domain.OrderStatusPaidInStore: {domain.OrderStatusHandedOver, domain.OrderStatusCancelled},
		domain.OrderStatusHandedOver:  {},
		domain.OrderStatusCancelled:   {},
	}

	for _, from := range domain.AllStatuses {
		for _, to := range domain.AllStatuses {
			expected := false
			for _, a := range allowed[from] {
				if a == to {
					expected = true
				}
			}
			err := domain.ValidateTransition(from, to)
			if expected {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	}

	assert.True(t, domain.OrderStatusHandedOver.Terminal())
	assert.True(t, domain.OrderStatusCancelled.Terminal())
	assert.False(t, domain.OrderStatusPaidOnline.Terminal())
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.OrderStatus
	}{
		{raw: "RECEIVED", want: domain.OrderStatusReceived},
		{raw: "paid_online", want: domain.OrderStatusPaidOnline},
		{raw: " PAID_IN_STORE ", want: domain.OrderStatusPaidInStore},
		{raw: "お渡し済", want: domain.OrderStatusHandedOver},
		{raw: "キャンセル", want: domain.OrderStatusCancelled},
		{raw: "未", want: domain.OrderStatusReceived},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := domain.ParseStatus(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, raw := range []string{"", "1", "a", "SHIPPED"} {
		_, err := domain.ParseStatus(raw)
		assert.True(t, errors.Is(err, domain.ErrUnknownStatus), "raw %q", raw)
	}
}

func TestParseStoredStatus_Legacy(t *testing.T) {
	cases := map[string]domain.OrderStatus{
		"":            domain.OrderStatusReceived,
		"未":           domain.OrderStatusReceived,
		"1":           domain.OrderStatusReceived,
		"a":           domain.OrderStatusReceived,
		"A":           domain.OrderStatusReceived,
		"2":           domain.OrderStatusPaidOnline,
		"c":           domain.OrderStatusPaidInStore,
		"4":           domain.OrderStatusHandedOver,
		"e":           domain.OrderStatusCancelled,
		"ネット決済済":      domain.OrderStatusPaidOnline,
		"HANDED_OVER": domain.OrderStatusHandedOver,
	}
	for raw, want := range cases {
		got, err := domain.ParseStoredStatus(raw)
		require.NoError(t, err, "raw %q", raw)
		assert.Equal(t, want, got, "raw %q", raw)
	}

	_, err := domain.ParseStoredStatus("z")
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}
