package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProviderStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want PaymentStatus
	}{
		{"confirmed", StatusConfirmed},
		{"CONFIRMED", StatusConfirmed},
		{" confirmed ", StatusConfirmed},
		{"cancelled", StatusFailed},
		{"failed", StatusFailed},
		{"pending", StatusPendingPayment},
		{"pending-payment", StatusPendingPayment},
		{"", ""},
		{"on-hold", PaymentStatus("on-hold")},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ParseProviderStatus(tt.raw), "raw=%q", tt.raw)
	}
}

func TestPaymentStatusTerminal(t *testing.T) {
	require.True(t, StatusConfirmed.Terminal())
	require.False(t, StatusPendingPayment.Terminal())
	require.False(t, StatusFailed.Terminal())
	require.False(t, StatusUnregistered.Terminal())
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full  string
		first string
		last  string
	}{
		{"Riya Sen", "Riya", "Sen"},
		{"Riya", "Riya", ""},
		{"  Riya   Kumari Sen ", "Riya", "Kumari Sen"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.full)
		require.Equal(t, tt.first, first, "full=%q", tt.full)
		require.Equal(t, tt.last, last, "full=%q", tt.full)
	}
}

func TestMerchTicket(t *testing.T) {
	id, ok := MerchTicket("tee")
	require.True(t, ok)
	require.Equal(t, TicketMerchTee, id)

	_, ok = MerchTicket("hoodie")
	require.False(t, ok)
}

func TestTicketCategoryCoversAllowedTickets(t *testing.T) {
	for _, id := range AllowedTicketIDs {
		_, ok := TicketCategory(id)
		require.True(t, ok, "ticket %d has no category", id)
	}
	_, ok := TicketCategory(9999)
	require.False(t, ok)
}
