package entities

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTicketChannelName(t *testing.T) {
	require.Equal(t, "talep-1-wolf", TicketChannelName(1, "wolf"))
	require.Equal(t, "talep-42-kerem", TicketChannelName(42, "kerem"))
}

func TestClosedChannelName(t *testing.T) {
	require.Equal(t, "kapali-1-wolf", ClosedChannelName("talep-1-wolf"))

	// A name without the open prefix is still prefixed, not mangled.
	require.Equal(t, "kapali-other", ClosedChannelName("other"))
}

func TestIsTicketChannelName(t *testing.T) {
	require.True(t, IsTicketChannelName("talep-1-wolf"))
	require.False(t, IsTicketChannelName("kapali-1-wolf"))
	require.False(t, IsTicketChannelName("genel-sohbet"))
}

func TestFindCategory(t *testing.T) {
	for _, c := range Categories {
		got, ok := FindCategory(c.Name)
		require.True(t, ok)
		require.Equal(t, c, got)
	}

	_, ok := FindCategory("Bilinmeyen")
	require.False(t, ok)
}
