package ticket

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifyPrivately(t *testing.T) {
	fs := newFakeSession()
	n := NewNotifier(testLogger(), fs)
	ctx := context.Background()

	require.True(t, n.NotifyPrivately(ctx, "user-1", "merhaba"))

	sent := fs.sentTo("dm-user-1")
	require.Len(t, sent, 1)
	require.Equal(t, "merhaba", sent[0].Content)
}

func TestNotifyPrivatelyClosedDMs(t *testing.T) {
	fs := newFakeSession()
	fs.dmFail = true
	n := NewNotifier(testLogger(), fs)

	require.False(t, n.NotifyPrivately(context.Background(), "user-1", "merhaba"))
}

func TestDeliverWithFallbackDirect(t *testing.T) {
	fs := newFakeSession()
	n := NewNotifier(testLogger(), fs)

	outcome := n.DeliverWithFallback(context.Background(), "user-1", "özet", nil, "origin-1")
	require.Equal(t, OutcomeDirect, outcome)
	require.Len(t, fs.sentTo("dm-user-1"), 1)
	require.Empty(t, fs.sentTo("origin-1"))
}

func TestDeliverWithFallbackRespondersInOrder(t *testing.T) {
	fs := newFakeSession()
	fs.dmFail = true
	n := NewNotifier(testLogger(), fs)

	var attempts []string
	responders := []Responder{
		ResponderFunc{
			ResponderName: "first",
			Fn: func(content string) error {
				attempts = append(attempts, "first")
				return fmt.Errorf("nope")
			},
		},
		ResponderFunc{
			ResponderName: "second",
			Fn: func(content string) error {
				attempts = append(attempts, "second")
				return nil
			},
		},
		ResponderFunc{
			ResponderName: "third",
			Fn: func(content string) error {
				attempts = append(attempts, "third")
				return nil
			},
		},
	}

	outcome := n.DeliverWithFallback(context.Background(), "user-1", "özet", responders, "origin-1")
	require.Equal(t, OutcomeResponder, outcome)

	// Responders run in order and the chain stops at the first success.
	require.Equal(t, []string{"first", "second"}, attempts)
	require.Empty(t, fs.sentTo("origin-1"))
}

func TestDeliverWithFallbackOriginChannel(t *testing.T) {
	fs := newFakeSession()
	fs.dmFail = true
	n := NewNotifier(testLogger(), fs)

	responders := []Responder{
		ResponderFunc{ResponderName: "broken", Fn: func(string) error { return fmt.Errorf("nope") }},
	}

	outcome := n.DeliverWithFallback(context.Background(), "user-1", "özet", responders, "origin-1")
	require.Equal(t, OutcomeOrigin, outcome)

	sent := fs.sentTo("origin-1")
	require.Len(t, sent, 1)

	// The visible fallback is annotated for the recipient.
	require.Equal(t, "<@user-1> özet", sent[0].Content)
}

func TestDeliverWithFallbackExhausted(t *testing.T) {
	fs := newFakeSession()
	fs.dmFail = true
	fs.sendFail["origin-1"] = true
	n := NewNotifier(testLogger(), fs)

	outcome := n.DeliverWithFallback(context.Background(), "user-1", "özet", nil, "origin-1")
	require.Equal(t, OutcomeLost, outcome)
}

func TestPostTransient(t *testing.T) {
	fs := newFakeSession()
	n := NewNotifier(testLogger(), fs)

	require.NoError(t, n.PostTransient(context.Background(), "chan-1", "hatırlatma", time.Millisecond))

	sent := fs.sentTo("chan-1")
	require.Len(t, sent, 1)
	require.Equal(t, "hatırlatma", sent[0].Content)

	// The message is removed once its lifetime elapses.
	require.Eventually(t, func() bool {
		return len(fs.removed()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPostTransientSendFails(t *testing.T) {
	fs := newFakeSession()
	fs.sendFail["chan-1"] = true
	n := NewNotifier(testLogger(), fs)

	err := n.PostTransient(context.Background(), "chan-1", "hatırlatma", time.Millisecond)
	require.Error(t, err)
	require.Empty(t, fs.removed())
}
