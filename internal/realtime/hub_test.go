package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHub_PublishToTableSubscribers(t *testing.T) {
	h := NewHub(0)
	donations, cancel := h.Subscribe("donations")
	defer cancel()
	centers, cancelCenters := h.Subscribe("centers")
	defer cancelCenters()

	require.True(t, h.Publish(context.Background(), Change{Table: "donations", Type: Insert, ID: "d-1"}))

	select {
	case c := <-donations:
		require.Equal(t, "d-1", c.ID)
		require.False(t, c.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
	require.Len(t, centers, 0)
}

func TestHub_ThrottlesBursts(t *testing.T) {
	h := NewHub(1)
	ctx := context.Background()
	require.True(t, h.Publish(ctx, Change{Table: "donations"}))
	require.False(t, h.Publish(ctx, Change{Table: "donations"}))
	require.Equal(t, int64(1), h.Throttled())
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(0)
	_, cancel := h.Subscribe("deliveries")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			h.Publish(context.Background(), Change{Table: "deliveries"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

func TestHub_CloseEndsSubscriptions(t *testing.T) {
	h := NewHub(0)
	ch, cancel := h.Subscribe("centers")
	h.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.NotPanics(t, cancel)
	require.False(t, h.Publish(context.Background(), Change{Table: "centers"}))
	require.Equal(t, 0, h.Subscribers("centers"))

	late, _ := h.Subscribe("centers")
	_, ok = <-late
	require.False(t, ok)
}

func TestServeSSE_StreamsChanges(t *testing.T) {
	h := NewHub(0)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/realtime/donations", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeSSE(rr, req, "donations", nil)
		close(done)
	}()

	require.Eventually(t, func() bool { return h.Subscribers("donations") == 1 }, time.Second, 5*time.Millisecond)
	h.Publish(context.Background(), Change{Table: "donations", Type: Update, ID: "d-9"})
	// даем потоку записать событие до отмены
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rr.Body.String()
	require.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(body, ": connected"))
	require.Contains(t, body, "event: update")
	require.Contains(t, body, `"id":"d-9"`)
}

func TestServeSSE_SkipsChangesTheSubscriberMayNotSee(t *testing.T) {
	h := NewHub(0)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/realtime/donations", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ServeSSE(rr, req, "donations", func(c Change) bool { return c.OrganizationID == "org-a" })
		close(done)
	}()

	require.Eventually(t, func() bool { return h.Subscribers("donations") == 1 }, time.Second, 5*time.Millisecond)
	h.Publish(context.Background(), Change{Table: "donations", Type: Insert, ID: "foreign", OrganizationID: "org-b"})
	h.Publish(context.Background(), Change{Table: "donations", Type: Insert, ID: "own", OrganizationID: "org-a", Users: []string{"donor-1"}})
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := rr.Body.String()
	require.Contains(t, body, `"id":"own"`)
	require.NotContains(t, body, "foreign")
	require.NotContains(t, body, "donor-1")
}
