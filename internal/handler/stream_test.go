package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-journal/internal/domain"
	"github.com/pkordes/trip-journal/internal/handler"
	"github.com/pkordes/trip-journal/internal/watch"
)

// readEvent returns the data of the next "trips" event.
func readEvent(t *testing.T, r *bufio.Reader) []handler.Trip {
	t.Helper()
	var data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" && data != "" {
			break
		}
		if rest, ok := strings.CutPrefix(line, "data: "); ok {
			data = rest
		}
	}
	var trips []handler.Trip
	require.NoError(t, json.Unmarshal([]byte(data), &trips))
	return trips
}

func TestStreamTrips(t *testing.T) {
	topic := watch.NewTopic[[]domain.Trip]()
	t.Cleanup(topic.Close)
	svc := &mockTripServicer{
		observe: func(ctx context.Context) (*watch.Subscription[[]domain.Trip], error) {
			return topic.Subscribe(ctx, []domain.Trip{tripFixture()}), nil
		},
	}
	srv := httptest.NewServer(handler.NewServer(handler.Services{Trips: svc}).Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/trips/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	body := bufio.NewReader(resp.Body)

	first := readEvent(t, body)
	require.Len(t, first, 1)
	assert.Equal(t, "Paris", first[0].Title)

	second := tripFixture()
	second.ID, second.Title = 8, "Rome"
	require.Eventually(t, topic.Active, time.Second, 5*time.Millisecond)
	topic.Publish([]domain.Trip{tripFixture(), second})

	next := readEvent(t, body)
	require.Len(t, next, 2)
	assert.Equal(t, "Rome", next[1].Title)
}

func TestStreamTrips_SubscriptionEndsWithRequest(t *testing.T) {
	topic := watch.NewTopic[[]domain.Trip]()
	t.Cleanup(topic.Close)
	svc := &mockTripServicer{
		observe: func(ctx context.Context) (*watch.Subscription[[]domain.Trip], error) {
			return topic.Subscribe(ctx, nil), nil
		},
	}
	srv := httptest.NewServer(handler.NewServer(handler.Services{Trips: svc}).Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/trips/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Empty(t, readEvent(t, bufio.NewReader(resp.Body)))
	require.Equal(t, 1, topic.Len())

	cancel()
	resp.Body.Close()

	assert.Eventually(t, func() bool { return topic.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamTrips_ObserveError(t *testing.T) {
	svc := &mockTripServicer{
		observe: func(context.Context) (*watch.Subscription[[]domain.Trip], error) {
			return nil, domain.ErrStoreUnavailable
		},
	}

	rec := serve(t, handler.Services{Trips: svc}, http.MethodGet, "/trips/stream", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStreamTrips_CloseStreams(t *testing.T) {
	topic := watch.NewTopic[[]domain.Trip]()
	t.Cleanup(topic.Close)
	svc := &mockTripServicer{
		observe: func(ctx context.Context) (*watch.Subscription[[]domain.Trip], error) {
			return topic.Subscribe(ctx, nil), nil
		},
	}
	h := handler.NewServer(handler.Services{Trips: svc})
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/trips/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	body := bufio.NewReader(resp.Body)
	readEvent(t, body)

	h.CloseStreams()
	h.CloseStreams()

	_, err = body.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)
	assert.Eventually(t, func() bool { return topic.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
