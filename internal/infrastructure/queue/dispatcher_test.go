package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
	block  chan struct{}
}

func (s *recordingSink) Record(_ context.Context, ev domain.SecurityEvent) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) snapshot() []domain.SecurityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SecurityEvent(nil), s.events...)
}

func TestAuditDispatcher_DeliversInOrderPerIdentity(t *testing.T) {
	sink := &recordingSink{}
	d := NewAuditDispatcher(3, sink, zerolog.Nop())
	d.Start()

	for i := 0; i < 20; i++ {
		for _, email := range []string{"ana@x.com", "bob@x.com"} {
			require.NoError(t, d.Record(context.Background(), domain.SecurityEvent{
				Type:      domain.EventLoginFailed,
				Email:     email,
				Operation: fmt.Sprintf("%d", i),
			}))
		}
	}
	require.NoError(t, d.Close(context.Background()))

	events := sink.snapshot()
	require.Len(t, events, 40)

	next := map[string]int{}
	for _, ev := range events {
		assert.Equal(t, fmt.Sprintf("%d", next[ev.Email]), ev.Operation, "out of order for %s", ev.Email)
		next[ev.Email]++
	}
}

func TestAuditDispatcher_RejectsAfterClose(t *testing.T) {
	d := NewAuditDispatcher(1, &recordingSink{}, zerolog.Nop())
	d.Start()
	require.NoError(t, d.Close(context.Background()))

	err := d.Record(context.Background(), domain.SecurityEvent{Email: "ana@x.com"})
	assert.True(t, errors.Is(err, ErrDispatcherClosed))
	// Closing twice is harmless.
	assert.NoError(t, d.Close(context.Background()))
}

func TestAuditDispatcher_FullQueue(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewAuditDispatcher(1, sink, zerolog.Nop())
	d.Start()

	var full bool
	for i := 0; i < channelBuffer+2; i++ {
		if err := d.Record(context.Background(), domain.SecurityEvent{Email: "ana@x.com"}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	assert.True(t, full, "expected the bounded queue to report back-pressure")

	close(sink.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}
