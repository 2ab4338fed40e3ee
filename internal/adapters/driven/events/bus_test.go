package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

func event(t domain.EventType, docID string) domain.Event {
	return domain.Event{
		ID:    "evt-" + docID,
		Type:  t,
		DocID: docID,
		At:    time.Now(),
	}
}

func TestBus_PublishAndSubscribe(t *testing.T) {
	bus := NewBus(Config{})
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(event(domain.EventDocumentSubmitted, "doc-1"))

	select {
	case got := <-ch:
		assert.Equal(t, domain.EventDocumentSubmitted, got.Type)
		assert.Equal(t, "doc-1", got.DocID)
	case <-time.After(time.Second):
		t.Fatal("expected event on subscriber channel")
	}
}

func TestBus_Subscribe_TypeFilter(t *testing.T) {
	bus := NewBus(Config{})
	defer bus.Close()

	ch, cancel := bus.Subscribe(domain.EventExportReady)
	defer cancel()

	bus.Publish(event(domain.EventDocumentSubmitted, "doc-1"))
	bus.Publish(event(domain.EventExportReady, "doc-1"))

	select {
	case got := <-ch:
		assert.Equal(t, domain.EventExportReady, got.Type)
	case <-time.After(time.Second):
		t.Fatal("expected filtered event on subscriber channel")
	}
	assert.Empty(t, ch)
}

func TestBus_Publish_FanOut(t *testing.T) {
	bus := NewBus(Config{})
	defer bus.Close()

	first, cancelFirst := bus.Subscribe()
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe()
	defer cancelSecond()

	bus.Publish(event(domain.EventStatusChanged, "doc-1"))

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
}

func TestBus_Publish_DropsWhenBufferFull(t *testing.T) {
	bus := NewBus(Config{BufferSize: 1})
	defer bus.Close()

	_, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(event(domain.EventStatusChanged, "doc-1"))
	bus.Publish(event(domain.EventStatusChanged, "doc-2"))
	bus.Publish(event(domain.EventStatusChanged, "doc-3"))

	assert.Equal(t, uint64(2), bus.Dropped())
}

func TestBus_Cancel_RemovesSubscription(t *testing.T) {
	bus := NewBus(Config{})
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()

	bus.Publish(event(domain.EventStatusChanged, "doc-1"))

	_, open := <-ch
	assert.False(t, open, "cancel should close the channel")
	assert.Equal(t, uint64(0), bus.Dropped())
}

func TestBus_Cancel_Twice(t *testing.T) {
	bus := NewBus(Config{})
	defer bus.Close()

	_, cancel := bus.Subscribe()
	cancel()
	cancel()
}

func TestBus_Close_ClosesSubscriberChannels(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus(Config{})
	ch, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ch {
		}
	}()

	bus.Publish(event(domain.EventStatusChanged, "doc-1"))
	require.NoError(t, bus.Close())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drain goroutine should exit once the bus closes")
	}

	// Publishing and closing after Close are no-ops.
	bus.Publish(event(domain.EventStatusChanged, "doc-2"))
	require.NoError(t, bus.Close())
}

func TestBus_Subscribe_AfterClose(t *testing.T) {
	bus := NewBus(Config{})
	require.NoError(t, bus.Close())

	ch, cancel := bus.Subscribe()
	defer cancel()

	_, open := <-ch
	assert.False(t, open, "subscription after close gets a closed channel")
}

func TestBus_Concurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus(Config{BufferSize: 256})
	defer bus.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				bus.Publish(event(domain.EventStatusChanged, "doc-1"))
				return
			}
			ch, cancel := bus.Subscribe(domain.EventStatusChanged)
			defer cancel()
			select {
			case <-ch:
			default:
			}
		}(i)
	}
	wg.Wait()
}
