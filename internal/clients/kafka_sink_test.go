package clients

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestNewKafkaSink(t *testing.T) {
	_, err := NewKafkaSink(nil, "storefront.events", quietLogger())
	assert.Error(t, err)

	// kgo connects lazily, so an unreachable seed is fine until something is produced.
	sink, err := NewKafkaSink([]string{"127.0.0.1:1"}, "storefront.events", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, "storefront.events", sink.topic)
	assert.NoError(t, sink.Close(), "nothing buffered, flush returns at once")
}

func TestKafkaSinkForwardDoesNotBlockWhenBrokerIsDown(t *testing.T) {
	sink, err := newKafkaSink([]string{"127.0.0.1:1"}, "storefront.events", quietLogger(), kgo.MaxBufferedRecords(2))
	require.NoError(t, err)
	sink.flushTimeout = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			sink.Forward("orders:new", []byte(`{"event":"orders:new","data":{}}`))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Forward blocked once the producer buffer was full")
	}

	assert.Error(t, sink.Close(), "buffered records cannot be flushed to a dead broker")
}
