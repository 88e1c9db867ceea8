package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialOptions(t *testing.T) {
	endpoint := func(e string) string { return "endpoint=" + e }
	insecure := func() string { return "insecure" }

	opts := dialOptions(Collector{Endpoint: "otel:4317"}, endpoint, insecure)
	assert.Equal(t, []string{"endpoint=otel:4317"}, opts)

	opts = dialOptions(Collector{Endpoint: "otel:4317", Insecure: true}, endpoint, insecure)
	assert.Equal(t, []string{"endpoint=otel:4317", "insecure"}, opts)
}

func TestFlush(t *testing.T) {
	var deadline time.Time
	err := flush(context.Background(), "spans", func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(flushTimeout), deadline, time.Second)

	err = flush(context.Background(), "logs", func(context.Context) error { return errors.New("collector gone") })
	assert.EqualError(t, err, "flush logs: collector gone")
}

func TestCollector_Describe(t *testing.T) {
	res, err := Collector{ServiceName: "storefront"}.describe()
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "storefront", attrs["service.name"])
	assert.Equal(t, ServiceVersion, attrs["service.version"])
}
