package auth

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSinkCountsEvents(t *testing.T) {
	registry := prometheus.NewRegistry()
	sink := NewMetricsSink(registry)

	ctx := context.Background()
	require.NoError(t, sink.Record(ctx, ActivityEvent{EventType: ActivityEventSignInSuccess}))
	require.NoError(t, sink.Record(ctx, ActivityEvent{EventType: ActivityEventSignInSuccess}))
	require.NoError(t, sink.Record(ctx, ActivityEvent{EventType: ActivityEventSignInFailure}))

	success := testutil.ToFloat64(sink.events.WithLabelValues(string(ActivityEventSignInSuccess)))
	failure := testutil.ToFloat64(sink.events.WithLabelValues(string(ActivityEventSignInFailure)))

	assert.Equal(t, float64(2), success)
	assert.Equal(t, float64(1), failure)
}
