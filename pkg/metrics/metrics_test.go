package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })

	// registering twice on the same registry must fail loudly
	require.Panics(t, func() { RegisterCollectors(reg) })

	Fallbacks.WithLabelValues("qa", "rule_based").Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(Fallbacks.WithLabelValues("qa", "rule_based")))
}
