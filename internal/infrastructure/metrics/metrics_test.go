package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestLookupsTotal_IncrementsByLabel(t *testing.T) {
	before := counterValue(t, LookupsTotal.WithLabelValues("A", "NOERROR"))
	LookupsTotal.WithLabelValues("A", "NOERROR").Inc()
	require.Equal(t, before+1, counterValue(t, LookupsTotal.WithLabelValues("A", "NOERROR")))
}

func TestServerHealthy_ReflectsLastSet(t *testing.T) {
	ServerHealthy.WithLabelValues("198.51.100.1").Set(1)
	require.Equal(t, float64(1), counterValue(t, ServerHealthy.WithLabelValues("198.51.100.1")))

	ServerHealthy.WithLabelValues("198.51.100.1").Set(0)
	require.Equal(t, float64(0), counterValue(t, ServerHealthy.WithLabelValues("198.51.100.1")))
}

func TestCacheOperations_LabelsByTierSectionResult(t *testing.T) {
	before := counterValue(t, CacheOperations.WithLabelValues("local", "answer", "hit"))
	CacheOperations.WithLabelValues("local", "answer", "hit").Inc()
	require.Equal(t, before+1, counterValue(t, CacheOperations.WithLabelValues("local", "answer", "hit")))
}

func TestEscalationsAndRetriesLimitExceeded_AreCounters(t *testing.T) {
	before := counterValue(t, EscalationsTotal)
	EscalationsTotal.Inc()
	require.Equal(t, before+1, counterValue(t, EscalationsTotal))

	beforeRetries := counterValue(t, RetriesLimitExceededTotal)
	RetriesLimitExceededTotal.Inc()
	require.Equal(t, beforeRetries+1, counterValue(t, RetriesLimitExceededTotal))
}
