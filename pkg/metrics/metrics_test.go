package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("aegis", reg)

	m.TriageDecisions.WithLabelValues("2", "rules").Inc()
	m.TriageRejections.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TriageDecisions.WithLabelValues("2", "rules")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TriageRejections))

	// a second set on a separate registry must not collide
	require.NotPanics(t, func() { New("aegis", prometheus.NewRegistry()) })
}
