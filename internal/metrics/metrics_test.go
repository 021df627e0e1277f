package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Operation(t *testing.T) {
	t.Parallel()
	p := New()

	p.Operation("redeem", OutcomeOK)
	p.Operation("redeem", OutcomeOK)
	p.Operation("redeem", OutcomeDenied)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.operations.WithLabelValues("redeem", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.operations.WithLabelValues("redeem", OutcomeDenied)))
}

func TestPrometheus_Purged(t *testing.T) {
	t.Parallel()
	p := New()

	p.Purged(3)
	p.Purged(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(p.purged))
}

func TestPrometheus_Handler(t *testing.T) {
	t.Parallel()
	p := New()
	p.Operation("issue", OutcomeOK)
	p.CipherDuration("encrypt", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `kapu_recovery_operations_total{operation="issue",outcome="ok"} 1`))
	assert.Contains(t, body, "kapu_recovery_kdf_duration_seconds_bucket")
	assert.Contains(t, body, "go_goroutines")
}
