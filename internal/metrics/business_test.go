package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape renders the provider's registry in Prometheus exposition format.
func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

// assertMetricLine matches a sample by name, a partial label pattern and value. The
// exporter adds otel_scope_* labels, hence the regex.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	assert.Regexp(t, name+`\{[^}]*`+labels+`[^}]*\} `+value, output)
}

func newTestBusinessMetrics(t *testing.T, namespace string) (*Provider, BusinessMetrics) {
	t.Helper()
	provider, err := NewProvider(namespace)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	bm, err := NewBusinessMetrics(provider.MeterProvider(), namespace)
	require.NoError(t, err)
	return provider, bm
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, bm := newTestBusinessMetrics(t, "cardtoken_test")
	ctx := context.Background()

	bm.RecordOperation(ctx, ComponentTokenization, "tokenize", StatusSuccess)
	bm.RecordOperation(ctx, ComponentTokenization, "tokenize", StatusSuccess)
	bm.RecordOperation(ctx, ComponentTokenization, "tokenize", "network")
	bm.RecordOperation(ctx, ComponentIssuer, "create_session", StatusSuccess)

	output := scrape(t, provider)

	assertMetricLine(t, output, `cardtoken_test_operations_total`,
		`component="tokenization".*operation="tokenize".*status="success"`, `2`)
	assertMetricLine(t, output, `cardtoken_test_operations_total`,
		`component="tokenization".*operation="tokenize".*status="network"`, `1`)
	assertMetricLine(t, output, `cardtoken_test_operations_total`,
		`component="issuer".*operation="create_session".*status="success"`, `1`)
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, bm := newTestBusinessMetrics(t, "cardtoken_test")
	ctx := context.Background()

	bm.RecordDuration(ctx, ComponentIssuer, "create_session", 400*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, ComponentIssuer, "create_session", 600*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, ComponentIssuer, "tokenize", 3*time.Millisecond, "error")

	output := scrape(t, provider)

	assertMetricLine(t, output, `cardtoken_test_operation_duration_seconds_count`,
		`component="issuer".*operation="create_session".*status="success"`, `2`)
	assertMetricLine(t, output, `cardtoken_test_operation_duration_seconds_sum`,
		`component="issuer".*operation="create_session".*status="success"`, `1`)
	assertMetricLine(t, output, `cardtoken_test_operation_duration_seconds_bucket`,
		`component="issuer".*operation="tokenize".*status="error".*le="0.005"`, `1`)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()
	require.NotNil(t, bm)

	assert.NotPanics(t, func() {
		bm.RecordOperation(context.Background(), ComponentIssuer, "tokenize", StatusSuccess)
		bm.RecordDuration(context.Background(), ComponentIssuer, "tokenize", time.Second, "error")
	})
}
