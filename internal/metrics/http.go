package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests no route handled, so scanners probing random paths
// cannot grow the label set.
const unmatchedRoute = "unmatched"

// HTTPMetricsMiddleware records request count and latency per method, route pattern and
// status code. Requests whose path is listed in skip (usually the health probes) are not
// recorded. If the instruments cannot be created the middleware only calls c.Next.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string, skip ...string) gin.HandlerFunc {
	meter := meterProvider.Meter(namespace)

	requests, err := meter.Int64Counter(
		namespace+"_http_requests_total",
		metric.WithDescription("Total number of issuer HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return passthrough
	}

	durations, err := meter.Float64Histogram(
		namespace+"_http_request_duration_seconds",
		metric.WithDescription("Issuer HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return passthrough
	}

	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", routeLabel(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		)
		requests.Add(c.Request.Context(), 1, attrs)
		durations.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
	}
}

func passthrough(c *gin.Context) {
	c.Next()
}

func routeLabel(fullPath string) string {
	if fullPath == "" {
		return unmatchedRoute
	}
	return fullPath
}
