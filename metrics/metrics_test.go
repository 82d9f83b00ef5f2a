package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSizesCalculatedCounts(t *testing.T) {
	c := SizesCalculated.WithLabelValues("Martingale", "loss")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("expected counter %v, got %v", before+1, got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	NextSize.WithLabelValues("Paroli").Set(40)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `gobs_next_size{strategy="Paroli"} 40`) {
		t.Fatalf("gauge missing from exposition:\n%s", body)
	}
}
