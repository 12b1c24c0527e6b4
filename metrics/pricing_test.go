package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPricingMetricsCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPricingMetrics(reg)

	m.ObserveRequest(OpForward, "ok")
	m.ObserveRequest(OpForward, "ok")
	m.ObserveRequest(OpReverse, "not_found")
	m.ObserveRequest("", "")

	if got := testutil.ToFloat64(m.requests.WithLabelValues(OpForward, "ok")); got != 2 {
		t.Fatalf("expected forward/ok=2, got %f", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(OpReverse, "not_found")); got != 1 {
		t.Fatalf("expected reverse/not_found=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("unknown", "unknown")); got != 1 {
		t.Fatalf("expected unknown/unknown=1, got %f", got)
	}
}

func TestPricingMetricsExportsAndLoads(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPricingMetrics(reg)

	m.IncExport("pdf")
	m.ObserveCatalogLoad("file", nil)
	m.ObserveCatalogLoad("file", errors.New("boom"))
	m.AddLineItems(3)
	m.AddLineItems(0)

	if got := testutil.ToFloat64(m.exports.WithLabelValues("pdf")); got != 1 {
		t.Fatalf("expected pdf exports=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.catalogLoads.WithLabelValues("file", "error")); got != 1 {
		t.Fatalf("expected file/error=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.lineItems); got != 3 {
		t.Fatalf("expected 3 line items, got %f", got)
	}

	if n, err := testutil.GatherAndCount(reg); err != nil {
		t.Fatalf("gather metrics: %v", err)
	} else if n == 0 {
		t.Fatal("expected registered metrics to be gathered")
	}
}

func TestPricingMetricsNilSafe(t *testing.T) {
	var nilMetrics *PricingMetrics
	nilMetrics.ObserveRequest(OpForward, "ok")
	nilMetrics.IncExport("pdf")
	nilMetrics.ObserveCatalogLoad("file", nil)
	nilMetrics.AddLineItems(1)

	noop := NewPricingMetrics(nil)
	noop.ObserveRequest(OpBatch, "ok")
	noop.AddLineItems(2)
}
