package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/helios-protocol/microblock/foundation/blockchain/fault"
	"github.com/helios-protocol/microblock/foundation/blockchain/fork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestObserveSign(t *testing.T) {
	start := time.Now().Add(-time.Second)

	if inc := delta(t, blocksTotal.WithLabelValues("photon"), func() {
		ObserveSign(fork.Photon, nil, start)
	}); inc != 1 {
		t.Fatalf("expected photon block counter increment, got %v", inc)
	}

	err := fault.New(fault.Validation, "normalize", "parentHash", errors.New("field is required"))
	if inc := delta(t, failuresTotal.WithLabelValues("validation"), func() {
		ObserveSign(fork.Photon, err, start)
	}); inc != 1 {
		t.Fatalf("expected validation failure counter increment, got %v", inc)
	}

	if inc := delta(t, blocksTotal.WithLabelValues("photon"), func() {
		ObserveSign(fork.Photon, err, start)
	}); inc != 0 {
		t.Fatalf("expected no block counter increment on failure, got %v", inc)
	}
}

func TestObserveRequest(t *testing.T) {
	start := time.Now()

	if inc := delta(t, requestsTotal.WithLabelValues("/v1/block/sign", "200"), func() {
		ObserveRequest("/v1/block/sign", http.StatusOK, start)
	}); inc != 1 {
		t.Fatalf("expected request counter increment, got %v", inc)
	}

	if inc := delta(t, panicsTotal, AddPanic); inc != 1 {
		t.Fatalf("expected panic counter increment, got %v", inc)
	}
}
