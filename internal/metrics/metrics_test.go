package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCreditChargesLabels(t *testing.T) {
	c := CreditCharges.WithLabelValues("tokens", "ok")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("CreditCharges = %v, want %v", got, before+1)
	}
}

func TestCollectorsRegistered(t *testing.T) {
	Generations.WithLabelValues("done").Inc()
	if n := testutil.CollectAndCount(Generations); n < 1 {
		t.Errorf("CollectAndCount(Generations) = %d, want >= 1", n)
	}
}
