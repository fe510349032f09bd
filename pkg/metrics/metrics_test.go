package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveReload(t *testing.T) {
	okBefore := testutil.ToFloat64(Reloads.WithLabelValues("yaml", "success"))
	failBefore := testutil.ToFloat64(Reloads.WithLabelValues("yaml", "failure"))

	ObserveReload("yaml", nil, time.Millisecond)
	ObserveReload("yaml", errors.New("boom"), time.Millisecond)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(Reloads.WithLabelValues("yaml", "success")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(Reloads.WithLabelValues("yaml", "failure")))
}

func TestTimer(t *testing.T) {
	timer := NewTimer("reload")
	time.Sleep(time.Millisecond)

	assert.Equal(t, "reload", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
}
