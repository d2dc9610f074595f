package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := New(reg)

	m.RecordCommand("createOrder", 0.001)
	m.RecordCommand("createOrder", 0.002)
	m.RecordCommand("print", 0.001)
	m.RecordRejected("cancelOrder")
	m.RecordETAUpdates(3)
	m.RecordDelivered(2)
	m.SetActiveOrders(5)
	m.RecordPublish(true)
	m.RecordPublish(false)
	m.RecordPublish(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commands.WithLabelValues("createOrder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("cancelOrder")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.etaUpdates))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.delivered))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.activeOrders))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.published.WithLabelValues("acked")))

	want := `
# HELP gator_active_orders Number of orders currently scheduled.
# TYPE gator_active_orders gauge
gator_active_orders 5
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "gator_active_orders"))
}

func TestNilRegistererSkipsRegistration(t *testing.T) {
	m := New(nil)
	m.RecordDelivered(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.delivered))
}
