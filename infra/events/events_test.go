package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"gator/domain/schedule"
)

func TestEncodersAgree(t *testing.T) {
	ev := ETAUpdated("cancelOrder(2, 3)", 3, []schedule.ETAUpdate{{ID: 3, ETA: 24}})

	for _, format := range []string{"proto", "json"} {
		t.Run(format, func(t *testing.T) {
			enc, err := NewEncoder(format)
			require.NoError(t, err)

			b, err := enc.Encode(ev)
			require.NoError(t, err)
			got, err := enc.Decode(b)
			require.NoError(t, err)
			assert.True(t, proto.Equal(ev, got))
		})
	}

	_, err := NewEncoder("xml")
	assert.Error(t, err)
}

func TestDeliveredFields(t *testing.T) {
	ev := Delivered(9, schedule.Delivery{ID: 1, ETA: 10, Duration: 10}).AsMap()
	assert.Equal(t, TypeDelivered, ev["type"])
	assert.Equal(t, 9.0, ev["seq"])
	assert.Equal(t, 1.0, ev["id"])
	assert.Equal(t, 10.0, ev["eta"])
}

func TestJSONIsReadable(t *testing.T) {
	b, err := JSONEncoder{}.Encode(Delivered(1, schedule.Delivery{ID: 4, ETA: 22, Duration: 2}))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"order.delivered"`)
	assert.Equal(t, "application/json", JSONEncoder{}.ContentType())
}
