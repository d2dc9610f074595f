package script

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gator/command"
	"gator/service"
)

func run(t *testing.T, input string) string {
	t.Helper()
	svc, err := service.NewOrderService(service.Options{Logger: testr.New(t)})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewRunner(svc, testr.New(t)).Run(context.Background(), strings.NewReader(input), &out))
	return out.String()
}

func TestRunTranscript(t *testing.T) {
	input := `createOrder(1, 0, 50, 10)
createOrder(2, 0, 25, 5)

createOrder(3, 0, 40, 4)
createOrder(4, 1, 500, 2)
print(0, 100)
getRankOfOrder(3)
cancelOrder(2, 3)
bogus(1)
updateTime(9, 3, 1)
Quit()
createOrder(5, 90, 10, 1)
`
	want := strings.Join([]string{
		"Order 1 has been created - ETA: 10",
		"Order 2 has been created - ETA: 25",
		"Order 3 has been created - ETA: 24",
		"Updated ETAs: [2: 33]",
		"Order 4 has been created - ETA: 22",
		"Updated ETAs: [2: 29], [3: 38]",
		"Orders to be delivered: [1, 4, 2, 3]",
		"Order 3 will be delivered after 3 orders.",
		"Order 2 has been canceled",
		"Updated ETAs: ",
		"Cannot update. Order 9 does not exist.",
		"Order 1 has been delivered at time 10",
		"Order 4 has been delivered at time 22",
		"Order 3 has been delivered at time 38",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, run(t, input)); diff != "" {
		t.Fatalf("transcript mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWithoutQuit(t *testing.T) {
	assert.Equal(t, "Order 7 has been created - ETA: 3\n", run(t, "createOrder(7, 0, 10, 3)"))
}

type closedExecutor struct{}

func (closedExecutor) Execute(context.Context, command.Command) ([]string, error) {
	return nil, service.ErrClosed
}

func TestRunStopsOnExecutorError(t *testing.T) {
	err := NewRunner(closedExecutor{}, testr.New(t)).Run(context.Background(), strings.NewReader("print(1)\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, service.ErrClosed)
}
