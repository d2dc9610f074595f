package command

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want Command
	}{
		{"createOrder(1, 0, 30, 10)", Command{Kind: CreateOrder, Args: []int64{1, 0, 30, 10}}},
		{"  cancelOrder(2,6) ", Command{Kind: CancelOrder, Args: []int64{2, 6}}},
		{"updateTime(3, 1, 6)", Command{Kind: UpdateTime, Args: []int64{3, 1, 6}}},
		{"print(10, 20)", Command{Kind: PrintRange, Args: []int64{10, 20}}},
		{"print(4)", Command{Kind: PrintOrder, Args: []int64{4}}},
		{"getRankOfOrder(5)", Command{Kind: GetRankOfOrder, Args: []int64{5}}},
		{"Quit()", Command{Kind: Quit}},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, line := range []string{
		"createOrder(1, 0, 30, 10)",
		"print(10, 20)",
		"print(4)",
		"Quit()",
	} {
		c, err := Parse(line)
		require.NoError(t, err)
		assert.Equal(t, line, c.String())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		line string
		want error
	}{
		{"shipOrder(1)", ErrUnknownCommand},
		{"createOrder(1, 2)", ErrArity},
		{"print()", ErrArity},
		{"cancelOrder(1, x)", ErrSyntax},
		{"createOrder 1 2 3 4", ErrSyntax},
	}
	for _, tc := range cases {
		_, err := Parse(tc.line)
		assert.True(t, errors.Is(err, tc.want), "%q: got %v", tc.line, err)
	}
}

func TestMutating(t *testing.T) {
	assert.True(t, CreateOrder.Mutating())
	assert.True(t, UpdateTime.Mutating())
	assert.False(t, PrintRange.Mutating())
	assert.False(t, Quit.Mutating())

	assert.True(t, CancelOrder.Journaled())
	assert.True(t, Quit.Journaled())
	assert.False(t, GetRankOfOrder.Journaled())
}
