package qnet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantanet/core/qnet"
)

// TestTimedSubnetEnforcesMinimumSpacing exercises spec §8 scenario 5: a
// timed sub-net's boundary input must not accept a second token until the
// first has held the place for at least the configured interval and been
// drained by the boundary output.
func TestTimedSubnetEnforcesMinimumSpacing(t *testing.T) {
	ctx := context.Background()
	const interval = 15 * time.Millisecond

	ts := qnet.NewTimedSubnet("Timer", interval)
	parent := qnet.NewNet("Parent")
	require.NoError(t, parent.Embed(ts.Net))

	inURI := ts.InputURI()
	outURI := ts.OutputURI()

	start := time.Now()
	require.NoError(t, parent.Fire(ctx, inURI, true))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, interval, "firing the input must not return before the idle task completes")

	placeURI := "P.Timer"
	tokens, err := parent.Tokens(placeURI)
	require.NoError(t, err)
	assert.Equal(t, 1, tokens)

	// A second firing of the input before the output drains the place
	// must be rejected: the place is capacity-1 and already full.
	err = parent.Fire(ctx, inURI, true)
	assert.ErrorIs(t, err, qnet.ErrCapacityOverflow)

	require.NoError(t, parent.Fire(ctx, outURI, true))
	tokens, err = parent.Tokens(placeURI)
	require.NoError(t, err)
	assert.Equal(t, 0, tokens)

	// Now that the place is drained, the input accepts another token and
	// again pays the full interval before returning.
	start = time.Now()
	require.NoError(t, parent.Fire(ctx, inURI, true))
	assert.GreaterOrEqual(t, time.Since(start), interval)
}
