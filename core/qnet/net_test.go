package qnet_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantanet/core/qnet"
)

func TestCreatePlaceDuplicateURI(t *testing.T) {
	n := qnet.NewNet("N")
	_, err := n.CreatePlace("P0", 0, nil, nil)
	require.NoError(t, err)

	_, err = n.CreatePlace("P0", 0, nil, nil)
	assert.ErrorIs(t, err, qnet.ErrDuplicateURI)
}

func TestConnectKindMismatch(t *testing.T) {
	n := qnet.NewNet("N")
	p0, _ := n.CreatePlace("P0", 0, nil, nil)
	p1, _ := n.CreatePlace("P1", 0, nil, nil)

	err := n.Connect(p0, p1, 1)
	assert.ErrorIs(t, err, qnet.ErrKindMismatch)
}

func TestConnectArcExists(t *testing.T) {
	n := qnet.NewNet("N")
	p0, _ := n.CreatePlace("P0", 0, nil, nil)
	t0, _ := n.CreateTransition("T0")

	require.NoError(t, n.Connect(p0, t0, 1))
	err := n.Connect(p0, t0, 1)
	assert.ErrorIs(t, err, qnet.ErrArcExists)
}

func TestConnectUnknownURI(t *testing.T) {
	n := qnet.NewNet("N")
	p0, _ := n.CreatePlace("P0", 0, nil, nil)

	err := n.Connect(p0, "nope", 1)
	assert.ErrorIs(t, err, qnet.ErrUnknownURI)
}

// buildProducerConsumer wires up spec §8 scenario 1 verbatim: a producer
// cycle, a buffer place, and a consumer cycle joined through T1->P2->T2.
func buildProducerConsumer(t *testing.T) *qnet.Net {
	t.Helper()
	n := qnet.NewNet("ProdCons")

	t0, err := n.CreateTransition("T0")
	require.NoError(t, err)
	p0, err := n.CreatePlace("P0", 1, nil, nil)
	require.NoError(t, err)
	t1, err := n.CreateTransition("T1")
	require.NoError(t, err)
	p1, err := n.CreatePlace("P1", 0, nil, nil)
	require.NoError(t, err)
	p2, err := n.CreatePlace("P2", 0, nil, nil)
	require.NoError(t, err)
	p3, err := n.CreatePlace("P3", 0, nil, nil)
	require.NoError(t, err)
	t3, err := n.CreateTransition("T3")
	require.NoError(t, err)
	p4, err := n.CreatePlace("P4", 1, nil, nil)
	require.NoError(t, err)
	t2, err := n.CreateTransition("T2")
	require.NoError(t, err)

	require.NoError(t, n.Connect(t0, p0, 1))
	require.NoError(t, n.Connect(p0, t1, 1))
	require.NoError(t, n.Connect(t1, p1, 1))
	require.NoError(t, n.Connect(p1, t0, 1))

	require.NoError(t, n.Connect(p3, t3, 1))
	require.NoError(t, n.Connect(t3, p4, 1))
	require.NoError(t, n.Connect(p4, t2, 1))
	require.NoError(t, n.Connect(t2, p3, 1))

	require.NoError(t, n.Connect(t1, p2, 1))
	require.NoError(t, n.Connect(p2, t2, 1))

	return n
}

func TestProducerConsumerScenario(t *testing.T) {
	ctx := context.Background()
	n := buildProducerConsumer(t)

	assert.ElementsMatch(t, []string{"P0=1", "P1=0", "P2=0", "P3=0", "P4=1"}, n.State())

	enabled := n.EnabledTransitions()
	require.Equal(t, []string{"T1"}, enabled, "T1 must be the only enabled transition initially")

	result, err := n.Step(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "T1", result.Fired)
	assert.ElementsMatch(t, []string{"P0=0", "P1=1", "P2=1", "P3=0", "P4=1"}, result.State)

	// Both T0 and T2 are enabled now; the literal scenario pins T2.
	require.NoError(t, n.Fire(ctx, "T2", true))
	assert.ElementsMatch(t, []string{"P0=0", "P1=1", "P2=0", "P3=1", "P4=0"}, n.State())
}

// buildSplitJoin wires up spec §8 scenario 2.
func buildSplitJoin(t *testing.T) (*qnet.Net, map[string]string) {
	t.Helper()
	n := qnet.NewNet("SplitJoin")
	uris := make(map[string]string)

	for _, label := range []string{"P0", "P1", "P2", "P4", "P5", "P3"} {
		initTokens := 0
		if label == "P0" {
			initTokens = 1
		}
		uri, err := n.CreatePlace(label, initTokens, nil, nil)
		require.NoError(t, err)
		uris[label] = uri
	}
	for _, label := range []string{"T1", "T2", "T3", "T0"} {
		uri, err := n.CreateTransition(label)
		require.NoError(t, err)
		uris[label] = uri
	}

	require.NoError(t, n.Connect(uris["P0"], uris["T1"], 1))
	require.NoError(t, n.Connect(uris["T1"], uris["P1"], 1))
	require.NoError(t, n.Connect(uris["P1"], uris["T2"], 1))
	require.NoError(t, n.Connect(uris["T2"], uris["P2"], 1))
	require.NoError(t, n.Connect(uris["T1"], uris["P4"], 1))
	require.NoError(t, n.Connect(uris["P4"], uris["T3"], 1))
	require.NoError(t, n.Connect(uris["T3"], uris["P5"], 1))
	require.NoError(t, n.Connect(uris["P2"], uris["T0"], 1))
	require.NoError(t, n.Connect(uris["P5"], uris["T0"], 1))
	require.NoError(t, n.Connect(uris["T0"], uris["P3"], 1))

	return n, uris
}

func TestSplitJoinScenario(t *testing.T) {
	ctx := context.Background()
	n, _ := buildSplitJoin(t)

	for i := 0; i < 4; i++ {
		result, err := n.Step(ctx, true)
		require.NoError(t, err)
		require.False(t, result.Done, "step %d: net went quiescent early", i)
	}

	final, err := n.Step(ctx, true)
	require.NoError(t, err)
	assert.True(t, final.Done, "net should be quiescent after the join")

	assert.ElementsMatch(t, []string{"P0=0", "P1=0", "P2=0", "P3=1", "P4=0", "P5=0"}, n.State())
}

func TestCapacityBoundScenario(t *testing.T) {
	ctx := context.Background()
	n := qnet.NewNet("Bounded")
	one := 1
	p, err := n.CreatePlace("P", 1, nil, &one)
	require.NoError(t, err)
	tr, err := n.CreateTransition("T")
	require.NoError(t, err)
	require.NoError(t, n.Connect(p, tr, 1))
	require.NoError(t, n.Connect(tr, p, 1))

	// A second producer transition whose only output is P, contending for
	// the same capacity-1 slot.
	producer, err := n.CreateTransition("Producer")
	require.NoError(t, err)
	seed, err := n.CreatePlace("Seed", 1, nil, nil)
	require.NoError(t, err)
	require.NoError(t, n.Connect(seed, producer, 1))
	require.NoError(t, n.Connect(producer, p, 1))

	result, err := n.Step(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "T", result.Fired)

	tokens, err := n.Tokens(p)
	require.NoError(t, err)
	assert.Equal(t, 1, tokens)

	assert.False(t, n.IsEnabled(producer), "producer must never be enabled: P is always at capacity")
}

func TestEnablingRequiresBothInputAndOutput(t *testing.T) {
	n := qnet.NewNet("Boundary")
	p, err := n.CreatePlace("P", 1, nil, nil)
	require.NoError(t, err)
	tr, err := n.CreateTransition("T")
	require.NoError(t, err)
	require.NoError(t, n.Connect(p, tr, 1))
	// No output arc from tr: never enabled despite input tokens present.
	assert.False(t, n.IsEnabled(tr))
}

func TestFireWithoutEnablingUnderflows(t *testing.T) {
	ctx := context.Background()
	n := qnet.NewNet("N")
	p, err := n.CreatePlace("P", 0, nil, nil)
	require.NoError(t, err)
	out, err := n.CreatePlace("Out", 0, nil, nil)
	require.NoError(t, err)
	tr, err := n.CreateTransition("T")
	require.NoError(t, err)
	require.NoError(t, n.Connect(p, tr, 1))
	require.NoError(t, n.Connect(tr, out, 1))

	require.False(t, n.IsEnabled(tr), "P has no tokens, T must not be enabled")

	// Fire does not itself check enabling — calling it directly on a
	// not-enabled transition is a caller bug, and must surface as the
	// underflow assertion rather than silently going negative.
	err = n.Fire(ctx, tr, true)
	assert.ErrorIs(t, err, qnet.ErrUnderflow)
}

func TestRunUntilQuiescentStopsAtFixedPoint(t *testing.T) {
	ctx := context.Background()
	n, _ := buildSplitJoin(t)

	require.NoError(t, n.RunUntilQuiescent(ctx))
	assert.ElementsMatch(t, []string{"P0=0", "P1=0", "P2=0", "P3=1", "P4=0", "P5=0"}, n.State())
	assert.Empty(t, n.EnabledTransitions())
}
