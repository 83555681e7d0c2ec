package lazy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterExitTogglesOnOutermostOnly(t *testing.T) {
	rt, executor, _ := newFakeRuntime(t)
	mode := rt.NewMode()
	dev := NewDevice("cpu")

	require.False(t, mode.Active())

	mode.Enter(dev)
	assert.True(t, mode.Active(), "outermost enter should set the deferred flag")

	mode.Enter(dev)
	assert.True(t, mode.Active(), "nested enter is a no-op beyond the depth bump")
	assert.Equal(t, 2, mode.Depth())

	require.NoError(t, mode.Exit(dev))
	assert.True(t, mode.Active(), "nested exit must not clear the flag")
	assert.Empty(t, executor.syncs, "nested exit must not trigger a sync")

	require.NoError(t, mode.Exit(dev))
	assert.False(t, mode.Active(), "outermost exit clears the flag")

	require.Len(t, executor.syncs, 1, "sync fires exactly once, on the outermost exit")
	sync := executor.syncs[0]
	assert.Equal(t, BackendDevice{Kind: "cpu", Ordinal: 0}, sync.primary)
	assert.Equal(t, []string{"cpu:0"}, sync.devices)
	assert.True(t, sync.wait, "exit-time sync always submits with wait=true")
}

func TestBalancedSequencesAreIdentity(t *testing.T) {
	for depth := 1; depth <= 5; depth++ {
		obs := newTransitionObserver()
		rt, executor, _ := newFakeRuntime(t, WithObserver(obs))
		mode := rt.NewMode()
		dev := NewDevice("cpu")

		for i := 0; i < depth; i++ {
			mode.Enter(dev)
		}
		for i := 0; i < depth; i++ {
			require.NoError(t, mode.Exit(dev))
		}

		assert.False(t, mode.Active())
		assert.Equal(t, 0, mode.Depth())
		assert.Equal(t, 1, obs.enters, "flag set exactly once regardless of depth %d", depth)
		assert.Equal(t, 1, obs.exits, "flag cleared exactly once regardless of depth %d", depth)
		assert.Len(t, executor.syncs, 1)
	}
}

func TestExitWithoutEnterPanics(t *testing.T) {
	rt, executor, _ := newFakeRuntime(t)
	mode := rt.NewMode()

	requireContractPanic(t, "Mode.Exit", func() {
		_ = mode.Exit(NewDevice("cpu"))
	})

	assert.False(t, mode.Active(), "underflow must not mutate routing flags")
	assert.Equal(t, 0, mode.Depth())
	assert.Empty(t, executor.syncs, "underflow must not trigger a sync")
}

func TestExitUnderflowAfterBalancedSequence(t *testing.T) {
	rt, _, _ := newFakeRuntime(t)
	mode := rt.NewMode()
	dev := NewDevice("cpu")

	mode.Enter(dev)
	require.NoError(t, mode.Exit(dev))

	requireContractPanic(t, "Mode.Exit", func() {
		_ = mode.Exit(dev)
	})
}

func TestOutermostExitDeviceIsSynchronized(t *testing.T) {
	rt, executor, _ := newFakeRuntime(t)
	mode := rt.NewMode()

	// Nested scopes may name different devices; only the device handed to
	// the outermost exit is synchronized.
	mode.Enter(NewDevice("cpu"))
	mode.Enter(Device{Type: "cuda", Index: 1})
	require.NoError(t, mode.Exit(Device{Type: "cuda", Index: 1}))
	require.NoError(t, mode.Exit(NewDevice("cuda")))

	require.Len(t, executor.syncs, 1)
	assert.Equal(t, "cuda:0", executor.syncs[0].primary.String())
}

func TestScopedExitsOnEveryPath(t *testing.T) {
	rt, executor, _ := newFakeRuntime(t)
	mode := rt.NewMode()
	dev := NewDevice("cpu")

	t.Run("error return", func(t *testing.T) {
		wantErr := errors.New("boom")
		err := mode.Scoped(dev, func() error {
			assert.True(t, mode.Active())
			return wantErr
		})
		assert.ErrorIs(t, err, wantErr)
		assert.False(t, mode.Active())
		assert.Equal(t, 0, mode.Depth())
	})

	t.Run("panic", func(t *testing.T) {
		before := len(executor.syncs)
		assert.Panics(t, func() {
			_ = mode.Scoped(dev, func() error {
				panic("kernel bug")
			})
		})
		assert.False(t, mode.Active(), "guard must clear the flag on panic unwind")
		assert.Equal(t, 0, mode.Depth())
		assert.Len(t, executor.syncs, before+1, "guard must still trigger the sync")
	})
}

func TestScopedJoinsSyncError(t *testing.T) {
	rt, executor, _ := newFakeRuntime(t)
	executor.syncErr = errors.New("submit failed")
	mode := rt.NewMode()

	fnErr := errors.New("scope body failed")
	err := mode.Scoped(NewDevice("cpu"), func() error {
		return fnErr
	})

	assert.ErrorIs(t, err, fnErr)
	assert.ErrorIs(t, err, executor.syncErr)
}

func TestSyncObserverSeesFailure(t *testing.T) {
	obs := newTransitionObserver()
	rt, executor, _ := newFakeRuntime(t, WithObserver(obs))
	executor.syncErr = errors.New("submit failed")
	mode := rt.NewMode()
	dev := NewDevice("cpu")

	mode.Enter(dev)
	err := mode.Exit(dev)

	assert.ErrorIs(t, err, executor.syncErr)
	assert.Equal(t, 1, obs.syncs)
	assert.False(t, mode.Active(), "flag clears before the sync runs, even on failure")
}
