package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webshell/backend/internal/shared/id"
)

func TestRegistryLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := testOptions(nil)
	opts.Metrics = monitoring.NewMetrics()
	reg := NewRegistry(opts)

	first, err := reg.Open(ctx, &fakeEngine{})
	require.NoError(t, err)
	second, err := reg.Open(ctx, &fakeEngine{})
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Count())
	assert.True(t, id.IsValid(first.ID().String(), id.ShellPrefix))

	got, err := reg.Get(first.ID())
	require.NoError(t, err)
	assert.Same(t, first, got)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Same(t, first, list[0])
	assert.Same(t, second, list[1])

	assert.True(t, reg.Close(first.ID()))
	assert.False(t, reg.Close(first.ID()))
	<-first.Done()

	_, err = reg.Get(first.ID())
	assert.ErrorIs(t, err, ErrNotFound)

	reg.CloseAll()
	assert.Equal(t, 0, reg.Count())
	assert.Empty(t, reg.List())
}

func TestRegistryRejectsBadStart(t *testing.T) {
	opts := testOptions(nil)
	opts.StartLocation = ""
	reg := NewRegistry(opts)

	_, err := reg.Open(context.Background(), &fakeEngine{})
	assert.Error(t, err)
	assert.Equal(t, 0, reg.Count())
}
