package envserver_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/entity"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/envserver"
	"github.com/tsinghua-fib-lab/racetrack-sim-oss/utils/config"
)

func newServer(t *testing.T, modify func(c *config.Config)) (*envserver.Server, *envserver.Client) {
	t.Helper()
	c := config.Default()
	if modify != nil {
		modify(&c)
	}
	rc, err := config.NewRuntimeConfig(c)
	require.NoError(t, err)
	srv := envserver.NewServer(rc)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, envserver.NewClient(ts.Client(), ts.URL)
}

func TestSessionLifecycle(t *testing.T) {
	srv, client := newServer(t, nil)
	ctx := context.Background()

	id, initial, err := client.CreateSession(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, int32(0), initial.Step)
	assert.Len(t, initial.Observation, 9)
	assert.Equal(t, 1, srv.Sessions())

	r, err := client.StepDT(ctx, id, 1.0, entity.Control{Throttle: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), r.Step)
	assert.Equal(t, 240.0, r.Pose.Speed)
	assert.InDelta(t, 740, r.Pose.Position.X, 1e-9)

	state, err := client.GetState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, r, state)

	reset, err := client.Reset(ctx, id, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(0), reset.Step)
	assert.NotEqual(t, initial.EpisodeID, reset.EpisodeID)

	require.NoError(t, client.CloseSession(ctx, id))
	assert.Equal(t, 0, srv.Sessions())
	_, err = client.GetState(ctx, id)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestStepDefaultsToClockStep(t *testing.T) {
	_, client := newServer(t, nil)
	ctx := context.Background()
	id, _, err := client.CreateSession(ctx, 1)
	require.NoError(t, err)

	r, err := client.Step(ctx, id, entity.Control{Throttle: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/60, r.T, 1e-15)

	// 显式的0步长不会被当作缺省值
	_, err = client.StepDT(ctx, id, 0, entity.Control{Throttle: 1})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestErrorCodes(t *testing.T) {
	_, client := newServer(t, func(c *config.Config) { c.Control.Step.Total = 1 })
	ctx := context.Background()

	_, err := client.Step(ctx, "missing", entity.Control{})
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(client.CloseSession(ctx, "missing")))

	id, _, err := client.CreateSession(ctx, 1)
	require.NoError(t, err)

	_, err = client.Step(ctx, id, entity.Control{Steering: 2})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	_, err = client.StepDT(ctx, id, -1, entity.Control{})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	r, err := client.Step(ctx, id, entity.Control{})
	require.NoError(t, err)
	assert.True(t, r.Done)
	_, err = client.Step(ctx, id, entity.Control{})
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}

func TestSessionsAreIndependent(t *testing.T) {
	srv, client := newServer(t, nil)
	ctx := context.Background()

	ids := make([]string, 4)
	for i := range ids {
		id, _, err := client.CreateSession(ctx, uint64(i))
		require.NoError(t, err)
		ids[i] = id
	}
	assert.Equal(t, 4, srv.Sessions())

	// 不同会话并发推进，同一会话串行
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 + i {
				_, err := client.StepDT(ctx, id, 0.1, entity.Control{Throttle: 1})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for i, id := range ids {
		r, err := client.GetState(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int32(10+i), r.Step)
	}
}
