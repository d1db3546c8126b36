// FILENAME: internal/bench/bench_test.go
package bench_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/gbench/internal/bench"
	"github.com/xkilldash9x/gbench/internal/config"
	"github.com/xkilldash9x/gbench/internal/models"
	"github.com/xkilldash9x/gbench/internal/wake"
	"go.uber.org/zap"
)

func starConfig(t *testing.T, m config.Mechanism, star string, d time.Duration, kb uint64) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Mechanism = m
	coord, workers, err := config.ParseWorkload(star)
	require.NoError(t, err)
	cfg.Coordinator, cfg.Workers = coord, workers
	cfg.Duration = d
	cfg.FootprintKB = kb
	return cfg
}

func noFatal(t *testing.T) bench.Option {
	return bench.WithFatalHandler(func(err error) { t.Errorf("unexpected wake failure: %v", err) })
}

// TestRun_FutexSymmetric runs one coordinator and one worker at 1ms run and
// 1ms wait for two seconds. A cycle takes at least 2ms, so neither side can
// exceed ~1000 iterations, and a working wake path gets well past a few hundred.
func TestRun_FutexSymmetric(t *testing.T) {
	if testing.Short() {
		t.Skip("two second benchmark")
	}
	cfg := starConfig(t, config.Futex, "1000:1000,1000:1000", 2*time.Second, 64)
	ctrl, err := bench.New(cfg, zap.NewNop(), noFatal(t))
	require.NoError(t, err)

	rep, err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, rep.Tasks, 2)
	assert.Equal(t, models.RoleCoordinator, rep.Tasks[0].Role)
	assert.Equal(t, models.RoleWorker, rep.Tasks[1].Role)
	assert.Equal(t, 52, rep.MatrixSide)
	assert.False(t, rep.Interrupted)
	assert.GreaterOrEqual(t, rep.Elapsed, 2*time.Second)

	for _, tr := range rep.Tasks {
		assert.Greater(t, tr.Count, uint64(300), tr.Label())
		assert.LessOrEqual(t, tr.Count, uint64(1100), tr.Label())
		assert.Greater(t, tr.AvgRunTime, uint64(900), tr.Label())
		assert.Greater(t, tr.RunFreq, uint64(0), tr.Label())
		assert.Equal(t, tr.RunFreq, tr.WaitFreq, "both series share the cycle length")
	}
}

func TestRun_AllMechanismsTerminate(t *testing.T) {
	for _, m := range []config.Mechanism{config.Futex, config.Pipe, config.Sock} {
		t.Run(m.String(), func(t *testing.T) {
			cfg := starConfig(t, m, "100:100,100:100,100:100,100:100", 300*time.Millisecond, 4)
			ctrl, err := bench.New(cfg, zap.NewNop(), noFatal(t))
			require.NoError(t, err)

			rep, err := ctrl.Run(context.Background())
			if errors.Is(err, wake.ErrUnsupported) {
				t.Skipf("%s not available: %v", m, err)
			}
			require.NoError(t, err)
			require.Len(t, rep.Tasks, 4)
			assert.Len(t, rep.Workers(), 3)
			assert.Equal(t, m.String(), rep.Mechanism)
			for _, tr := range rep.Tasks {
				assert.NotZero(t, tr.Count, tr.Label())
			}
		})
	}
}

func TestRun_ContextCancel(t *testing.T) {
	cfg := starConfig(t, config.Futex, "100:100,100:100", time.Hour, 4)
	ctrl, err := bench.New(cfg, zap.NewNop(), noFatal(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	rep, err := ctrl.Run(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Interrupted)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.NotZero(t, rep.Tasks[0].Count)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	_, err := bench.New(cfg, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNew_AllocationFailsBeforeThreads(t *testing.T) {
	cfg := starConfig(t, config.Futex, "1:1,1:1", time.Second, ^uint64(0))
	hubBuilt := false
	_, err := bench.New(cfg, zap.NewNop(), bench.WithHubFactory(func(m config.Mechanism, n int) (wake.Hub, error) {
		hubBuilt = true
		return wake.NewHub(m, n)
	}))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "allocating coordinator")
	assert.False(t, hubBuilt)
}

func TestRun_HubFactoryError(t *testing.T) {
	cfg := starConfig(t, config.Sock, "1:1,1:1", time.Second, 1)
	boom := errors.New("no hub")
	ctrl, err := bench.New(cfg, zap.NewNop(), bench.WithHubFactory(func(config.Mechanism, int) (wake.Hub, error) {
		return nil, boom
	}))
	require.NoError(t, err)

	_, err = ctrl.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	for _, tk := range ctrl.Tasks() {
		assert.Zero(t, tk.TID, "no thread may start when the hub cannot be built")
	}
}
