package starlark

import (
	"sync"
	"testing"

	"github.com/leapstack-labs/leaplist/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runaway = `str(len([x for x in range(1000000)]))`

func TestThreadPool_Defaults(t *testing.T) {
	pool := NewThreadPool(0)
	assert.Equal(t, 0, pool.Idle())
	assert.Equal(t, uint64(DefaultMaxSteps), pool.MaxSteps())

	pool = NewThreadPoolWithLimit(2, 0)
	assert.Equal(t, uint64(DefaultMaxSteps), pool.MaxSteps())
}

func TestThreadPool_ReusedAcrossEvals(t *testing.T) {
	pool := NewThreadPool(2)
	nick, err := Compile("players.nickname", `column.label + ": " + row["nickname"]`, Options{Pool: pool})
	require.NoError(t, err)
	login, err := Compile("players.login", `value.upper()`, Options{Pool: pool})
	require.NoError(t, err)

	row := core.Record{"login": "alice", "nickname": "Alice"}
	for i := 0; i < 3; i++ {
		got, err := nick.Eval(row, &core.Column{Key: "nickname", Label: "Nick"})
		require.NoError(t, err)
		assert.Equal(t, "Nick: Alice", got)

		got, err = login.Eval(row, &core.Column{Key: "login"})
		require.NoError(t, err)
		assert.Equal(t, "ALICE", got)
	}
	// sequential evaluations share one thread
	assert.Equal(t, 1, pool.Idle())
}

func TestThreadPool_StepBudget(t *testing.T) {
	tests := []struct {
		name     string
		maxSteps uint64
		expr     string
		want     string
		wantErr  string
	}{
		{"runaway", 1000, runaway, "", "too many steps"},
		{"within budget", 1000, `str(value * 2)`, "42", ""},
		{"default budget", 0, runaway, "", "too many steps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewThreadPoolWithLimit(1, tt.maxSteps)
			r, err := Compile("bans.count", tt.expr, Options{Pool: pool})
			require.NoError(t, err)

			got, err := r.Eval(core.Record{"count": int64(21)}, &core.Column{Key: "count"})
			if tt.wantErr != "" {
				var evalErr *EvalError
				require.ErrorAs(t, err, &evalErr)
				assert.Equal(t, "bans.count", evalErr.Name)
				assert.Contains(t, evalErr.Message, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThreadPool_BudgetResetsOnReuse(t *testing.T) {
	pool := NewThreadPoolWithLimit(1, 1000)
	bad, err := Compile("bad", runaway, Options{Pool: pool})
	require.NoError(t, err)
	good, err := Compile("good", `column.key + "=" + value`, Options{Pool: pool})
	require.NoError(t, err)

	_, err = bad.Eval(core.Record{}, nil)
	require.Error(t, err)
	require.Equal(t, 1, pool.Idle(), "cancelled thread goes back to the pool")

	got, err := good.Eval(core.Record{"login": "bob"}, &core.Column{Key: "login"})
	require.NoError(t, err)
	assert.Equal(t, "login=bob", got)

	thread := pool.Get("next")
	assert.Equal(t, uint64(0), thread.Steps)
	assert.Equal(t, "next", thread.Name)
	pool.Put(thread)
}

func TestThreadPool_ConcurrentEvals(t *testing.T) {
	pool := NewThreadPool(3)
	r, err := Compile("players.row", `"%s/%d" % (row["login"], value)`, Options{Pool: pool})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Eval(core.Record{"login": "p", "rank": int64(i)}, &core.Column{Key: "rank"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, pool.Idle(), 3)
	assert.Positive(t, pool.Idle())
}
