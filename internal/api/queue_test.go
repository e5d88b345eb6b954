package api

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFirstCallerLeads(t *testing.T) {
	q := newRefreshQueue()

	leader, wait := q.Begin()
	assert.True(t, leader)
	assert.Nil(t, wait)
	assert.True(t, q.Refreshing())
}

func TestQueueFollowersAwaitSharedOutcome(t *testing.T) {
	q := newRefreshQueue()

	leader, _ := q.Begin()
	require.True(t, leader)

	follower1, wait1 := q.Begin()
	follower2, wait2 := q.Begin()
	require.False(t, follower1)
	require.False(t, follower2)
	assert.Equal(t, 2, q.Pending())

	q.Finish("tok-2", nil)

	res1 := <-wait1
	res2 := <-wait2
	assert.Equal(t, "tok-2", res1.token)
	assert.NoError(t, res1.err)
	assert.Equal(t, res1, res2, "all waiters observe the same outcome")

	assert.False(t, q.Refreshing())
	assert.Zero(t, q.Pending())
}

func TestQueueDeliversErrors(t *testing.T) {
	q := newRefreshQueue()
	q.Begin()
	_, wait := q.Begin()

	refreshErr := fmt.Errorf("refresh token revoked")
	q.Finish("", refreshErr)

	res := <-wait
	assert.Equal(t, refreshErr, res.err)
	assert.Empty(t, res.token)
}

func TestQueueReusableAfterFinish(t *testing.T) {
	q := newRefreshQueue()

	q.Begin()
	q.Finish("tok", nil)

	leader, _ := q.Begin()
	assert.True(t, leader, "slot must reopen after the previous refresh settles")
	q.Finish("tok", nil)
}

func TestQueueConcurrentBeginsYieldOneLeader(t *testing.T) {
	q := newRefreshQueue()

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	leaders := 0
	waits := make([]<-chan refreshResult, 0, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			leader, wait := q.Begin()
			mu.Lock()
			defer mu.Unlock()
			if leader {
				leaders++
			} else {
				waits = append(waits, wait)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, leaders)
	require.Len(t, waits, n-1)

	q.Finish("tok", nil)
	for _, wait := range waits {
		res := <-wait
		assert.Equal(t, "tok", res.token)
	}
}
