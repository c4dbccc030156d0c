package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestInline(t *testing.T) {
	called := false
	err := Inline{}.Do(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Inline{}.Do(ctx, func(context.Context) error {
		t.Fatal("must not run")
		return nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestThread(t *testing.T) {
	th := NewThread(nil)
	defer th.Close()

	boom := errors.New("boom")
	err := th.Do(context.Background(), func(context.Context) error { return boom })
	assert.True(t, errors.Is(err, boom))

	counter := 0
	for i := 0; i < 10; i++ {
		assert.NoError(t, th.Do(context.Background(), func(context.Context) error {
			counter++
			return nil
		}))
	}
	assert.Equal(t, 10, counter)
}

func TestThreadReentrant(t *testing.T) {
	th := NewThread(nil)
	defer th.Close()

	inner := false
	err := th.Do(context.Background(), func(ctx context.Context) error {
		return th.Do(ctx, func(context.Context) error {
			inner = true
			return nil
		})
	})
	assert.NoError(t, err)
	assert.True(t, inner)
}

func TestThreadPanic(t *testing.T) {
	th := NewThread(nil)
	defer th.Close()

	err := th.Do(context.Background(), func(context.Context) error { panic("lost device") })
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "lost device")

	// The thread survives.
	assert.NoError(t, th.Do(context.Background(), func(context.Context) error { return nil }))
}

func TestThreadClose(t *testing.T) {
	th := NewThread(nil)
	assert.NoError(t, th.Close())
	assert.True(t, errors.Is(th.Close(), ErrClosed))

	err := th.Do(context.Background(), func(context.Context) error { return nil })
	assert.True(t, errors.Is(err, ErrClosed))
}
