package confirm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsadmin/internal/resource"
)

func TestCancelNeverDeletes(t *testing.T) {
	d := New()
	require.NoError(t, d.Request("c1", "Plumbing"))

	target, ok := d.Pending()
	require.True(t, ok)
	assert.Equal(t, Target{ID: "c1", Name: "Plumbing"}, target)

	d.Cancel()
	_, ok = d.Pending()
	assert.False(t, ok)

	var calls int32
	_, err := d.Confirm(context.Background(), func(context.Context, string) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.ErrorIs(t, err, ErrNoTarget)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestConfirmDeletesExactlyOnce(t *testing.T) {
	d := New()
	require.NoError(t, d.Request("c1", "Plumbing"))

	var ids []string
	target, err := d.Confirm(context.Background(), func(_ context.Context, id string) error {
		ids = append(ids, id)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", target.ID)
	assert.Equal(t, []string{"c1"}, ids)

	_, ok := d.Pending()
	assert.False(t, ok, "dialog closes after a successful delete")
}

func TestConfirmRejectedWhileBusy(t *testing.T) {
	d := New()
	require.NoError(t, d.Request("c1", ""))

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := d.Confirm(context.Background(), func(context.Context, string) error {
			close(started)
			<-release
			return nil
		})
		done <- err
	}()

	<-started
	assert.True(t, d.Busy())

	_, err := d.Confirm(context.Background(), func(context.Context, string) error {
		t.Fatal("second confirmation must not call delete")
		return nil
	})
	assert.ErrorIs(t, err, ErrBusy)

	d.Cancel()
	_, ok := d.Pending()
	assert.True(t, ok, "cancel is ignored while a delete is in flight")

	close(release)
	require.NoError(t, <-done)
	assert.False(t, d.Busy())
}

func TestFailedDeleteKeepsTarget(t *testing.T) {
	d := New()
	require.NoError(t, d.Request("c1", "Plumbing"))

	boom := errors.New("in use by 3 services")
	_, err := d.Confirm(context.Background(), func(context.Context, string) error { return boom })
	assert.ErrorIs(t, err, boom)

	target, ok := d.Pending()
	assert.True(t, ok)
	assert.Equal(t, "c1", target.ID)
	assert.False(t, d.Busy())
}

func TestRequestWithoutID(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.Request(" ", "ghost"), resource.ErrMissingID)
	_, ok := d.Pending()
	assert.False(t, ok)
}
