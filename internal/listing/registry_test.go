// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package listing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsadmin/internal/metrics"
	"hsadmin/internal/resource"
)

// memoryStates is an in-memory StateStore.
type memoryStates struct {
	mu     sync.Mutex
	states map[string]State
	saves  int
}

func newMemoryStates() *memoryStates {
	return &memoryStates{states: make(map[string]State)}
}

func (m *memoryStates) LoadState(_ context.Context, owner, entity string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[owner+"/"+entity]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (m *memoryStates) SaveState(_ context.Context, owner, entity string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[owner+"/"+entity] = st
	m.saves++
	return nil
}

func (m *memoryStates) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type fixedColumns map[string][]string

func (f fixedColumns) HiddenColumns(_ context.Context, owner, entity string) ([]string, error) {
	return f[owner+"/"+entity], nil
}

func TestRegistryReturnsSameScreenPerOwner(t *testing.T) {
	f := newFakeFetcher()
	m := metrics.New()
	r := NewRegistry(RegistryConfig{
		Fetchers: func(*resource.Schema) Fetcher { return f },
		Columns:  fixedColumns{"op1/services": {resource.ColRevenue}},
		List:     Options{Metrics: m},
	})
	defer r.Close()

	services := schemaNamed(t, "services")
	a := r.Screen(context.Background(), "op1", services)
	b := r.Screen(context.Background(), "op1", services)
	other := r.Screen(context.Background(), "op2", services)

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
	assert.False(t, a.Columns.Visible(resource.ColRevenue))
	assert.True(t, other.Columns.Visible(resource.ColRevenue))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActiveScreens))
}

func TestRegistryEvictionPersistsAndRestores(t *testing.T) {
	f := newFakeFetcher()
	states := newMemoryStates()
	m := metrics.New()
	r := NewRegistry(RegistryConfig{
		Fetchers: func(*resource.Schema) Fetcher { return f },
		States:   states,
		IdleTTL:  40 * time.Millisecond,
		List:     Options{Metrics: m},
	})
	defer r.Close()

	items := schemaNamed(t, "items")
	first := r.Screen(context.Background(), "op1", items)
	_, err := first.List.SetStatusFilter(StatusInactive)
	require.NoError(t, err)
	f.next(t).respond(pageOf(1, 1), nil)

	time.Sleep(80 * time.Millisecond)

	second := r.Screen(context.Background(), "op1", items)
	assert.NotSame(t, first, second)
	assert.Equal(t, StatusInactive, second.List.View().Status)
	assert.GreaterOrEqual(t, states.saveCount(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveScreens))
}

func TestRegistrySaveAndClose(t *testing.T) {
	f := newFakeFetcher()
	states := newMemoryStates()
	r := NewRegistry(RegistryConfig{
		Fetchers: func(*resource.Schema) Fetcher { return f },
		States:   states,
	})

	scr := r.Screen(context.Background(), "op1", schemaNamed(t, "projects"))
	scr.List.SetSecondaryFilter("ignored-without-filter")
	f.next(t).respond(pageOf(1, 1), nil)
	r.Save(context.Background(), scr)

	st, err := states.LoadState(context.Background(), "op1", "projects")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "ignored-without-filter", st.Secondary)

	r.Close()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 2, states.saveCount(), "close saves every open screen")
}

// gatedColumns blocks HiddenColumns for one owner until release is closed.
type gatedColumns struct {
	owner   string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedColumns) HiddenColumns(ctx context.Context, owner, _ string) ([]string, error) {
	if owner != g.owner {
		return nil, nil
	}
	close(g.entered)
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	return nil, nil
}

func TestRegistrySlowStoreDoesNotBlockOtherOwners(t *testing.T) {
	f := newFakeFetcher()
	cols := &gatedColumns{owner: "slow", entered: make(chan struct{}), release: make(chan struct{})}
	r := NewRegistry(RegistryConfig{
		Fetchers: func(*resource.Schema) Fetcher { return f },
		Columns:  cols,
	})
	defer r.Close()

	services := schemaNamed(t, "services")
	slowDone := make(chan *Screen)
	go func() { slowDone <- r.Screen(context.Background(), "slow", services) }()
	<-cols.entered

	fast := make(chan *Screen)
	go func() { fast <- r.Screen(context.Background(), "fast", services) }()
	select {
	case scr := <-fast:
		assert.Equal(t, "fast", scr.Owner)
	case <-time.After(time.Second):
		t.Fatal("screen lookup blocked behind another owner's store read")
	}

	close(cols.release)
	assert.Equal(t, "slow", (<-slowDone).Owner)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryConcurrentFirstVisitsShareScreen(t *testing.T) {
	f := newFakeFetcher()
	m := metrics.New()
	r := NewRegistry(RegistryConfig{
		Fetchers: func(*resource.Schema) Fetcher { return f },
		States:   newMemoryStates(),
		List:     Options{Metrics: m},
	})
	defer r.Close()

	services := schemaNamed(t, "services")
	screens := make([]*Screen, 8)
	var wg sync.WaitGroup
	for i := range screens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			screens[i] = r.Screen(context.Background(), "op1", services)
		}()
	}
	wg.Wait()

	for _, scr := range screens[1:] {
		assert.Same(t, screens[0], scr)
	}
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveScreens))
}
