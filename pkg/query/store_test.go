package query

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLastTicketWins(t *testing.T) {
	s := NewStore()
	first := s.Begin(KeyLocationsTree)
	second := s.Begin(KeyLocationsTree)

	if !s.Commit(second, "new", nil) {
		t.Fatal("newest ticket should commit")
	}
	if s.Commit(first, "old", nil) {
		t.Fatal("superseded ticket must not commit")
	}
	if v, ok := s.Get(KeyLocationsTree); !ok || v != "new" {
		t.Errorf("Get() = %v, %v; want new", v, ok)
	}
}

func TestStaleResultDroppedEvenIfItArrivesFirst(t *testing.T) {
	s := NewStore()
	old := s.Begin("items?q=a")
	cur := s.Begin("items?q=a")
	if s.Commit(old, "stale", nil) {
		t.Fatal("stale commit accepted")
	}
	if _, ok := s.Get("items?q=a"); ok {
		t.Error("stale value visible")
	}
	if s.NeedsFetch("items?q=a") {
		t.Error("the current ticket is still in flight")
	}
	s.Commit(cur, "fresh", nil)
	if v, _ := s.Get("items?q=a"); v != "fresh" {
		t.Errorf("Get() = %v, want fresh", v)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	s := NewStore()
	a := s.Begin(LocationKey("a"))
	b := s.Begin(LocationKey("b"))
	// b completes before a
	if !s.Commit(b, "B", nil) || !s.Commit(a, "A", nil) {
		t.Fatal("different keys must not interfere")
	}
	if v, _ := s.Get(LocationKey("a")); v != "A" {
		t.Errorf("a = %v", v)
	}
}

func TestFailureKeepsPreviousValue(t *testing.T) {
	s := NewStore()
	s.Commit(s.Begin(KeyLabels), []string{"x"}, nil)

	boom := errors.New("boom")
	s.Commit(s.Begin(KeyLabels), nil, boom)

	v, ok := s.Get(KeyLabels)
	if !ok || len(v.([]string)) != 1 {
		t.Errorf("previous value lost: %v", v)
	}
	if !errors.Is(s.Err(KeyLabels), boom) {
		t.Errorf("Err() = %v", s.Err(KeyLabels))
	}

	s.Commit(s.Begin(KeyLabels), []string{"y"}, nil)
	if s.Err(KeyLabels) != nil {
		t.Error("success should clear the error")
	}
}

func TestInvalidateByPrefix(t *testing.T) {
	s := NewStore()
	for _, k := range []string{KeyLocationsTree, LocationKey("a"), LocationItemsKey("a"), ItemKey("1"), KeyLabels} {
		s.Commit(s.Begin(k), k, nil)
	}
	keys := s.Invalidate(KeyLocationsTree, PrefixLocation, PrefixLocItems)
	sort.Strings(keys)
	want := []string{"location-items/a", "location/a", "locations-tree"}
	if len(keys) != len(want) {
		t.Fatalf("Invalidate() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Invalidate()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
	if !s.NeedsFetch(KeyLocationsTree) || s.NeedsFetch(KeyLabels) {
		t.Error("wrong keys marked stale")
	}
	if v, ok := s.Get(KeyLocationsTree); !ok || v != KeyLocationsTree {
		t.Error("invalidated value should stay readable")
	}
	s.Commit(s.Begin(KeyLocationsTree), "refreshed", nil)
	if s.NeedsFetch(KeyLocationsTree) {
		t.Error("refetch should clear staleness")
	}
}

func TestForgetKeepsGenerations(t *testing.T) {
	s := NewStore()
	inflight := s.Begin(KeyLabels)
	s.Forget()
	if _, ok := s.Get(KeyLabels); ok {
		t.Error("Forget() left a value")
	}
	next := s.Begin(KeyLabels)
	if s.Commit(inflight, "before", nil) {
		t.Error("a fetch from before Forget() committed over a newer one")
	}
	if !s.Commit(next, "after", nil) {
		t.Error("generation ordering broken after Forget()")
	}
}

func TestNeedsFetch(t *testing.T) {
	s := NewStore()
	if !s.NeedsFetch(KeyLabels) {
		t.Error("unknown key should need a fetch")
	}
	tk := s.Begin(KeyLabels)
	if s.NeedsFetch(KeyLabels) {
		t.Error("in-flight key should not need a second fetch")
	}
	s.Commit(tk, "v", nil)
	if s.NeedsFetch(KeyLabels) {
		t.Error("fresh value should be served from the store")
	}
	s.Commit(s.Begin(KeyLabels), nil, errors.New("boom"))
	if !s.NeedsFetch(KeyLabels) {
		t.Error("a failed fetch should be retried on next use")
	}
	s.Commit(s.Begin(KeyLabels), "w", nil)
	s.Invalidate(KeyLabels)
	s.Begin(KeyLabels)
	if s.NeedsFetch(KeyLabels) {
		t.Error("a refetch after invalidation should clear staleness")
	}
}

func TestDoAfterInvalidateDoesNotJoinOlderFetch(t *testing.T) {
	s := NewStore()
	started := make(chan struct{})
	release := make(chan struct{})
	oldDone := make(chan bool, 1)
	go func() {
		_, ok, _ := s.Do(context.Background(), KeyLabels, func(context.Context) (any, error) {
			close(started)
			<-release
			return "old", nil
		})
		oldDone <- ok
	}()
	<-started

	// a mutation lands while the first fetch is still running
	s.Invalidate(KeyLabels)

	v, ok, err := s.Do(context.Background(), KeyLabels, func(context.Context) (any, error) {
		return "new", nil
	})
	if err != nil || !ok || v != "new" {
		t.Fatalf("Do() after Invalidate = %v, %v, %v; want new, true, nil", v, ok, err)
	}
	close(release)
	if <-oldDone {
		t.Error("the fetch started before the mutation committed")
	}
	if got, _ := s.Get(KeyLabels); got != "new" {
		t.Errorf("Get() = %v, want new", got)
	}
}

func TestDoCoalescesConcurrentCalls(t *testing.T) {
	s := NewStore()
	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "tree", nil
	}

	var wg sync.WaitGroup
	var committed atomic.Int32
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok, err := s.Do(context.Background(), KeyLocationsTree, fn)
			if err != nil || v != "tree" {
				t.Errorf("Do() = %v, %v", v, err)
			}
			if ok {
				committed.Add(1)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("fn ran %d times, want 1", n)
	}
	if n := committed.Load(); n != 1 {
		t.Errorf("%d calls committed, want exactly the newest", n)
	}
}

func TestDoContextCancel(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := s.Do(ctx, KeyLabels, func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() err = %v", err)
	}
}
