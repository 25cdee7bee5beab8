// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"

	"github.com/warthog-network/node/internal/staging/primitives"
)

func TestCacheRebuildsOnlyWhenTokenMoves(t *testing.T) {
	var calls int
	c := NewCache(func(primitives.Address) (interface{}, error) {
		calls++
		return calls, nil
	})

	var addr primitives.Address
	addr[0] = 1

	v, err := c.Get(addr, 1)
	if err != nil || v != 1 {
		t.Fatalf("first build: got (%v, %v)", v, err)
	}
	v, err = c.Get(addr, 1)
	if err != nil || v != 1 {
		t.Fatalf("cached build should not rebuild: got (%v, %v)", v, err)
	}
	v, err = c.Get(addr, 2)
	if err != nil || v != 2 {
		t.Fatalf("token bump should rebuild: got (%v, %v)", v, err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 builds, got %d", calls)
	}
}

func TestCacheInvalidateForcesRebuild(t *testing.T) {
	var calls int
	c := NewCache(func(primitives.Address) (interface{}, error) {
		calls++
		return nil, nil
	})
	var addr primitives.Address
	c.Get(addr, 5)
	c.Invalidate()
	c.Get(addr, 5)
	if calls != 2 {
		t.Fatalf("expected invalidate to force a rebuild, got %d calls", calls)
	}
}

func TestSubscriptionsDispatchFansOutPerAddress(t *testing.T) {
	s := NewSubscriptions()
	var addrA, addrB primitives.Address
	addrA[0], addrB[0] = 1, 2

	var gotA, gotB int
	s.Subscribe(addrA, func(v interface{}, err error) { gotA = v.(int) })
	s.Subscribe(addrB, func(v interface{}, err error) { gotB = v.(int) })

	s.Dispatch(func(a primitives.Address) (interface{}, error) {
		if a == addrA {
			return 10, nil
		}
		return 20, nil
	})

	if gotA != 10 || gotB != 20 {
		t.Fatalf("expected (10,20), got (%d,%d)", gotA, gotB)
	}
}

func TestUnsubscribeStopsFurtherDispatch(t *testing.T) {
	s := NewSubscriptions()
	var addr primitives.Address
	calls := 0
	id := s.Subscribe(addr, func(interface{}, error) { calls++ })

	s.Dispatch(func(primitives.Address) (interface{}, error) { return nil, nil })
	s.Unsubscribe(id)
	s.Dispatch(func(primitives.Address) (interface{}, error) { return nil, nil })

	if calls != 1 {
		t.Fatalf("expected exactly 1 dispatch before unsubscribe, got %d", calls)
	}
	if s.Count() != 0 {
		t.Fatalf("expected 0 live subscriptions after unsubscribe, got %d", s.Count())
	}
}
