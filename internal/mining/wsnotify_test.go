// Copyright (c) 2024 The Warthog Network developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"errors"
	"testing"
)

type fakePushTarget struct {
	writes []interface{}
	failN  int
}

func (f *fakePushTarget) WriteJSON(v interface{}) error {
	f.writes = append(f.writes, v)
	if f.failN > 0 {
		f.failN--
		return errors.New("write failed")
	}
	return nil
}

func TestWebSocketCallbackPushesTemplate(t *testing.T) {
	target := &fakePushTarget{}
	cb := NewWebSocketCallback(target)

	cb("template-1", nil)
	if len(target.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(target.writes))
	}
	got, ok := target.writes[0].(miningNotification)
	if !ok {
		t.Fatalf("unexpected push type %T", target.writes[0])
	}
	if got.Template != "template-1" || got.Error != "" {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestWebSocketCallbackReportsBuildError(t *testing.T) {
	target := &fakePushTarget{}
	cb := NewWebSocketCallback(target)

	cb(nil, errors.New("chain empty"))
	got := target.writes[0].(miningNotification)
	if got.Template != nil {
		t.Fatalf("expected nil template on error, got %v", got.Template)
	}
	if got.Error != "chain empty" {
		t.Fatalf("unexpected error text: %q", got.Error)
	}
}

func TestWebSocketCallbackSwallowsWriteError(t *testing.T) {
	target := &fakePushTarget{failN: 1}
	cb := NewWebSocketCallback(target)

	// Must not panic even though the underlying write fails.
	cb("ignored", nil)
	if len(target.writes) != 1 {
		t.Fatalf("expected the write attempt to be recorded, got %d", len(target.writes))
	}
}
