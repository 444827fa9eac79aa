package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/calcpad/pkg/adapters/memory"
	"github.com/aretw0/calcpad/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		if _, err := mgr.Open(ctx, sid); err != nil {
			t.Fatalf("open %s: %v", sid, err)
		}
		_, _ = mgr.Dispatch(ctx, sid, domain.DigitIntent("1"))
		_ = mgr.Close(ctx, sid)
	}

	lockCount := len(mgr.locks)
	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Close", lockCount)
	}
	if n := len(mgr.sessions); n != 0 {
		t.Errorf("%d sessions remaining after Close", n)
	}
}
