package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnRunStart(ctx, "run-1")
	p.OnPartitionStart(ctx, "train", 8)
	p.OnUnitComplete(ctx, "train", 0, true)
	p.OnPersistError(ctx, "/out/train/imgs/0.png", errors.New("disk full"))
	p.OnPartitionComplete(ctx, "train", 32, time.Second, nil)
	p.OnRunComplete(ctx, "run-1", time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	// nil is ignored
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should keep current hooks")
	}

	Pipeline().OnUnitComplete(context.Background(), "test", 3, true)
	if custom.units != 1 {
		t.Errorf("units = %d, want 1", custom.units)
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

type testPipelineHooks struct {
	NoopPipelineHooks
	units int
}

func (h *testPipelineHooks) OnUnitComplete(context.Context, string, int, bool) {
	h.units++
}
