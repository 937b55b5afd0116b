package stacktrace

import (
	"testing"

	"crashview/common/format/event"
)

func TestThreadState(t *testing.T) {
	tests := map[string]ThreadStateName{
		"RUNNABLE":      ThreadRunnable,
		"running":       ThreadRunnable,
		"TIMED_WAITING": ThreadTimedWaiting,
		"Waiting":       ThreadWaiting,
		"monitor":       ThreadBlocked,
		"NEW":           ThreadNew,
		"TERMINATED":    ThreadTerminated,
		"mystery":       "",
		"":              "",
	}
	for in, want := range tests {
		if got := ThreadState(in); got != want {
			t.Errorf("ThreadState(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLockReason(t *testing.T) {
	locks := map[string]event.Lock{
		"0x0d3a2f0a": {Type: event.LockBlocked, Address: "0x0d3a2f0a", PackageName: "java.lang", ClassName: "Object", ThreadID: "11"},
		"0x0a1b2c3d": {Type: event.LockWaiting, Address: "0x0a1b2c3d", ClassName: "Monitor"},
	}
	want := "waiting on <0x0a1b2c3d> (a Monitor)"
	if got := LockReason(locks); got != want {
		t.Fatalf("LockReason = %q, want %q", got, want)
	}

	delete(locks, "0x0a1b2c3d")
	want = "waiting to lock <0x0d3a2f0a> (a java.lang.Object) held by thread 11"
	if got := LockReason(locks); got != want {
		t.Fatalf("LockReason = %q, want %q", got, want)
	}

	if got := LockReason(nil); got != "" {
		t.Fatalf("LockReason(nil) = %q", got)
	}
}
