package stacktrace

import (
	"fmt"
	"sort"
	"strings"

	"crashview/common/format/event"
)

type ThreadStateName string

const (
	ThreadRunnable     ThreadStateName = "Runnable"
	ThreadTimedWaiting ThreadStateName = "Timed waiting"
	ThreadWaiting      ThreadStateName = "Waiting"
	ThreadBlocked      ThreadStateName = "Blocked"
	ThreadNew          ThreadStateName = "New"
	ThreadTerminated   ThreadStateName = "Terminated"
)

// ThreadState maps a platform thread state (JVM, Android ART, Dalvik) onto a display state.
// Unknown states map to "".
func ThreadState(state string) ThreadStateName {
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case "RUNNABLE", "RUNNING", "NATIVE", "SUSPENDED":
		return ThreadRunnable
	case "TIMED_WAITING", "TIMED_WAIT", "SLEEPING":
		return ThreadTimedWaiting
	case "WAITING", "WAIT", "VMWAIT", "WAITING_FOR_GC", "WAITING_PERFORMING_GC":
		return ThreadWaiting
	case "BLOCKED", "MONITOR":
		return ThreadBlocked
	case "NEW", "STARTING", "INITIALIZING":
		return ThreadNew
	case "TERMINATED", "ZOMBIE":
		return ThreadTerminated
	}
	return ""
}

// LockReason describes the first held lock of a known type. Locks are inspected in key order.
func LockReason(heldLocks map[string]event.Lock) string {
	keys := make([]string, 0, len(heldLocks))
	for k := range heldLocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		lock := heldLocks[k]
		object := lockObject(lock)
		switch lock.Type {
		case event.LockLocked:
			return fmt.Sprintf("locked %s", object)
		case event.LockWaiting:
			return fmt.Sprintf("waiting on %s", object)
		case event.LockSleeping:
			return fmt.Sprintf("sleeping on %s", object)
		case event.LockBlocked:
			reason := fmt.Sprintf("waiting to lock %s", object)
			if lock.ThreadID != "" {
				reason += fmt.Sprintf(" held by thread %s", lock.ThreadID)
			}
			return reason
		}
	}
	return ""
}

func lockObject(lock event.Lock) string {
	class := lock.ClassName
	if lock.PackageName != "" {
		class = lock.PackageName + "." + class
	}
	if class == "" {
		return fmt.Sprintf("<%s>", lock.Address)
	}
	return fmt.Sprintf("<%s> (a %s)", lock.Address, class)
}
