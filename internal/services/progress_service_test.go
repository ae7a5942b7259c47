// internal/services/progress_service_test.go
package services

import (
	"context"
	"testing"
	"time"
)

func trackerStatus(tr *ProgressTracker) (int, string) {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()
	return tr.Progress, tr.Status
}

func TestCreateTracker_Idempotent(t *testing.T) {
	svc := NewProgressService()

	first := svc.CreateTracker("task-1")
	second := svc.CreateTracker("task-1")
	if first != second {
		t.Error("CreateTracker returned a new tracker for an existing task id")
	}

	got, ok := svc.GetTracker("task-1")
	if !ok || got != first {
		t.Error("GetTracker did not return the created tracker")
	}
	if _, ok := svc.GetTracker("unknown"); ok {
		t.Error("GetTracker found a tracker that was never created")
	}
}

func TestUpdateProgress_NeverMovesBackwards(t *testing.T) {
	tracker := NewProgressService().CreateTracker("task-1")

	tracker.UpdateProgress(60, "over half")
	tracker.UpdateProgress(40, "stale update")

	progress, _ := trackerStatus(tracker)
	if progress != 60 {
		t.Errorf("progress = %d after stale update, want 60", progress)
	}
}

func TestFinish_IsTerminal(t *testing.T) {
	tracker := NewProgressService().CreateTracker("task-1")
	tracker.Complete("done")

	// Later transitions are ignored once finished.
	tracker.Fail("too late")
	tracker.UpdateProgress(10, "ghost update")

	progress, status := trackerStatus(tracker)
	if status != TaskStatusCompleted {
		t.Errorf("status = %q, want %q", status, TaskStatusCompleted)
	}
	if progress != 100 {
		t.Errorf("progress = %d, want 100", progress)
	}

	select {
	case <-tracker.Done:
	default:
		t.Error("Done channel not closed after Complete")
	}
}

func TestSubscribe_DeliversCurrentStateFirst(t *testing.T) {
	tracker := NewProgressService().CreateTracker("task-1")
	tracker.UpdateProgress(30, "warming up")

	updates := tracker.Subscribe()
	defer tracker.Unsubscribe(updates)

	select {
	case update := <-updates:
		if update.Progress != 30 || update.Status != TaskStatusRunning {
			t.Errorf("initial update = %+v, want progress 30 running", update)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial update delivered on subscribe")
	}

	tracker.UpdateProgress(70, "nearly there")
	select {
	case update := <-updates:
		if update.Progress != 70 {
			t.Errorf("broadcast progress = %d, want 70", update.Progress)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast update never arrived")
	}
}

func TestCancel_StopsRegisteredContext(t *testing.T) {
	svc := NewProgressService()
	tracker := svc.CreateTracker("task-1")

	ctx, cancel := context.WithCancel(context.Background())
	tracker.RegisterCancel(cancel)

	if !svc.Cancel("task-1") {
		t.Fatal("Cancel() = false for a running task with a cancel func")
	}
	if ctx.Err() == nil {
		t.Error("registered context not cancelled")
	}

	tracker.CancelDone("stopped")
	if svc.Cancel("task-1") {
		t.Error("Cancel() = true for an already-finished task")
	}
	if svc.Cancel("unknown") {
		t.Error("Cancel() = true for an unknown task")
	}
}

func TestCleanupCompletedTasks(t *testing.T) {
	svc := NewProgressService()

	finished := svc.CreateTracker("finished")
	finished.Complete("done")
	finished.mutex.Lock()
	finished.UpdateTime = time.Now().Add(-time.Hour)
	finished.mutex.Unlock()

	running := svc.CreateTracker("running")
	running.mutex.Lock()
	running.UpdateTime = time.Now().Add(-time.Hour)
	running.mutex.Unlock()

	svc.CleanupCompletedTasks(30 * time.Minute)

	if _, ok := svc.GetTracker("finished"); ok {
		t.Error("old finished tracker survived cleanup")
	}
	if _, ok := svc.GetTracker("running"); !ok {
		t.Error("running tracker removed by cleanup")
	}
}
