// internal/services/progress_service.go
package services

import (
	"fmt"
	"sync"
	"time"
)

// Task status values reported through progress updates.
const (
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
	TaskStatusCancelled = "cancelled"
)

// ProgressUpdate is one progress event pushed to subscribers.
type ProgressUpdate struct {
	Progress int    `json:"progress"` // 0-100
	Message  string `json:"message"`
	Status   string `json:"status"`
}

// ProgressTracker tracks one long-running task (batch image production,
// video generation, export) and fans updates out to subscribers.
type ProgressTracker struct {
	TaskID      string
	Progress    int
	Message     string
	Status      string
	StartTime   time.Time
	UpdateTime  time.Time
	Subscribers map[chan ProgressUpdate]bool
	Done        chan struct{}
	mutex       sync.Mutex

	cancel func()
}

// ProgressService owns all live trackers.
type ProgressService struct {
	trackers map[string]*ProgressTracker
	mutex    sync.RWMutex
}

func NewProgressService() *ProgressService {
	return &ProgressService{
		trackers: make(map[string]*ProgressTracker),
	}
}

// CreateTracker creates a tracker for taskID, or returns the existing one.
func (s *ProgressService) CreateTracker(taskID string) *ProgressTracker {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if tracker, exists := s.trackers[taskID]; exists {
		return tracker
	}

	tracker := &ProgressTracker{
		TaskID:      taskID,
		Progress:    0,
		Message:     "starting",
		Status:      TaskStatusRunning,
		StartTime:   time.Now(),
		UpdateTime:  time.Now(),
		Subscribers: make(map[chan ProgressUpdate]bool),
		Done:        make(chan struct{}),
	}

	s.trackers[taskID] = tracker
	return tracker
}

// GetTracker looks up a tracker by task id.
func (s *ProgressService) GetTracker(taskID string) (*ProgressTracker, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	tracker, exists := s.trackers[taskID]
	return tracker, exists
}

// Cancel asks the task behind taskID to stop. Returns false when the
// task is unknown or no longer running.
func (s *ProgressService) Cancel(taskID string) bool {
	tracker, exists := s.GetTracker(taskID)
	if !exists {
		return false
	}

	tracker.mutex.Lock()
	cancel := tracker.cancel
	running := tracker.Status == TaskStatusRunning
	tracker.mutex.Unlock()

	if !running || cancel == nil {
		return false
	}
	cancel()
	return true
}

// RegisterCancel wires a context cancel function into the tracker so
// the task can be stopped through the service.
func (t *ProgressTracker) RegisterCancel(cancel func()) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.cancel = cancel
}

// UpdateProgress raises the progress percentage and broadcasts the
// update. Progress never moves backwards.
func (t *ProgressTracker) UpdateProgress(progress int, message string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if progress > t.Progress {
		t.Progress = progress
	}
	if message != "" {
		t.Message = message
	}
	t.UpdateTime = time.Now()

	t.broadcastLocked()
}

// Complete marks the task finished and closes the Done channel.
func (t *ProgressTracker) Complete(message string) {
	t.finish(TaskStatusCompleted, 100, message, "task completed")
}

// Fail marks the task failed and closes the Done channel.
func (t *ProgressTracker) Fail(errorMsg string) {
	t.finish(TaskStatusFailed, -1, fmt.Sprintf("task failed: %s", errorMsg), "")
}

// CancelDone marks the task cancelled and closes the Done channel.
// Partial results written before cancellation stay in place.
func (t *ProgressTracker) CancelDone(message string) {
	t.finish(TaskStatusCancelled, -1, message, "task cancelled")
}

func (t *ProgressTracker) finish(status string, progress int, message, fallback string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.Status != TaskStatusRunning {
		return
	}

	if progress >= 0 {
		t.Progress = progress
	}
	if message != "" {
		t.Message = message
	} else {
		t.Message = fallback
	}
	t.Status = status
	t.UpdateTime = time.Now()

	t.broadcastLocked()
	close(t.Done)
}

func (t *ProgressTracker) broadcastLocked() {
	update := ProgressUpdate{
		Progress: t.Progress,
		Message:  t.Message,
		Status:   t.Status,
	}

	// Non-blocking send, slow subscribers miss intermediate updates.
	for subscriber := range t.Subscribers {
		select {
		case subscriber <- update:
		default:
		}
	}
}

// Subscribe registers a new update channel and immediately delivers the
// current state on it.
func (t *ProgressTracker) Subscribe() chan ProgressUpdate {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subscriber := make(chan ProgressUpdate, 10)
	t.Subscribers[subscriber] = true

	subscriber <- ProgressUpdate{
		Progress: t.Progress,
		Message:  t.Message,
		Status:   t.Status,
	}

	return subscriber
}

// Unsubscribe removes and closes a subscriber channel.
func (t *ProgressTracker) Unsubscribe(subscriber chan ProgressUpdate) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	delete(t.Subscribers, subscriber)
	close(subscriber)
}

// CleanupCompletedTasks drops finished trackers older than maxAge.
func (s *ProgressService) CleanupCompletedTasks(maxAge time.Duration) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for id, tracker := range s.trackers {
		tracker.mutex.Lock()
		isFinished := tracker.Status != TaskStatusRunning
		isOld := now.Sub(tracker.UpdateTime) > maxAge
		tracker.mutex.Unlock()

		if isFinished && isOld {
			delete(s.trackers, id)
		}
	}
}
