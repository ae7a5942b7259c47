// internal/services/lock_manager.go
package services

import (
	"fmt"
	"sync"
	"time"
)

// LockManager serializes per-scene media operations. Two generate calls
// against the same scene index run one after the other; different
// scenes proceed independently.
type LockManager struct {
	sceneLocks map[string]*lockInfo
	globalLock sync.RWMutex
}

type lockInfo struct {
	mutex    *sync.Mutex
	lastUsed time.Time
}

func NewLockManager() *LockManager {
	return &LockManager{
		sceneLocks: make(map[string]*lockInfo),
	}
}

func sceneLockKey(sceneIndex int, mediaType string) string {
	return fmt.Sprintf("scene-%d-%s", sceneIndex, mediaType)
}

func (lm *LockManager) getLock(key string) *sync.Mutex {
	lm.globalLock.RLock()
	if info, exists := lm.sceneLocks[key]; exists {
		lm.globalLock.RUnlock()
		return info.mutex
	}
	lm.globalLock.RUnlock()

	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	if info, exists := lm.sceneLocks[key]; exists {
		info.lastUsed = time.Now()
		return info.mutex
	}

	info := &lockInfo{mutex: &sync.Mutex{}, lastUsed: time.Now()}
	lm.sceneLocks[key] = info
	return info.mutex
}

// ExecuteWithSceneLock runs fn while holding the lock for one scene's
// media type.
func (lm *LockManager) ExecuteWithSceneLock(sceneIndex int, mediaType string, fn func() error) error {
	lock := lm.getLock(sceneLockKey(sceneIndex, mediaType))
	lock.Lock()
	defer lock.Unlock()

	return fn()
}

// Cleanup drops locks unused for longer than maxAge. Called
// opportunistically; a dropped lock is simply recreated on next use.
func (lm *LockManager) Cleanup(maxAge time.Duration) {
	lm.globalLock.Lock()
	defer lm.globalLock.Unlock()

	now := time.Now()
	for key, info := range lm.sceneLocks {
		if now.Sub(info.lastUsed) > maxAge {
			delete(lm.sceneLocks, key)
		}
	}
}
