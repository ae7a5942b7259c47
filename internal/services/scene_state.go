// internal/services/scene_state.go
package services

import (
	"sync"

	"github.com/hyeonlab/sceneforge/internal/models"
)

// sceneState holds the live production state behind a copy-on-write
// slice. Readers get snapshots; every mutation replaces the slice, so a
// reader holding an old copy never observes a partial update.
type sceneState struct {
	mu       sync.RWMutex
	script   string
	list     []models.SceneMedia
	aspect   string
	artStyle string
}

func (st *sceneState) set(script string, scenes []models.SceneMedia, aspectRatio, artStyle string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.script = script
	st.list = scenes
	st.aspect = aspectRatio
	st.artStyle = artStyle
}

func (st *sceneState) scenes() []models.SceneMedia {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return models.CloneSceneMedia(st.list)
}

// find looks a scene up by its 1-based index and returns a copy.
func (st *sceneState) find(index int) (models.SceneMedia, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	for _, scene := range st.list {
		if scene.Index == index {
			return scene, true
		}
	}
	return models.SceneMedia{}, false
}

// update applies fn to the scene with the given index on a fresh copy
// of the list, then swaps the copy in. Unknown indexes are a no-op.
func (st *sceneState) update(index int, fn func(*models.SceneMedia)) {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := models.CloneSceneMedia(st.list)
	for i := range next {
		if next[i].Index == index {
			fn(&next[i])
			st.list = next
			return
		}
	}
}

func (st *sceneState) aspectRatio() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.aspect == "" {
		return models.DefaultAspectRatio
	}
	return st.aspect
}

func (st *sceneState) setAspectRatio(aspectRatio string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.aspect = aspectRatio
}

// state returns everything a snapshot needs in one locked read.
func (st *sceneState) state() (script string, scenes []models.SceneMedia, aspectRatio, artStyle string) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	aspectRatio = st.aspect
	if aspectRatio == "" {
		aspectRatio = models.DefaultAspectRatio
	}
	artStyle = st.artStyle
	if artStyle == "" {
		artStyle = models.DefaultArtStyle
	}
	return st.script, models.CloneSceneMedia(st.list), aspectRatio, artStyle
}
