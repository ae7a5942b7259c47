// internal/models/scene.go
package models

// ScenePlan is one planned scene: a script segment plus the visual prompts
// derived for it. Index and OriginalScriptSegment never change after planning,
// and the prompts are immutable once set (regenerating an image reuses them).
type ScenePlan struct {
	OriginalScriptSegment string `json:"original_script_segment"`
	Prompt                string `json:"prompt"`
	VideoMotionPrompt     string `json:"video_motion_prompt,omitempty"`
	Index                 int    `json:"index"` // 1-based, contiguous
	IsIntro               bool   `json:"is_intro,omitempty"`
}

// SceneMedia is the mutable production state of one scene. Media URLs are
// independent of each other: generating video never clears audio, and a URL,
// once set, is only replaced by an explicit regenerate of that same field.
type SceneMedia struct {
	ScenePlan

	MediaURL string `json:"media_url"`
	VideoURL string `json:"video_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`

	// Transient per-media-type flags, never persisted as true.
	IsProcessing      bool `json:"is_processing,omitempty"`
	IsVideoProcessing bool `json:"is_video_processing,omitempty"`
	IsAudioProcessing bool `json:"is_audio_processing,omitempty"`
	IsUpscaling       bool `json:"is_upscaling,omitempty"`
}

// CloneSceneMedia returns a deep copy of the scene list. Snapshots must never
// alias the live array.
func CloneSceneMedia(scenes []SceneMedia) []SceneMedia {
	if scenes == nil {
		return nil
	}
	out := make([]SceneMedia, len(scenes))
	copy(out, scenes)
	return out
}
