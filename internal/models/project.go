// internal/models/project.go
package models

// ProjectSnapshot is a persisted, timestamped copy of the full scene list
// plus the concatenated script text. Immutable once written; a new save
// always carries a fresh ID.
type ProjectSnapshot struct {
	ID          string       `json:"id"`
	Timestamp   int64        `json:"timestamp"` // unix milliseconds
	Script      string       `json:"script"`
	Media       []SceneMedia `json:"media"`
	AspectRatio string       `json:"aspect_ratio,omitempty"`
	ArtStyle    string       `json:"art_style,omitempty"`
}

// ContentIdea is one suggested video concept for a topic.
type ContentIdea struct {
	Title string `json:"title"`
	Hook  string `json:"hook"`
}

// ThumbnailText is the two-line copy for a thumbnail overlay.
type ThumbnailText struct {
	TopText    string `json:"top_text"`
	BottomText string `json:"bottom_text"`
}

// FullScript is a generated script split into its intro hook and main body.
type FullScript struct {
	Intro string `json:"intro"`
	Body  string `json:"body"`
}

// Default production settings.
const (
	DefaultAspectRatio = "16:9"
	DefaultArtStyle    = "Stylized 3D cinematic"
)
