package database

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/brencon/clipsy/internal/classify"
)

// Entry is one row of clipboard history. Content holds the verbatim
// payload for text and file entries; image payloads live in the artifact
// store and the row only carries their path.
type Entry struct {
	bun.BaseModel `bun:"table:entries"`

	ID            int64         `bun:"id,pk,autoincrement" json:"id"`
	Kind          classify.Kind `bun:"kind,notnull" json:"kind"`
	Content       string        `bun:"content" json:"content,omitempty"`
	ArtifactPath  string        `bun:"artifact_path" json:"artifact_path,omitempty"`
	ThumbPath     string        `bun:"thumb_path" json:"thumb_path,omitempty"`
	Preview       string        `bun:"preview,notnull" json:"preview"`
	Sensitive     bool          `bun:"sensitive" json:"sensitive"`
	MaskedPreview string        `bun:"masked_preview" json:"masked_preview,omitempty"`
	Hash          string        `bun:"hash,unique,notnull" json:"hash"`
	Size          int           `bun:"size,notnull" json:"size"`
	Pinned        bool          `bun:"pinned" json:"pinned"`

	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	LastSeenAt time.Time `bun:"last_seen_at,nullzero,notnull,default:current_timestamp" json:"last_seen_at"`
}

// DisplayLabel returns the preview that is safe to render: the masked
// preview for sensitive entries, the plain preview otherwise.
func (e *Entry) DisplayLabel() string {
	if e.Sensitive && e.MaskedPreview != "" {
		return e.MaskedPreview
	}
	return e.Preview
}
