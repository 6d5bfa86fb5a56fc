// Package registry persists scored artifacts and enforces the ingestion
// gate: only artifacts whose net score clears the qualification threshold
// are admitted as qualified.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/modelaudit/trustgate/pkg/meta"
)

var (
	ErrNotFound  = errors.New("artifact not found")
	ErrDuplicate = errors.New("artifact already registered")
)

// Artifact is one registered, scored artifact.
type Artifact struct {
	ID        string        `json:"id" yaml:"id"`
	Category  meta.Category `json:"category" yaml:"category"`
	URL       string        `json:"url" yaml:"url"`
	Name      string        `json:"name" yaml:"name"`
	NetScore  float64       `json:"net_score" yaml:"net_score"`
	Rating    []byte        `json:"-" yaml:"-"`
	Status    Status        `json:"status" yaml:"status"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
}

// NewArtifact stamps identity and qualification onto a scored artifact.
func NewArtifact(ref *meta.ArtifactRef, name string, netScore float64, rating []byte) *Artifact {
	return &Artifact{
		ID:        uuid.NewString(),
		Category:  ref.Category,
		URL:       ref.URL,
		Name:      name,
		NetScore:  netScore,
		Rating:    rating,
		Status:    StatusFor(netScore),
		CreatedAt: time.Now().UTC(),
	}
}

// ListQuery narrows a List call. Zero value lists everything.
type ListQuery struct {
	Category meta.Category
	Status   Status
	Limit    int
}

// Store is the persistence capability the engine depends on. Save returns
// ErrDuplicate when the (url, category) pair is already registered; Get and
// Delete return ErrNotFound for unknown IDs.
type Store interface {
	Save(ctx context.Context, a *Artifact) error
	Get(ctx context.Context, id string) (*Artifact, error)
	List(ctx context.Context, q ListQuery) ([]*Artifact, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) error
	Close() error
}
