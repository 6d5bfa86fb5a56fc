// Package ingest mirrors the files of a qualified artifact from its hosting
// platform into the blob store.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/modelaudit/trustgate/pkg/net"
)

const defaultHFBaseURL = "https://huggingface.co"

// FileStore is the destination capability. Satisfied by blob.Store.
type FileStore interface {
	Put(ctx context.Context, artifactID, name string, r io.Reader, size int64) error
}

// Config for a mirror worker.
type Config struct {
	HFToken   string
	HFBaseURL string
	// Parallelism bounds concurrent file transfers. Defaults to NumCPU.
	Parallelism int
}

// Worker streams artifact files to a FileStore.
type Worker struct {
	store FileStore
	cfg   Config
}

func NewWorker(store FileStore, cfg Config) *Worker {
	if cfg.HFBaseURL == "" {
		cfg.HFBaseURL = defaultHFBaseURL
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.NumCPU()
	}
	return &Worker{store: store, cfg: cfg}
}

// Result summarizes one mirror run. Individual file failures are not fatal;
// they are counted and logged.
type Result struct {
	ArtifactID string   `json:"artifact_id" yaml:"artifact_id"`
	Mirrored   int      `json:"mirrored" yaml:"mirrored"`
	Failed     []string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Mirror transfers every file in the snapshot listing to the store under
// artifactID. Only Hugging Face hosted artifacts carry a file listing worth
// mirroring; other hosts yield an empty result.
func (w *Worker) Mirror(ctx context.Context, artifactID string, ref *meta.ArtifactRef, snap *meta.Snapshot) (*Result, error) {
	res := &Result{ArtifactID: artifactID}

	if ref.Host != "huggingface.co" {
		slog.Debug("no mirrorable file listing for host", "host", ref.Host)
		return res, nil
	}

	files := snap.Files(meta.KeySiblings)
	if len(files) == 0 {
		return res, nil
	}

	type outcome struct {
		name string
		err  error
	}
	outcomes := make([]outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(files), w.cfg.Parallelism))

	for i, f := range files {
		g.Go(func() error {
			err := w.mirrorFile(gctx, artifactID, ref, f.Name)
			outcomes[i] = outcome{name: f.Name, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		if o.err != nil {
			slog.Warn("file mirror failed", "artifact", artifactID, "file", o.name, "error", o.err)
			res.Failed = append(res.Failed, o.name)
			continue
		}
		res.Mirrored++
	}

	slog.Info("artifact mirrored", "artifact", artifactID,
		"mirrored", res.Mirrored, "failed", len(res.Failed))
	return res, nil
}

func (w *Worker) mirrorFile(ctx context.Context, artifactID string, ref *meta.ArtifactRef, name string) error {
	body, size, err := net.Open(ctx, w.resolveURL(ref, name), w.cfg.HFToken)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", name, err)
	}
	defer body.Close()

	return w.store.Put(ctx, artifactID, name, body, size)
}

func (w *Worker) resolveURL(ref *meta.ArtifactRef, name string) string {
	base := strings.TrimSuffix(w.cfg.HFBaseURL, "/")
	if ref.Category == meta.CategoryDataset {
		return fmt.Sprintf("%s/datasets/%s/resolve/main/%s", base, ref.Identifier, name)
	}
	return fmt.Sprintf("%s/%s/resolve/main/%s", base, ref.Identifier, name)
}
