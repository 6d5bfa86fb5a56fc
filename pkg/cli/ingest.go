package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/modelaudit/trustgate/pkg/blob"
	"github.com/modelaudit/trustgate/pkg/ingest"
	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/modelaudit/trustgate/pkg/registry"
	"github.com/modelaudit/trustgate/pkg/score"
)

var (
	skipMirrorFlag = &cli.BoolFlag{
		Name:  "skip-mirror",
		Usage: "Register without mirroring files to the blob store",
	}

	ingestCmd = &cli.Command{
		Name:      "ingest",
		Aliases:   []string{"i"},
		Usage:     "Score an artifact and register it when it clears the gate",
		ArgsUsage: "URL",
		Action:    cmdIngest,
		Flags: []cli.Flag{
			categoryFlag,
			skipMirrorFlag,
		},
	}
)

// ingestResult is the command output: the stored record plus the full
// rating and the optional mirror summary.
type ingestResult struct {
	Artifact *registry.Artifact `json:"artifact" yaml:"artifact"`
	Rating   *score.Rating      `json:"rating" yaml:"rating"`
	Mirror   *ingest.Result     `json:"mirror,omitempty" yaml:"mirror,omitempty"`
}

func cmdIngest(c *cli.Context) error {
	cfg := getConfig(c)
	ctx := c.Context

	ref, snap, rating, err := scoreArtifact(ctx, cfg, c.Args().First(), c.String(categoryFlag.Name))
	if err != nil {
		return err
	}

	ratingJSON, err := json.Marshal(rating)
	if err != nil {
		return fmt.Errorf("encoding rating: %w", err)
	}

	name := snap.Str(meta.KeyName)
	if name == "" {
		name = ref.Identifier
	}

	artifact := registry.NewArtifact(ref, name, rating.NetScore, ratingJSON)
	if err := cfg.Store.Save(ctx, artifact); err != nil {
		return fmt.Errorf("registering artifact: %w", err)
	}

	res := &ingestResult{Artifact: artifact, Rating: rating}

	if artifact.Status == registry.StatusDisqualified {
		slog.Warn("artifact disqualified by ingestion gate",
			"url", ref.URL, "net_score", rating.NetScore, "threshold", registry.QualifyThreshold)
		return encode(res)
	}

	if cfg.Env.blobConfigured() && !c.Bool(skipMirrorFlag.Name) {
		store, err := blob.NewStore(cfg.Env.blobConfig())
		if err != nil {
			return fmt.Errorf("creating blob store: %w", err)
		}
		worker := ingest.NewWorker(store, ingest.Config{
			HFToken:   cfg.Env.HFToken,
			HFBaseURL: cfg.Env.HFBaseURL,
		})
		mirror, err := worker.Mirror(ctx, artifact.ID, ref, snap)
		if err != nil {
			return fmt.Errorf("mirroring artifact files: %w", err)
		}
		res.Mirror = mirror
	}

	return encode(res)
}
