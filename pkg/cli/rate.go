package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/modelaudit/trustgate/pkg/score"
)

var (
	categoryFlag = &cli.StringFlag{
		Name:  "category",
		Usage: "Artifact category [MODEL, DATASET, CODE] (default: inferred from URL)",
	}

	rateCmd = &cli.Command{
		Name:      "rate",
		Aliases:   []string{"r"},
		Usage:     "Score an artifact URL without registering it",
		ArgsUsage: "URL",
		Action:    cmdRate,
		Flags: []cli.Flag{
			categoryFlag,
		},
	}
)

func cmdRate(c *cli.Context) error {
	cfg := getConfig(c)

	_, _, rating, err := scoreArtifact(c.Context, cfg, c.Args().First(), c.String(categoryFlag.Name))
	if err != nil {
		return err
	}

	return encode(rating)
}

// scoreArtifact resolves, retrieves, and evaluates one artifact URL. The
// category flag overrides the URL-derived category when set.
func scoreArtifact(ctx context.Context, cfg *appConfig, rawURL, category string) (*meta.ArtifactRef, *meta.Snapshot, *score.Rating, error) {
	if rawURL == "" {
		return nil, nil, nil, errors.New("artifact URL is required")
	}

	ref, err := meta.ParseArtifactURL(rawURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parsing artifact URL: %w", err)
	}
	if category != "" {
		cat, err := meta.ParseCategory(category)
		if err != nil {
			return nil, nil, nil, err
		}
		ref.Category = cat
	}

	retriever := meta.NewRetriever(ctx, cfg.Env.retrieverConfig())
	snap, err := retriever.Retrieve(ctx, ref)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("retrieving artifact metadata: %w", err)
	}

	calc := score.NewCalculator(cfg.Env.llmConfig())
	rating := calc.Evaluate(ctx, snap, ref.Category)

	return ref, snap, rating, nil
}
