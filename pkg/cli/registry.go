package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/modelaudit/trustgate/pkg/registry"
)

const listResultLimitDefault = 100

var (
	listLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limits number of results returned",
		Value: listResultLimitDefault,
	}

	listCategoryFlag = &cli.StringFlag{
		Name:  "category",
		Usage: "Filter by category [MODEL, DATASET, CODE]",
	}

	listStatusFlag = &cli.StringFlag{
		Name:  "status",
		Usage: "Filter by status [qualified, disqualified]",
	}

	listCmd = &cli.Command{
		Name:    "list",
		Aliases: []string{"l"},
		Usage:   "List registered artifacts",
		Action:  cmdList,
		Flags: []cli.Flag{
			listLimitFlag,
			listCategoryFlag,
			listStatusFlag,
		},
	}

	getCmd = &cli.Command{
		Name:      "get",
		Aliases:   []string{"g"},
		Usage:     "Get one registered artifact with its full rating",
		ArgsUsage: "ID",
		Action:    cmdGet,
	}

	deleteCmd = &cli.Command{
		Name:      "delete",
		Aliases:   []string{"d"},
		Usage:     "Delete one registered artifact",
		ArgsUsage: "ID",
		Action:    cmdDelete,
	}

	resetCmd = &cli.Command{
		Name:   "reset",
		Usage:  "Delete all registered artifacts",
		Action: cmdReset,
	}
)

func cmdList(c *cli.Context) error {
	cfg := getConfig(c)

	q := registry.ListQuery{Limit: c.Int(listLimitFlag.Name)}
	if cat := c.String(listCategoryFlag.Name); cat != "" {
		parsed, err := meta.ParseCategory(cat)
		if err != nil {
			return err
		}
		q.Category = parsed
	}
	if status := c.String(listStatusFlag.Name); status != "" {
		parsed, err := parseStatus(status)
		if err != nil {
			return err
		}
		q.Status = parsed
	}

	list, err := cfg.Store.List(c.Context, q)
	if err != nil {
		return fmt.Errorf("listing artifacts: %w", err)
	}
	return encode(list)
}

// artifactDetail adds the stored rating, decoded, to the record output.
type artifactDetail struct {
	registry.Artifact `yaml:",inline"`
	Rating            map[string]any `json:"rating" yaml:"rating"`
}

func newArtifactDetail(a *registry.Artifact) *artifactDetail {
	d := &artifactDetail{Artifact: *a}
	if err := json.Unmarshal(a.Rating, &d.Rating); err != nil {
		slog.Debug("error decoding stored rating", "id", a.ID, "error", err)
	}
	return d
}

func cmdGet(c *cli.Context) error {
	cfg := getConfig(c)

	id := c.Args().First()
	if id == "" {
		return errors.New("artifact ID is required")
	}

	a, err := cfg.Store.Get(c.Context, id)
	if err != nil {
		return fmt.Errorf("getting artifact: %w", err)
	}
	return encode(newArtifactDetail(a))
}

func cmdDelete(c *cli.Context) error {
	cfg := getConfig(c)

	id := c.Args().First()
	if id == "" {
		return errors.New("artifact ID is required")
	}

	if err := cfg.Store.Delete(c.Context, id); err != nil {
		return fmt.Errorf("deleting artifact: %w", err)
	}
	fmt.Printf("artifact %s deleted\n", id)
	return nil
}

func cmdReset(c *cli.Context) error {
	cfg := getConfig(c)

	if err := cfg.Store.Reset(c.Context); err != nil {
		return fmt.Errorf("resetting registry: %w", err)
	}
	fmt.Println("registry reset")
	return nil
}

func parseStatus(s string) (registry.Status, error) {
	switch registry.Status(s) {
	case registry.StatusQualified:
		return registry.StatusQualified, nil
	case registry.StatusDisqualified:
		return registry.StatusDisqualified, nil
	}
	return "", fmt.Errorf("invalid status: %q", s)
}
