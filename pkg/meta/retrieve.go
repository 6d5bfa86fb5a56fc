package meta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/go-github/v83/github"
	"github.com/modelaudit/trustgate/pkg/net"
)

const defaultHFBaseURL = "https://huggingface.co"

// RetrieverConfig carries the tokens and endpoints for metadata retrieval.
// Zero value works for anonymous access to public artifacts.
type RetrieverConfig struct {
	GitHubToken string
	HFToken     string
	HFBaseURL   string
}

// Retriever builds metadata snapshots for artifacts hosted on Hugging Face
// or GitHub.
type Retriever struct {
	cfg RetrieverConfig
	gh  *github.Client
}

func NewRetriever(ctx context.Context, cfg RetrieverConfig) *Retriever {
	if cfg.HFBaseURL == "" {
		cfg.HFBaseURL = defaultHFBaseURL
	}
	gh := github.NewClient(nil)
	if cfg.GitHubToken != "" {
		gh = github.NewClient(net.GetOAuthClient(ctx, cfg.GitHubToken))
	}
	return &Retriever{cfg: cfg, gh: gh}
}

// NewRetrieverWithClient is used by tests to inject a GitHub client pointed
// at a fake server.
func NewRetrieverWithClient(cfg RetrieverConfig, gh *github.Client) *Retriever {
	if cfg.HFBaseURL == "" {
		cfg.HFBaseURL = defaultHFBaseURL
	}
	return &Retriever{cfg: cfg, gh: gh}
}

// Retrieve fetches the metadata snapshot for the referenced artifact.
// The returned snapshot is sparse when parts of the fetch fail; scoring
// tolerates any subset of keys.
func (r *Retriever) Retrieve(ctx context.Context, ref *ArtifactRef) (*Snapshot, error) {
	if ref == nil {
		return nil, errors.New("artifact reference is required")
	}
	if ref.Category == CategoryCode {
		return r.retrieveGitHub(ctx, ref.Identifier)
	}
	return r.retrieveHuggingFace(ctx, ref.Identifier, ref.Category)
}

func (r *Retriever) retrieveHuggingFace(ctx context.Context, id string, category Category) (*Snapshot, error) {
	apiPath := "models"
	resolvePrefix := ""
	if category == CategoryDataset {
		apiPath = "datasets"
		resolvePrefix = "datasets/"
	}

	var data map[string]any
	apiURL := fmt.Sprintf("%s/api/%s/%s", r.cfg.HFBaseURL, apiPath, id)
	if err := net.GetJSON(ctx, apiURL, &data); err != nil {
		return nil, fmt.Errorf("error fetching metadata for %s: %w", id, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	data[KeyName] = id

	// Model card front matter occasionally carries the dataset list.
	if _, ok := data[KeyDatasets]; !ok {
		if card, ok := data["cardData"].(map[string]any); ok {
			if ds, ok := card[KeyDatasets]; ok {
				data[KeyDatasets] = ds
			}
		}
	}

	readmeURL := fmt.Sprintf("%s/%s%s/resolve/main/README.md", r.cfg.HFBaseURL, resolvePrefix, id)
	readme, err := net.GetText(ctx, readmeURL, r.cfg.HFToken)
	if err != nil {
		slog.Debug("no readme for artifact", "id", id, "error", err)
	} else {
		data[KeyReadme] = readme
	}

	return NewSnapshot(data), nil
}

func (r *Retriever) retrieveGitHub(ctx context.Context, id string) (*Snapshot, error) {
	owner, repo, ok := strings.Cut(id, "/")
	if !ok {
		return nil, fmt.Errorf("invalid repository identifier: %q", id)
	}

	repository, _, err := r.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("error fetching repository %s: %w", id, err)
	}

	data := map[string]any{
		KeyName:        id,
		KeyAuthor:      owner,
		KeyStars:       int64(repository.GetStargazersCount()),
		KeyDescription: repository.GetDescription(),
	}
	if lic := repository.GetLicense(); lic != nil {
		data[KeyLicense] = lic.GetSPDXID()
	}
	if repository.UpdatedAt != nil {
		data[KeyLastModified] = repository.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
	}

	if count, ok := r.contributorCount(ctx, owner, repo); ok {
		data[KeyContributors] = count
	}

	if readme, _, err := r.gh.Repositories.GetReadme(ctx, owner, repo, nil); err == nil {
		if content, err := readme.GetContent(); err == nil {
			data[KeyReadme] = content
		}
	} else {
		slog.Debug("no readme for repository", "id", id, "error", err)
	}

	return NewSnapshot(data), nil
}

// contributorCount uses the pagination trick: requesting one contributor per
// page makes the last page number equal the total count.
func (r *Retriever) contributorCount(ctx context.Context, owner, repo string) (int64, bool) {
	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	}
	contribs, resp, err := r.gh.Repositories.ListContributors(ctx, owner, repo, opts)
	if err != nil {
		slog.Debug("error listing contributors", "owner", owner, "repo", repo, "error", err)
		return 0, false
	}
	if resp != nil && resp.LastPage > 0 {
		return int64(resp.LastPage), true
	}
	return int64(len(contribs)), true
}
