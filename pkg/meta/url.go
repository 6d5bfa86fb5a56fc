package meta

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Category labels the kind of artifact under evaluation.
type Category string

const (
	CategoryModel   Category = "MODEL"
	CategoryDataset Category = "DATASET"
	CategoryCode    Category = "CODE"
)

var ErrUnsupportedURL = errors.New("unsupported artifact URL")

// ParseCategory normalizes a user supplied category label.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryModel:
		return CategoryModel, nil
	case CategoryDataset:
		return CategoryDataset, nil
	case CategoryCode:
		return CategoryCode, nil
	}
	return "", fmt.Errorf("invalid category: %q", s)
}

// ArtifactRef is a validated artifact identifier produced from a URL.
type ArtifactRef struct {
	URL        string   `json:"url" yaml:"url"`
	Host       string   `json:"host" yaml:"host"`
	Identifier string   `json:"identifier" yaml:"identifier"`
	Category   Category `json:"category" yaml:"category"`
}

// ParseArtifactURL classifies an artifact URL into a hosting platform,
// identifier, and category. Supported hosts: huggingface.co (models and
// datasets) and github.com (code repositories).
func ParseArtifactURL(raw string) (*ArtifactRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	parts := splitPath(u.Path)

	switch host {
	case "huggingface.co":
		if len(parts) >= 3 && parts[0] == "datasets" {
			return &ArtifactRef{
				URL:        raw,
				Host:       host,
				Identifier: parts[1] + "/" + parts[2],
				Category:   CategoryDataset,
			}, nil
		}
		if len(parts) >= 2 && parts[0] != "datasets" {
			return &ArtifactRef{
				URL:        raw,
				Host:       host,
				Identifier: parts[0] + "/" + parts[1],
				Category:   CategoryModel,
			}, nil
		}
	case "github.com":
		if len(parts) >= 2 {
			return &ArtifactRef{
				URL:        raw,
				Host:       host,
				Identifier: parts[0] + "/" + strings.TrimSuffix(parts[1], ".git"),
				Category:   CategoryCode,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
}

func splitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}
