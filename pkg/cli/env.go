package cli

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/modelaudit/trustgate/pkg/blob"
	"github.com/modelaudit/trustgate/pkg/meta"
	"github.com/modelaudit/trustgate/pkg/score"
)

// envConfig is the ambient configuration read once at startup. A .env file
// in the working directory is loaded first when present.
type envConfig struct {
	GitHubToken string
	HFToken     string
	HFBaseURL   string

	LLMURL   string
	LLMKey   string
	LLMModel string

	DatabaseURL string

	BlobEndpoint  string
	BlobRegion    string
	BlobAccessKey string
	BlobSecretKey string
	BlobBucket    string
	BlobUseSSL    bool
}

func loadEnv() *envConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("no .env file loaded", "error", err)
	}

	useSSL, _ := strconv.ParseBool(os.Getenv("BLOB_USE_SSL"))

	return &envConfig{
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		HFToken:       os.Getenv("HF_TOKEN"),
		HFBaseURL:     os.Getenv("HF_BASE_URL"),
		LLMURL:        os.Getenv("LLM_API_URL"),
		LLMKey:        os.Getenv("LLM_API_KEY"),
		LLMModel:      os.Getenv("LLM_MODEL"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		BlobEndpoint:  os.Getenv("BLOB_ENDPOINT"),
		BlobRegion:    os.Getenv("BLOB_REGION"),
		BlobAccessKey: os.Getenv("BLOB_ACCESS_KEY"),
		BlobSecretKey: os.Getenv("BLOB_SECRET_KEY"),
		BlobBucket:    os.Getenv("BLOB_BUCKET"),
		BlobUseSSL:    useSSL,
	}
}

// githubToken prefers the environment variable and falls back to the token
// saved by the auth command.
func (e *envConfig) githubToken() string {
	if e.GitHubToken != "" {
		return e.GitHubToken
	}
	token, err := getGitHubToken()
	if err != nil {
		slog.Debug("no stored GitHub token", "error", err)
		return ""
	}
	return token
}

func (e *envConfig) retrieverConfig() meta.RetrieverConfig {
	return meta.RetrieverConfig{
		GitHubToken: e.githubToken(),
		HFToken:     e.HFToken,
		HFBaseURL:   e.HFBaseURL,
	}
}

func (e *envConfig) llmConfig() score.LLMConfig {
	return score.LLMConfig{
		URL:   e.LLMURL,
		Token: e.LLMKey,
		Model: e.LLMModel,
	}
}

func (e *envConfig) blobConfigured() bool {
	return e.BlobEndpoint != ""
}

func (e *envConfig) blobConfig() blob.Config {
	return blob.Config{
		Endpoint:  e.BlobEndpoint,
		Region:    e.BlobRegion,
		AccessKey: e.BlobAccessKey,
		SecretKey: e.BlobSecretKey,
		Bucket:    e.BlobBucket,
		UseSSL:    e.BlobUseSSL,
	}
}
