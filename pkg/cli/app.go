// Package cli wires the trustgate commands: authentication, artifact
// rating, gated ingestion, registry queries, and the HTTP server.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/modelaudit/trustgate/pkg/logging"
	"github.com/modelaudit/trustgate/pkg/registry"
)

const (
	dirMode      = 0700
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the Sqlite registry file (ignored when DATABASE_URL is set)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Debug bool
	Env   *envConfig
	Store registry.Store
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 "trustgate",
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Score ML artifacts and gate their ingestion into a registry",
		Flags: []urfave.Flag{
			debugFlag,
			dbFilePathFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			authCmd,
			rateCmd,
			ingestCmd,
			listCmd,
			getCmd,
			deleteCmd,
			resetCmd,
			serverCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				logging.SetDefaultCLILogger("debug")
			}

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			env := loadEnv()

			store, err := openStore(env, c.String(dbFilePathFlag.Name))
			if err != nil {
				return fmt.Errorf("opening registry: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Debug: c.Bool(debugFlag.Name),
				Env:   env,
				Store: store,
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.Store != nil {
				cfg.Store.Close()
			}
			return nil
		},
	}
}

func openStore(env *envConfig, dbPath string) (registry.Store, error) {
	if env.DatabaseURL != "" {
		return registry.NewPostgresStore(env.DatabaseURL)
	}
	if dbPath == "" {
		dbPath = path.Join(getHomeDir(), registry.DataFileName)
	}
	return registry.NewSQLiteStore(dbPath)
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}

	dirPath := filepath.Join(home, ".trustgate")
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		slog.Debug("creating dir", "path", dirPath)
		if err := os.Mkdir(dirPath, dirMode); err != nil {
			slog.Debug("error creating dir", "path", dirPath, "error", err)
			return home
		}
	}
	return dirPath
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
