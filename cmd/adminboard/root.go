package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/thesavant42/adminboard/internal/api"
	"github.com/thesavant42/adminboard/internal/config"
	"github.com/thesavant42/adminboard/internal/db"
	"github.com/thesavant42/adminboard/internal/logging"
	"github.com/thesavant42/adminboard/internal/session"
	"github.com/thesavant42/adminboard/internal/ui"
)

var errNotLoggedIn = errors.New("not logged in, run `adminboard login` first")

type rootOptions struct {
	configPath string
	dbPath     string
	quiet      bool
}

// app is everything a command needs, built once per invocation
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	database *db.DB
	client   *api.Client
	sessions *session.Manager
	closers  []io.Closer
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "adminboard",
		Short:         "Terminal admin dashboard for people and catalog records",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if !opts.quiet {
				if err := ui.ShowSplash(a.cfg.API.BaseURL); err != nil {
					a.logger.Warn("splash failed", "error", err)
				}
			}

			dashboard := ui.NewApp(a.cfg, a.client, a.sessions, a.logger)
			defer dashboard.Close()
			return dashboard.Run(cmd.Context())
		},
	}
	root.SetVersionTemplate(versionString() + "\n")

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the session database (overrides config)")
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "skip the startup banner")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newUsersCmd(opts),
		newProductsCmd(opts),
		newCategoriesCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// setup loads config, opens the log and database, builds the API client
// and restores any saved session.
func setup(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.Storage.DBPath = opts.dbPath
	}

	a := &app{cfg: cfg}

	logger, logFile, err := logging.OpenFile(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.closers = append(a.closers, logFile)

	database, err := db.New(cfg.Storage.DBPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.database = database
	a.closers = append(a.closers, database)

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client

	a.sessions = session.NewManager(client, database, cfg.API.SessionTTL, logger)
	client.OnUnauthorized(a.sessions.Expire)

	if _, err := a.sessions.Restore(); err != nil {
		logger.Warn("could not restore session", "error", err)
	}

	logger.Info("started", "version", Version, "base_url", cfg.API.BaseURL, "db", cfg.Storage.DBPath)
	return a, nil
}

// Close releases the database and log file, newest first
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
	a.closers = nil
}

func (a *app) requireSession() error {
	if a.sessions.Status() != session.Authenticated {
		return errNotLoggedIn
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of adminboard",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if !force && fileExists(path) {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.GenerateDefault(path); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			ui.PrintSuccess("Wrote " + path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
