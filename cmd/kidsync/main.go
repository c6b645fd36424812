package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"kidsync/internal/config"
	"kidsync/internal/credentials"
	"kidsync/internal/session"
	"kidsync/internal/utils"
	"kidsync/remote/rest"
	"kidsync/store"
	"kidsync/sync"
)

// App wires the local store, remote client, session, and sync manager
// for the CLI commands.
type App struct {
	config  *config.Config
	store   *store.Store
	session *session.Session
	manager *sync.Manager
}

// NewApp initializes the application from config and credentials
func NewApp() (*App, error) {
	cfg := config.GetConfig()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	sess := session.FromCredentials(credentials.Resolve())
	client := rest.NewClient(cfg.Remote.URL, sess.Token())

	return &App{
		config:  cfg,
		store:   st,
		session: sess,
		manager: sync.NewManager(st, client, sess),
	}, nil
}

// Close releases the app's resources
func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// requireOwner returns the signed-in owner or an error telling the user
// to log in first.
func (a *App) requireOwner() (string, error) {
	ownerID, ok := a.session.CurrentOwnerID()
	if !ok {
		return "", fmt.Errorf("not logged in: run 'kidsync login' first")
	}
	return ownerID, nil
}

func main() {
	var verbose bool
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "kidsync",
		Short: "Offline-first sync for child profiles, progress, and events",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.SetVerboseMode(verbose)
			if configPath != "" {
				config.SetCustomConfigPath(configPath)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "custom config file path")

	rootCmd.AddCommand(
		newSyncCmd(),
		newPullCmd(),
		newChildCmd(),
		newProgressCmd(),
		newEventCmd(),
		newStatusCmd(),
		newLoginCmd(),
		newLogoutCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
