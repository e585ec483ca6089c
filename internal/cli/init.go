package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hubcontacts/internal/config"
	"github.com/mesh-intelligence/hubcontacts/internal/paths"
)

type initOptions struct {
	baseURL     string
	accessToken string
}

func newInitCmd(a *app) *cobra.Command {
	var opts initOptions
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml and create the snapshot store",
		Long: "Create the configuration directory with a default config.yaml (left\n" +
			"untouched when it exists) and initialize the snapshot database.",
		Args: userArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "API base URL to record in config.yaml")
	cmd.Flags().StringVar(&opts.accessToken, "access-token", "", "private app access token to record in config.yaml")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, opts initOptions) error {
	f := config.DefaultFile()
	if opts.baseURL != "" {
		f.BaseURL = opts.baseURL
	}
	f.AccessToken = opts.accessToken
	f.DataDir = a.dataDir

	written, err := config.EnsureFile(a.configDir, f)
	if err != nil {
		return err
	}
	if written {
		// Reload so data_dir from the new file takes part in resolution.
		s, err := config.Load(a.configDir)
		if err != nil {
			return userError(err)
		}
		a.settings = s
	}

	store, err := a.openStore()
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	dataDir := store.DataDir()
	if err := store.Close(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	return a.printMessage(cmd, "hubcontacts initialized", map[string]any{
		"config":         paths.ConfigFile(a.configDir),
		"config_written": written,
		"data":           dataDir,
	})
}
