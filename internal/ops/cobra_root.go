package ops

import (
	"os"

	"github.com/spf13/cobra"
)

// buildRootCmdWith constructs the Cobra command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "planetctl",
		Short:         "Build, run and inspect the planetd container",
		Long:          styleTitle.Render("planetctl") + " wraps docker compose for the planetd service:\nimage build, stack lifecycle, log tailing and deployment preflight.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().String("project-dir", cfg.ProjectDir, "Project directory (defaults PLANETCTL_PROJECT_DIR or .)")
	root.PersistentFlags().String("file", cfg.ComposeFile, "Compose file (defaults PLANETCTL_COMPOSE_FILE or compose.yaml)")
	root.PersistentFlags().String("log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults PLANETCTL_LOG_LEVEL or info)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("project-dir"); f != nil && f.Value.String() != "" {
			cfg.ProjectDir = f.Value.String()
		}
		if f := cmd.InheritedFlags().Lookup("file"); f != nil && f.Value.String() != "" {
			cfg.ComposeFile = f.Value.String()
		}
		if f := cmd.InheritedFlags().Lookup("log-level"); f != nil && f.Value.String() != "" {
			cfg.LogLvl = f.Value.String()
		}
		SetLogLevel(cfg.LogLvl)
	}

	buildCmd := &cobra.Command{
		Use:     "build",
		Short:   "Build the planetd image",
		Example: "  planetctl build",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnComposeBuild(cmd.Context(), cfg)
		},
	}

	upCmd := &cobra.Command{
		Use:     "up",
		Short:   "Build, then start the stack detached",
		Example: "  planetctl up\n  planetctl up --wait",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fnComposeBuild(cmd.Context(), cfg); err != nil {
				return err
			}
			if err := fnComposeUp(cmd.Context(), cfg); err != nil {
				return err
			}
			wait, _ := cmd.Flags().GetBool("wait")
			if wait || envBool("PLANETCTL_UP_WAIT", false) {
				return fnWaitHealthy(cmd.Context(), cfg)
			}
			return nil
		},
	}
	upCmd.Flags().Bool("wait", false, "Poll /health until the service answers 200")

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnComposeDown(cmd.Context(), cfg)
		},
	}

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Tear down and remove the locally built image and volumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fnComposeDown(cmd.Context(), cfg); err != nil {
				return err
			}
			if err := fnComposeClean(cmd.Context(), cfg); err != nil {
				return err
			}
			fnVerifyClean(cmd.Context(), cfg)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show project containers via the Docker Engine API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnShowStatus(cmd.Context(), cfg)
		},
	}

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Show service logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			follow, _ := cmd.Flags().GetBool("follow")
			return fnComposeLogs(cmd.Context(), cfg, follow)
		},
	}
	logsCmd.Flags().BoolP("follow", "f", false, "Follow log output")

	preflightCmd := &cobra.Command{
		Use:   "preflight",
		Short: "Validate Dockerfile, compose file and project files before a build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnPreflight(cmd.Context(), cfg)
		},
	}

	bundleCmd := &cobra.Command{
		Use:     "bundle",
		Short:   "Pack trained weights into the dist/ bundle the image build mounts",
		Example: "  planetctl bundle --weights runs/model.safetensors --version 0.3.0",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weights, _ := cmd.Flags().GetString("weights")
			version, _ := cmd.Flags().GetString("version")
			out, _ := cmd.Flags().GetString("out")
			return fnBundle(cfg, weights, version, out)
		},
	}
	bundleCmd.Flags().String("weights", "", "Path to a trained model.safetensors (required)")
	bundleCmd.Flags().String("version", "dev", "Version used in the bundle file name")
	bundleCmd.Flags().String("out", "dist", "Output directory, relative to the project dir")
	_ = bundleCmd.MarkFlagRequired("weights")

	root.AddCommand(buildCmd, upCmd, downCmd, cleanCmd, statusCmd, logsCmd, preflightCmd, bundleCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}
