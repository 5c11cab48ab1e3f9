package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dhidargpt/dhidar/internal/app"
	"github.com/dhidargpt/dhidar/internal/config"
	"github.com/dhidargpt/dhidar/internal/llm"
	"github.com/dhidargpt/dhidar/internal/logging"
	"github.com/dhidargpt/dhidar/internal/tui"
	"github.com/spf13/cobra"
)

var (
	debug      bool
	workingDir string
)

var (
	dhidarApp *app.App
	closeLog  func()

	// client replaces the Gemini client when set.
	client llm.Client
)

var rootCmd = &cobra.Command{
	Use:   "dhidar",
	Short: "DhidarGPT, votre assistant IA",
	Long: `DhidarGPT est un assistant IA propulsé par Gemini.

Usage:
  dhidar                              # Interface interactive
  dhidar chat "votre question"        # Réponse directe
  dhidar summarize article.md         # Résumé d'un fichier
  echo "texte" | dhidar summarize -   # Résumé depuis stdin
  dhidar image --prompt "un chat"     # Génération d'image (data URL)
  dhidar serve                        # API HTTP locale

Fonctionnalités:
- Chat avec choix du modèle Gemini
- Résumé de texte avec taux de compression
- Génération et retouche d'image`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		absWorkspace, err := filepath.Abs(workingDir)
		if err != nil {
			return fmt.Errorf("failed to resolve workspace path: %w", err)
		}

		cfg, err := config.Load(absWorkspace, debug)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		closeLog, err = logging.Setup(cfg.DataDir(), cfg.Debug, cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}

		dhidarApp, err = app.NewApp(cmd.Context(), &app.AppConfig{
			WorkspaceRoot: absWorkspace,
			Debug:         debug,
			Config:        cfg,
			Client:        client,
		})
		if errors.Is(err, config.ErrMissingAPIKey) {
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to initialize DhidarGPT: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cmd.Context(), dhidarApp)
	},
}

func init() {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode (logs to stderr)")
	rootCmd.PersistentFlags().StringVar(&workingDir, "wd", wd, "Working directory")

	rootCmd.AddCommand(chatCmd, summarizeCmd, imageCmd, serveCmd)
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	cleanup()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Erreur :", err)
		os.Exit(1)
	}
}

func cleanup() {
	if closeLog != nil {
		closeLog()
		closeLog = nil
	}
	dhidarApp = nil
}

// hasStdinInput reports whether stdin is a pipe or a redirect.
func hasStdinInput() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readInput returns args joined by spaces, or stdin when there are no args
// (or a single "-") and something was piped in.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if in == os.Stdin && !hasStdinInput() {
		return "", nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// resultError turns a failed gateway result into a command error.
func resultError(result llm.Result, rejected string) error {
	switch result.Kind {
	case llm.ResultSuccess:
		return nil
	case llm.ResultPolicyRejected:
		return errors.New(rejected)
	default:
		return errors.New(result.Reason)
	}
}
