package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/wurdle/internal/archive"
	"codeberg.org/snonux/wurdle/internal/cli"
	"codeberg.org/snonux/wurdle/internal/concept"
	"codeberg.org/snonux/wurdle/internal/errx"
	"codeberg.org/snonux/wurdle/internal/logx"
	"codeberg.org/snonux/wurdle/internal/models"
	"codeberg.org/snonux/wurdle/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	cli.ApplyConfig(cmd, flags)
	logx.Init(logx.Options{
		Environment: logx.ParseEnvironment(flags.LogEnv),
		Level:       flags.LogLevel,
	})

	// Handle --archive flag
	if flags.Archive {
		target, err := archive.Cards(flags.OutputDir, time.Now())
		if err != nil {
			return fmt.Errorf("failed to archive cards: %w", err)
		}
		fmt.Printf("Cards directory archived to: %s\n", target)
		return nil
	}

	creds, err := cli.LoadCredentials(flags.EnvFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(creds.GeminiAPIKey, creds.OpenAIAPIKey)
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	proc, err := processor.NewProcessor(ctx, flags, creds)
	if err != nil {
		return err
	}
	defer proc.Close()

	switch {
	case flags.Anki && flags.BatchFile == "" && len(args) == 0:
		// Export only
	case flags.BatchFile != "":
		if _, err := proc.ProcessBatch(ctx); err != nil {
			return err
		}
	case len(args) > 0:
		dir, err := proc.ProcessSingle(ctx, args[0])
		if err != nil {
			if errx.KindOf(err) == errx.ValidationFailed {
				return fmt.Errorf("describe your concept in at least %d words: %w", concept.MinWords, err)
			}
			return err
		}
		fmt.Printf("\nDone! Card saved to: %s\n", dir)
	default:
		// No input provided - launch GUI mode by default
		return proc.RunGUIMode()
	}

	// Generate Anki file if requested
	if flags.Anki {
		path, err := proc.GenerateAnkiFile()
		if err != nil {
			return fmt.Errorf("failed to generate Anki file: %w", err)
		}
		fmt.Printf("Anki package created: %s\n", path)
	}
	return nil
}
