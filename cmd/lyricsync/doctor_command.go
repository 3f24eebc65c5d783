package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lyricsync/internal/language"
	"lyricsync/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, external tools and remote services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Config file", statusInfo, fmt.Sprintf("%s (exists: %s)", ctx.resolvedPath, yesNo(ctx.configExists)), colorize))
			fmt.Fprintln(out, renderStatusLine("Database", statusInfo, cfg.Paths.DatabasePath, colorize))
			fmt.Fprintln(out, renderStatusLine("Speech-to-text", statusInfo, fmt.Sprintf("%s (%s, %s)", cfg.STT.Provider, cfg.STT.Model, language.Name(cfg.STT.Language)), colorize))
			fmt.Fprintln(out, renderStatusLine("Captions", statusInfo, language.Name(cfg.YouTube.SubtitleLanguage), colorize))
			fmt.Fprintln(out)

			results := preflight.RunAll(cmd.Context(), cfg)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}
}
