package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/deps"
	"lyricsync/internal/preflight"
	"lyricsync/internal/prepare"
	"lyricsync/internal/services"
	"lyricsync/internal/store"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var req prepare.Request
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch lyrics, captions and audio for a song and store synchronized rows",
		Example: `  lyricsync sync --title "Hello" --artist "Adele" --video https://youtu.be/YQHsXMglC9A
  lyricsync sync --title "Hello" --artist "Adele" --video YQHsXMglC9A --lyrics-file hello.txt --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := requireSystemDeps(cfg); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				runner := prepare.NewFromConfig(cfg, st, logger)
				result, err := runner.Prepare(cmd.Context(), req)
				if err != nil {
					if hint := services.Hint(err); hint != "" {
						return fmt.Errorf("%w (hint: %s)", err, hint)
					}
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, result)
				}
				out := cmd.OutOrStdout()
				if result.Reused {
					fmt.Fprintln(out, "Song already prepared; showing stored rows (use --force to rebuild)")
				}
				fmt.Fprint(out, renderSong(result.Song, result.Verses, result.Lines))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Song title")
	cmd.Flags().StringVar(&req.Artist, "artist", "", "Song artist")
	cmd.Flags().StringVar(&req.Video, "video", "", "YouTube video id or URL")
	cmd.Flags().StringVar(&req.LyricsFile, "lyrics-file", "", "Read lyrics from a local text file instead of Genius")
	cmd.Flags().StringVar(&req.CaptionsFile, "captions-file", "", "Read captions from a local json3, vtt or JSON file instead of YouTube")
	cmd.Flags().BoolVar(&req.Force, "force", false, "Rebuild rows even if the song is already stored")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("artist")
	_ = cmd.MarkFlagRequired("video")
	return cmd
}

// requireSystemDeps fails before any download when a required binary is
// missing.
func requireSystemDeps(cfg *config.Config) error {
	missing := deps.Missing(preflight.CheckSystemDeps(cfg))
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, status := range missing {
		names = append(names, status.Command)
	}
	return services.Wrap(services.ErrConfiguration, "sync", "check dependencies",
		fmt.Sprintf("missing required tools: %s (run lyricsync doctor)", strings.Join(names, ", ")), nil)
}
