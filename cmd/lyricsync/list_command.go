package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prepared songs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				songs, err := st.ListSongs(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					if songs == nil {
						songs = []*store.Song{}
					}
					return writeJSON(cmd, songs)
				}
				out := cmd.OutOrStdout()
				if len(songs) == 0 {
					fmt.Fprintln(out, "No songs prepared")
					return nil
				}
				fmt.Fprintln(out, renderSongList(songs))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderSongList(songs []*store.Song) string {
	columns := []column{
		{Header: "ID"},
		{Header: "Title", MaxWidth: 40},
		{Header: "Artist", MaxWidth: 30},
		{Header: "Length", Right: true},
		{Header: "Lines", Right: true},
		{Header: "Updated"},
	}
	tableRows := make([][]string, 0, len(songs))
	for _, song := range songs {
		tableRows = append(tableRows, []string{
			song.ID,
			song.Title,
			song.Artist,
			formatDuration(song.DurationMS),
			strconv.Itoa(song.LineCount),
			humanize.Time(song.UpdatedAt),
		})
	}
	return renderTable(columns, tableRows)
}
