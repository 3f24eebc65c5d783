package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/rows"
	"lyricsync/internal/services"
	"lyricsync/internal/store"
)

type songView struct {
	Song   *store.Song  `json:"song"`
	Verses []rows.Verse `json:"verses"`
	Lines  []rows.Line  `json:"lines"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <song-id>",
		Short: "Display the synchronized verses and lines of a stored song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				song, err := st.GetSong(cmd.Context(), id)
				if err != nil {
					return err
				}
				if song == nil {
					return services.Wrap(services.ErrNotFound, "show", "lookup", fmt.Sprintf("song %s", id), nil)
				}
				verses, lines, err := st.LoadRows(cmd.Context(), song.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, songView{Song: song, Verses: verses, Lines: lines})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderSong(song, verses, lines))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// renderSong prints the song header followed by one table row per line.
// Verses without lines get a single row carrying their range.
func renderSong(song *store.Song, verses []rows.Verse, lines []rows.Line) string {
	var b strings.Builder
	if song != nil {
		fmt.Fprintf(&b, "%s by %s\n", song.Title, song.Artist)
		fmt.Fprintf(&b, "  ID:       %s\n", song.ID)
		fmt.Fprintf(&b, "  Video:    %s\n", song.VideoID)
		fmt.Fprintf(&b, "  Duration: %s\n", formatDuration(song.DurationMS))
		if song.GeniusURL != "" {
			fmt.Fprintf(&b, "  Lyrics:   %s\n", song.GeniusURL)
		}
	}

	byVerse := make(map[string][]rows.Line, len(verses))
	for _, line := range lines {
		byVerse[line.VerseID] = append(byVerse[line.VerseID], line)
	}

	columns := []column{
		{Header: "Verse"},
		{Header: "#", Right: true},
		{Header: "Start", Right: true},
		{Header: "End", Right: true},
		{Header: "Lyric", MaxWidth: 60},
		{Header: "Note"},
	}
	var tableRows [][]string
	for _, verse := range verses {
		verseLines := byVerse[verse.ID]
		if len(verseLines) == 0 {
			note := ""
			if verse.Instrumental {
				note = "instrumental"
			}
			tableRows = append(tableRows, []string{verse.Title, "", formatMillis(verse.StartMS), formatMillis(verse.EndMS), "", note})
			continue
		}
		for i, line := range verseLines {
			title := ""
			if i == 0 {
				title = verse.Title
			}
			note := ""
			if line.Bridge {
				note = "bridged"
			}
			tableRows = append(tableRows, []string{
				title,
				strconv.Itoa(line.LineNumber + 1),
				formatMillis(line.StartMS),
				formatMillis(line.EndMS),
				line.Text,
				note,
			})
		}
	}
	if len(tableRows) == 0 {
		b.WriteString("No rows stored\n")
		return b.String()
	}
	b.WriteString(renderTable(columns, tableRows))
	b.WriteString("\n")
	return b.String()
}
