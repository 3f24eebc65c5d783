package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	_ "modernc.org/sqlite"

	"lyricsync/internal/config"
	"lyricsync/internal/rows"
	"lyricsync/internal/store"
	"lyricsync/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	for _, key := range []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY", "GENIUS_ACCESS_TOKEN"} {
		t.Setenv(key, "")
	}
	cfg := testsupport.NewConfig(t, opts...)
	home := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

// seedSong stores a small song with an instrumental intro and a bridged line.
func seedSong(t *testing.T, cfg *config.Config) store.Song {
	t.Helper()
	st := testsupport.MustOpenStore(t, cfg)
	song := store.Song{
		ID:         "song-1",
		Title:      "Hello",
		Artist:     "Adele",
		VideoID:    "YQHsXMglC9A",
		DurationMS: 65000,
		GeniusURL:  "https://genius.com/Adele-hello-lyrics",
	}
	verses := []rows.Verse{
		{ID: "intro", SongID: song.ID, Ordering: 0, Title: "Intro", StartMS: 0, EndMS: 6000, Instrumental: true},
		{ID: "v1", SongID: song.ID, Ordering: 1, Title: "Verse 1", StartMS: 6000, EndMS: 65000},
	}
	lines := []rows.Line{
		{
			ID:         "l1",
			SongID:     song.ID,
			VerseID:    "v1",
			LineNumber: 0,
			Text:       "Hello, it's me",
			Tokens:     []string{"Hello,", "it's", "me"},
			Timestamps: []rows.TimestampRange{{StartMS: 6000, EndMS: 6400}, {StartMS: 6400, EndMS: 6800}, {StartMS: 6800, EndMS: 7500}},
			StartMS:    6000,
			EndMS:      7500,
		},
		{
			ID:         "l2",
			SongID:     song.ID,
			VerseID:    "v1",
			LineNumber: 1,
			Text:       "I was wondering",
			Tokens:     []string{"I", "was", "wondering"},
			Timestamps: []rows.TimestampRange{{StartMS: 8000, EndMS: 8300}, {StartMS: 8300, EndMS: 8600}, {StartMS: 8600, EndMS: 65000}},
			StartMS:    8000,
			EndMS:      65000,
			Bridge:     true,
		},
	}
	if err := st.SaveSong(context.Background(), song, verses, lines); err != nil {
		t.Fatalf("SaveSong: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	return song
}

// backdateSong moves a stored song's updated_at into the past so relative
// times render deterministically.
func backdateSong(t *testing.T, cfg *config.Config, id string, age time.Duration) {
	t.Helper()
	db, err := sql.Open("sqlite", cfg.Paths.DatabasePath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()
	stamp := time.Now().Add(-age).UTC().Format(time.RFC3339Nano)
	if _, err := db.Exec(`UPDATE songs SET updated_at = ? WHERE id = ?`, stamp, id); err != nil {
		t.Fatalf("backdate song: %v", err)
	}
}
