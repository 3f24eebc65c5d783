package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"lyricsync/internal/rows"
)

// Song is a stored song header.
type Song struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	VideoID     string    `json:"video_id"`
	DurationMS  int64     `json:"duration_millis"`
	GeniusURL   string    `json:"genius_url,omitempty"`
	Description string    `json:"description,omitempty"`
	LineCount   int       `json:"line_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const songColumns = `s.id, s.title, s.artist, s.video_id, s.duration_millis, s.genius_url, s.description,
    s.created_at, s.updated_at, (SELECT COUNT(1) FROM lines l WHERE l.song_id = s.id)`

func scanSong(scanner interface{ Scan(dest ...any) error }) (*Song, error) {
	var (
		song        Song
		geniusURL   sql.NullString
		description sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(
		&song.ID,
		&song.Title,
		&song.Artist,
		&song.VideoID,
		&song.DurationMS,
		&geniusURL,
		&description,
		&createdRaw,
		&updatedRaw,
		&song.LineCount,
	); err != nil {
		return nil, err
	}
	song.GeniusURL = geniusURL.String
	song.Description = description.String
	song.CreatedAt = parseTimestamp(createdRaw)
	song.UpdatedAt = parseTimestamp(updatedRaw)
	return &song, nil
}

// SaveSong upserts song and replaces its verse and line rows in a single
// transaction. song.CreatedAt is kept for an existing song.
func (s *Store) SaveSong(ctx context.Context, song Song, verses []rows.Verse, lines []rows.Line) error {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(song.ID) == "" {
		return errors.New("save song: id required")
	}
	return withBusyRetry(ctx, func() error {
		return s.saveSong(ctx, song, verses, lines)
	})
}

func (s *Store) saveSong(ctx context.Context, song Song, verses []rows.Verse, lines []rows.Line) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO songs (id, title, artist, video_id, duration_millis, genius_url, description, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            artist = excluded.artist,
            video_id = excluded.video_id,
            duration_millis = excluded.duration_millis,
            genius_url = excluded.genius_url,
            description = excluded.description,
            updated_at = excluded.updated_at`,
		song.ID,
		song.Title,
		song.Artist,
		song.VideoID,
		song.DurationMS,
		nullableString(song.GeniusURL),
		nullableString(song.Description),
		now,
		now,
	); err != nil {
		return fmt.Errorf("upsert song: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM lines WHERE song_id = ?", song.ID); err != nil {
		return fmt.Errorf("clear lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM verses WHERE song_id = ?", song.ID); err != nil {
		return fmt.Errorf("clear verses: %w", err)
	}

	verseStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verses (id, song_id, verse_ordering, title, start_millis, end_millis, instrumental)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare verse insert: %w", err)
	}
	defer verseStmt.Close()
	for _, v := range verses {
		if _, err := verseStmt.ExecContext(ctx, v.ID, song.ID, v.Ordering, v.Title, v.StartMS, v.EndMS, v.Instrumental); err != nil {
			return fmt.Errorf("insert verse %s: %w", v.ID, err)
		}
	}

	lineStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lines (id, song_id, verse_id, position, line_number, lyric, tokens_json, timestamps_json, start_millis, end_millis, bridge)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare line insert: %w", err)
	}
	defer lineStmt.Close()
	for position, l := range lines {
		tokens, err := json.Marshal(l.Tokens)
		if err != nil {
			return fmt.Errorf("encode tokens of line %s: %w", l.ID, err)
		}
		stamps, err := json.Marshal(l.Timestamps)
		if err != nil {
			return fmt.Errorf("encode timestamps of line %s: %w", l.ID, err)
		}
		if _, err := lineStmt.ExecContext(ctx,
			l.ID, song.ID, l.VerseID, position, l.LineNumber, l.Text, string(tokens), string(stamps), l.StartMS, l.EndMS, l.Bridge,
		); err != nil {
			return fmt.Errorf("insert line %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit song: %w", err)
	}
	return nil
}

// FindSong looks a song up by title and artist, ignoring ASCII case. It
// returns nil without error when no song matches.
func (s *Store) FindSong(ctx context.Context, title, artist string) (*Song, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+songColumns+` FROM songs s WHERE s.title = ? AND s.artist = ?`,
		strings.TrimSpace(title), strings.TrimSpace(artist))
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find song: %w", err)
	}
	return song, nil
}

// GetSong fetches a song by id, returning nil when it does not exist.
func (s *Store) GetSong(ctx context.Context, id string) (*Song, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+songColumns+` FROM songs s WHERE s.id = ?`, id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// ListSongs returns every stored song, most recently updated first.
func (s *Store) ListSongs(ctx context.Context) ([]*Song, error) {
	rs, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+songColumns+` FROM songs s ORDER BY s.updated_at DESC, s.title`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rs.Close()

	var songs []*Song
	for rs.Next() {
		song, err := scanSong(rs)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rs.Err()
}

// DeleteSong removes a song and its rows. Deleting a missing song is not an
// error.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)
	return withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id)
		return err
	})
}

// LoadRows returns the verse rows (by ordering) and line rows (in song
// order) of a song.
func (s *Store) LoadRows(ctx context.Context, songID string) ([]rows.Verse, []rows.Line, error) {
	ctx = ensureContext(ctx)
	verses, err := s.loadVerses(ctx, songID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.loadLines(ctx, songID)
	if err != nil {
		return nil, nil, err
	}
	return verses, lines, nil
}

func (s *Store) loadVerses(ctx context.Context, songID string) ([]rows.Verse, error) {
	rs, err := s.db.QueryContext(ctx,
		`SELECT id, verse_ordering, title, start_millis, end_millis, instrumental
        FROM verses WHERE song_id = ? ORDER BY verse_ordering`, songID)
	if err != nil {
		return nil, fmt.Errorf("load verses: %w", err)
	}
	defer rs.Close()

	var verses []rows.Verse
	for rs.Next() {
		v := rows.Verse{SongID: songID}
		var instrumental int
		if err := rs.Scan(&v.ID, &v.Ordering, &v.Title, &v.StartMS, &v.EndMS, &instrumental); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		v.Instrumental = instrumental != 0
		verses = append(verses, v)
	}
	return verses, rs.Err()
}

func (s *Store) loadLines(ctx context.Context, songID string) ([]rows.Line, error) {
	rs, err := s.db.QueryContext(ctx,
		`SELECT id, verse_id, line_number, lyric, tokens_json, timestamps_json, start_millis, end_millis, bridge
        FROM lines WHERE song_id = ? ORDER BY position`, songID)
	if err != nil {
		return nil, fmt.Errorf("load lines: %w", err)
	}
	defer rs.Close()

	var lines []rows.Line
	for rs.Next() {
		l := rows.Line{SongID: songID}
		var (
			tokens string
			stamps string
			bridge int
		)
		if err := rs.Scan(&l.ID, &l.VerseID, &l.LineNumber, &l.Text, &tokens, &stamps, &l.StartMS, &l.EndMS, &bridge); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		if err := json.Unmarshal([]byte(tokens), &l.Tokens); err != nil {
			return nil, fmt.Errorf("decode tokens of line %s: %w", l.ID, err)
		}
		if err := json.Unmarshal([]byte(stamps), &l.Timestamps); err != nil {
			return nil, fmt.Errorf("decode timestamps of line %s: %w", l.ID, err)
		}
		l.Bridge = bridge != 0
		lines = append(lines, l)
	}
	return lines, rs.Err()
}
