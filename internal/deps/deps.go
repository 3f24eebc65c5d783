package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary lyricsync shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Tools names the binaries a preparation run may need. whisperx adds uvx as a
// hard requirement.
type Tools struct {
	FFmpeg   string
	Ytdlp    string
	UVX      string
	WhisperX bool
}

// Requirements expands tools into the list checked by CheckBinaries.
func Requirements(tools Tools) []Requirement {
	reqs := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     fallback(tools.FFmpeg, "ffmpeg"),
			Description: "Required to normalize downloaded audio",
		},
		{
			Name:        "yt-dlp",
			Command:     fallback(tools.Ytdlp, "yt-dlp"),
			Description: "Required to download captions and audio",
		},
		{
			Name:        "uvx",
			Command:     fallback(tools.UVX, "uvx"),
			Description: "Runs WhisperX for word-level transcription",
			Optional:    !tools.WhisperX,
		},
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Missing returns the required (non-optional) statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			out = append(out, s)
		}
	}
	return out
}

func fallback(value, def string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return def
}
