package genius

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is the text pulled out of a Genius lyric page.
type Page struct {
	// Lines are the raw lyric lines, section headers included.
	Lines       []string
	Description string
}

// ParsePage extracts lyric lines from every div marked
// data-lyrics-container="true" (a <br> ends a line) and the song description
// from the first div whose class starts with SongDescription__Content.
// Elements marked data-exclude-from-selection are skipped.
func ParsePage(r io.Reader) (Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Page{}, err
	}
	var (
		page      Page
		lyricText strings.Builder
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Div {
			switch {
			case attr(n, "data-lyrics-container") == "true":
				if lyricText.Len() > 0 {
					lyricText.WriteByte('\n')
				}
				collectText(n, &lyricText)
				return
			case page.Description == "" && hasClassPrefix(n, "SongDescription__Content"):
				var desc strings.Builder
				collectText(n, &desc)
				page.Description = strings.TrimSpace(desc.String())
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	if lyricText.Len() > 0 {
		page.Lines = strings.Split(lyricText.String(), "\n")
	}
	return page, nil
}

func collectText(n *html.Node, b *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		b.WriteString(n.Data)
		return
	case n.Type == html.ElementNode && n.DataAtom == atom.Br:
		b.WriteByte('\n')
		return
	case n.Type == html.ElementNode && attr(n, "data-exclude-from-selection") == "true":
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClassPrefix(n *html.Node, prefix string) bool {
	for _, class := range strings.Fields(attr(n, "class")) {
		if strings.HasPrefix(class, prefix) {
			return true
		}
	}
	return false
}
