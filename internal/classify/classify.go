// Package classify turns raw clipboard payloads into typed capture
// candidates with display previews.
package classify

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"net/url"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Kind identifies what a clipboard entry holds.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// ErrEmpty reports a payload with nothing capturable in it.
var ErrEmpty = errors.New("empty clipboard payload")

// Payload is a raw clipboard read. Exactly one of the fields is expected
// to be populated; Text wins when a source reports several.
type Payload struct {
	Text  string
	Image []byte
	Files []string
}

// Empty reports whether the payload carries no content at all.
func (p Payload) Empty() bool {
	return p.Text == "" && len(p.Image) == 0 && len(p.Files) == 0
}

// Candidate is a classified payload ready for redaction, hashing and
// storage. Data holds the canonical bytes the fingerprint is computed
// over; for file candidates that is the newline-joined path list.
type Candidate struct {
	Kind    Kind
	Data    []byte
	Text    string
	Preview string
	Width   int
	Height  int
	Size    int
}

type Classifier struct {
	previewLen int
}

func New(previewLen int) *Classifier {
	return &Classifier{previewLen: previewLen}
}

// Classify inspects a payload and produces a typed candidate. Text that
// consists solely of file:// URIs is treated as a file reference list,
// which is how Linux clipboards convey copied files.
func (c *Classifier) Classify(p Payload) (Candidate, error) {
	switch {
	case p.Text != "":
		if files, ok := parseFileURIs(p.Text); ok {
			return c.classifyFiles(files), nil
		}
		return Candidate{
			Kind:    KindText,
			Data:    []byte(p.Text),
			Text:    p.Text,
			Preview: c.Preview(p.Text),
			Size:    len(p.Text),
		}, nil
	case len(p.Image) > 0:
		return c.classifyImage(p.Image), nil
	case len(p.Files) > 0:
		return c.classifyFiles(p.Files), nil
	default:
		return Candidate{}, ErrEmpty
	}
}

func (c *Classifier) classifyImage(data []byte) Candidate {
	cand := Candidate{
		Kind:    KindImage,
		Data:    data,
		Preview: "[Image]",
		Size:    len(data),
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		cand.Width = cfg.Width
		cand.Height = cfg.Height
		cand.Preview = fmt.Sprintf("[Image: %dx%d]", cfg.Width, cfg.Height)
	}
	return cand
}

func (c *Classifier) classifyFiles(files []string) Candidate {
	joined := strings.Join(files, "\n")
	var preview string
	if len(files) == 1 {
		preview = c.Preview(filepath.Base(files[0]))
	} else {
		preview = c.Preview(fmt.Sprintf("%d files: %s, ...", len(files), filepath.Base(files[0])))
	}
	return Candidate{
		Kind:    KindFile,
		Data:    []byte(joined),
		Text:    joined,
		Preview: preview,
		Size:    len(joined),
	}
}

// Preview collapses runs of whitespace to single spaces and truncates to
// the configured length on a rune boundary.
func (c *Classifier) Preview(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	runes := []rune(collapsed)
	if len(runes) <= c.previewLen {
		return collapsed
	}
	if c.previewLen <= 3 {
		return string(runes[:c.previewLen])
	}
	return string(runes[:c.previewLen-3]) + "..."
}

// parseFileURIs decodes text as a file:// URI list. It succeeds only when
// every non-empty line is a file URI, returning the decoded local paths.
func parseFileURIs(text string) ([]string, bool) {
	var files []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "file://") {
			return nil, false
		}
		u, err := url.Parse(line)
		if err != nil || u.Path == "" {
			return nil, false
		}
		files = append(files, u.Path)
	}
	if len(files) == 0 {
		return nil, false
	}
	return files, true
}
