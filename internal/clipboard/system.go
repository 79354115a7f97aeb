package clipboard

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"golang.design/x/clipboard"

	"github.com/brencon/clipsy/internal/classify"
)

// SystemSource adapts the OS clipboard to the Source interface. The
// underlying library exposes no native change counter, so the source
// derives one from its watch streams: every delivered change bumps an
// atomic counter.
type SystemSource struct {
	count atomic.Uint64
}

// NewSystemSource initializes the OS clipboard and starts the watch
// goroutines backing the change counter. They stop when ctx is canceled.
func NewSystemSource(ctx context.Context) (*SystemSource, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	s := &SystemSource{}
	go s.pump(clipboard.Watch(ctx, clipboard.FmtText))
	go s.pump(clipboard.Watch(ctx, clipboard.FmtImage))
	return s, nil
}

func (s *SystemSource) pump(ch <-chan []byte) {
	for range ch {
		s.count.Add(1)
	}
}

func (s *SystemSource) ChangeCount() (uint64, error) {
	return s.count.Load(), nil
}

func (s *SystemSource) Read() (classify.Payload, error) {
	if data := clipboard.Read(clipboard.FmtText); len(data) > 0 {
		return classify.Payload{Text: string(data)}, nil
	}
	if data := clipboard.Read(clipboard.FmtImage); len(data) > 0 {
		return classify.Payload{Image: data}, nil
	}
	return classify.Payload{}, nil
}

// Write places a payload onto the OS clipboard. File lists are written as
// file:// URI text, the convention Linux clipboards use for copied files;
// reading that text back classifies to the same file entry.
func (s *SystemSource) Write(p classify.Payload) error {
	switch {
	case p.Text != "":
		clipboard.Write(clipboard.FmtText, []byte(p.Text))
	case len(p.Image) > 0:
		clipboard.Write(clipboard.FmtImage, p.Image)
	case len(p.Files) > 0:
		uris := make([]string, len(p.Files))
		for i, f := range p.Files {
			u := url.URL{Scheme: "file", Path: f}
			uris[i] = u.String()
		}
		clipboard.Write(clipboard.FmtText, []byte(strings.Join(uris, "\n")))
	default:
		return fmt.Errorf("refusing to write empty payload")
	}
	return nil
}
