package clipboard

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brencon/clipsy/internal/artifact"
	"github.com/brencon/clipsy/internal/classify"
	"github.com/brencon/clipsy/internal/config"
	"github.com/brencon/clipsy/internal/database"
)

// fakeSource scripts a clipboard: setting content bumps the change
// counter the way a real clipboard write would.
type fakeSource struct {
	count    uint64
	payload  classify.Payload
	countErr error
	readErr  error
	reads    int
	writes   []classify.Payload
}

func (f *fakeSource) ChangeCount() (uint64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func (f *fakeSource) Read() (classify.Payload, error) {
	f.reads++
	if f.readErr != nil {
		return classify.Payload{}, f.readErr
	}
	return f.payload, nil
}

// Write renders payloads the way the system clipboard holds them: file
// lists become file:// URI text.
func (f *fakeSource) Write(p classify.Payload) error {
	f.writes = append(f.writes, p)
	switch {
	case p.Text != "":
		f.set(classify.Payload{Text: p.Text})
	case len(p.Image) > 0:
		f.set(classify.Payload{Image: p.Image})
	case len(p.Files) > 0:
		uris := make([]string, len(p.Files))
		for i, path := range p.Files {
			u := url.URL{Scheme: "file", Path: path}
			uris[i] = u.String()
		}
		f.set(classify.Payload{Text: strings.Join(uris, "\n")})
	}
	return nil
}

// set simulates an external copy.
func (f *fakeSource) set(p classify.Payload) {
	f.payload = p
	f.count++
}

func newTestMonitor(t *testing.T) (*Monitor, *fakeSource, *database.Repository, *artifact.Store) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir

	store, err := artifact.New(filepath.Join(dir, "images"))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := database.NewRepository(filepath.Join(dir, "history.db"), store, cfg.MaxEntries, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	source := &fakeSource{}
	monitor := NewMonitor(source, repo, store, classify.New(cfg.PreviewLength), cfg, logger)
	return monitor, source, repo, store
}

func nextEvent(t *testing.T, m *Monitor) Event {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	default:
		t.Fatal("expected a monitor event")
		return Event{}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestCheckOnceIdleWithoutChange(t *testing.T) {
	m, source, _, _ := newTestMonitor(t)

	captured, err := m.CheckOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, captured)
	assert.Zero(t, source.reads)
}

func TestStartupContentNotCaptured(t *testing.T) {
	// Content sitting on the clipboard before the monitor starts must
	// not produce an entry; only changes do.
	source := &fakeSource{}
	source.set(classify.Payload{Text: "stale content"})

	dir := t.TempDir()
	cfg := config.Default()
	store, err := artifact.New(filepath.Join(dir, "images"))
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := database.NewRepository(filepath.Join(dir, "history.db"), store, cfg.MaxEntries, logger)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	m := NewMonitor(source, repo, store, classify.New(cfg.PreviewLength), cfg, logger)
	captured, err := m.CheckOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, captured)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCaptureText(t *testing.T) {
	m, source, repo, _ := newTestMonitor(t)
	ctx := context.Background()

	source.set(classify.Payload{Text: "hello clipboard"})
	captured, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.True(t, captured)

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, classify.KindText, entries[0].Kind)
	assert.Equal(t, "hello clipboard", entries[0].Content)
	assert.False(t, entries[0].Sensitive)

	ev := nextEvent(t, m)
	assert.Equal(t, EventCaptured, ev.Type)
	assert.Equal(t, entries[0].ID, ev.ID)
}

func TestDuplicateCopyBumps(t *testing.T) {
	m, source, repo, _ := newTestMonitor(t)
	ctx := context.Background()

	source.set(classify.Payload{Text: "again and again"})
	_, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	firstEv := nextEvent(t, m)

	source.set(classify.Payload{Text: "again and again"})
	captured, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.True(t, captured)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ev := nextEvent(t, m)
	assert.Equal(t, EventBumped, ev.Type)
	assert.Equal(t, firstEv.ID, ev.ID)
}

func TestReadErrorRetriedNextTick(t *testing.T) {
	m, source, repo, _ := newTestMonitor(t)
	ctx := context.Background()

	source.set(classify.Payload{Text: "flaky read"})
	source.readErr = assert.AnError
	_, err := m.CheckOnce(ctx)
	require.Error(t, err)

	// The counter was not consumed; the next tick picks the change up.
	source.readErr = nil
	captured, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.True(t, captured)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCounterErrorRecovers(t *testing.T) {
	m, source, _, _ := newTestMonitor(t)
	ctx := context.Background()

	source.set(classify.Payload{Text: "eventually"})
	source.countErr = assert.AnError
	_, err := m.CheckOnce(ctx)
	require.Error(t, err)

	source.countErr = nil
	captured, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.True(t, captured)
}

func TestOversizedTextSkipped(t *testing.T) {
	m, source, repo, _ := newTestMonitor(t)
	m.config.MaxTextSize = 10
	ctx := context.Background()

	source.set(classify.Payload{Text: strings.Repeat("x", 11)})
	captured, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.False(t, captured)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// The change still counts as handled; a later small copy works.
	source.set(classify.Payload{Text: "small"})
	captured, err = m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.True(t, captured)
}

func TestCaptureImage(t *testing.T) {
	m, source, repo, store := newTestMonitor(t)
	ctx := context.Background()

	data := encodePNG(t, 20, 10)
	source.set(classify.Payload{Image: data})
	captured, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.True(t, captured)

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, classify.KindImage, entry.Kind)
	assert.Equal(t, "[Image: 20x10]", entry.Preview)
	assert.Empty(t, entry.Content)
	assert.Equal(t, store.Path(entry.Hash), entry.ArtifactPath)
	assert.Equal(t, store.ThumbPath(entry.Hash), entry.ThumbPath)

	stored, err := store.Read(entry.Hash)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestCaptureSensitiveText(t *testing.T) {
	m, source, repo, _ := newTestMonitor(t)
	ctx := context.Background()

	source.set(classify.Payload{Text: "password=hunter42x"})
	_, err := m.CheckOnce(ctx)
	require.NoError(t, err)

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.True(t, entry.Sensitive)
	assert.Equal(t, "password=hunter42x", entry.Content)
	assert.NotContains(t, entry.MaskedPreview, "hunter42x")
	assert.NotContains(t, entry.DisplayLabel(), "hunter42x")
}

func TestRedactionDisabled(t *testing.T) {
	m, source, repo, _ := newTestMonitor(t)
	m.config.RedactSensitive = false
	ctx := context.Background()

	source.set(classify.Payload{Text: "password=hunter42x"})
	_, err := m.CheckOnce(ctx)
	require.NoError(t, err)

	entries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Sensitive)
}

func TestRestoreTextEchoBumps(t *testing.T) {
	m, source, repo, _ := newTestMonitor(t)
	ctx := context.Background()

	source.set(classify.Payload{Text: "round trip"})
	_, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	ev := nextEvent(t, m)

	require.NoError(t, m.Restore(ctx, ev.ID))
	require.Len(t, source.writes, 1)
	assert.Equal(t, "round trip", source.writes[0].Text)

	// The restore write moved the counter; the next poll sees our own
	// payload and folds it into the existing entry.
	captured, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.True(t, captured)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	echo := nextEvent(t, m)
	assert.Equal(t, EventBumped, echo.Type)
	assert.Equal(t, ev.ID, echo.ID)
}

func TestRestoreImage(t *testing.T) {
	m, source, _, _ := newTestMonitor(t)
	ctx := context.Background()

	data := encodePNG(t, 5, 5)
	source.set(classify.Payload{Image: data})
	_, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	ev := nextEvent(t, m)

	require.NoError(t, m.Restore(ctx, ev.ID))
	require.Len(t, source.writes, 1)
	assert.Equal(t, data, source.writes[0].Image)
}

func TestRestoreFileEchoBumps(t *testing.T) {
	m, source, repo, _ := newTestMonitor(t)
	ctx := context.Background()

	source.set(classify.Payload{Text: "file:///tmp/report.pdf\nfile:///tmp/notes.txt"})
	_, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	ev := nextEvent(t, m)
	assert.Equal(t, classify.KindFile, ev.Kind)

	require.NoError(t, m.Restore(ctx, ev.ID))
	require.Len(t, source.writes, 1)
	assert.Equal(t, []string{"/tmp/report.pdf", "/tmp/notes.txt"}, source.writes[0].Files)

	captured, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	assert.True(t, captured)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	echo := nextEvent(t, m)
	assert.Equal(t, EventBumped, echo.Type)
	assert.Equal(t, ev.ID, echo.ID)
}

func TestRestoreMissingEntry(t *testing.T) {
	m, _, _, _ := newTestMonitor(t)
	err := m.Restore(context.Background(), 9999)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestRestoreMissingArtifact(t *testing.T) {
	m, source, _, store := newTestMonitor(t)
	ctx := context.Background()

	source.set(classify.Payload{Image: encodePNG(t, 3, 3)})
	_, err := m.CheckOnce(ctx)
	require.NoError(t, err)
	ev := nextEvent(t, m)

	entry, err := m.repository.Get(ctx, ev.ID)
	require.NoError(t, err)
	require.NoError(t, store.Delete(entry.Hash))

	err = m.Restore(ctx, ev.ID)
	assert.ErrorIs(t, err, artifact.ErrNotFound)
}

func TestRunStopsOnCancel(t *testing.T) {
	m, _, _, _ := newTestMonitor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, m.Run(ctx))
}
