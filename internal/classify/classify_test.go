package classify

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestClassifyText(t *testing.T) {
	c := New(60)
	cand, err := c.Classify(Payload{Text: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, KindText, cand.Kind)
	assert.Equal(t, "hello world", cand.Text)
	assert.Equal(t, []byte("hello world"), cand.Data)
	assert.Equal(t, "hello world", cand.Preview)
	assert.Equal(t, 11, cand.Size)
}

func TestClassifyTextWins(t *testing.T) {
	c := New(60)
	cand, err := c.Classify(Payload{Text: "both", Image: encodePNG(t, 1, 1)})
	require.NoError(t, err)
	assert.Equal(t, KindText, cand.Kind)
}

func TestClassifyEmpty(t *testing.T) {
	c := New(60)
	_, err := c.Classify(Payload{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestClassifyImage(t *testing.T) {
	c := New(60)
	data := encodePNG(t, 12, 34)
	cand, err := c.Classify(Payload{Image: data})
	require.NoError(t, err)
	assert.Equal(t, KindImage, cand.Kind)
	assert.Equal(t, data, cand.Data)
	assert.Equal(t, 12, cand.Width)
	assert.Equal(t, 34, cand.Height)
	assert.Equal(t, "[Image: 12x34]", cand.Preview)
	assert.Equal(t, len(data), cand.Size)
}

func TestClassifyImageUndecodable(t *testing.T) {
	c := New(60)
	cand, err := c.Classify(Payload{Image: []byte{0xde, 0xad, 0xbe, 0xef}})
	require.NoError(t, err)
	assert.Equal(t, KindImage, cand.Kind)
	assert.Equal(t, "[Image]", cand.Preview)
	assert.Zero(t, cand.Width)
	assert.Zero(t, cand.Height)
}

func TestClassifyFiles(t *testing.T) {
	c := New(60)
	cand, err := c.Classify(Payload{Files: []string{"/home/u/report.pdf"}})
	require.NoError(t, err)
	assert.Equal(t, KindFile, cand.Kind)
	assert.Equal(t, "report.pdf", cand.Preview)
	assert.Equal(t, "/home/u/report.pdf", cand.Text)
}

func TestClassifyFilesMultiple(t *testing.T) {
	c := New(60)
	cand, err := c.Classify(Payload{Files: []string{"/a/one.txt", "/b/two.txt", "/c/three.txt"}})
	require.NoError(t, err)
	assert.Equal(t, KindFile, cand.Kind)
	assert.Equal(t, "3 files: one.txt, ...", cand.Preview)
	assert.Equal(t, []byte("/a/one.txt\n/b/two.txt\n/c/three.txt"), cand.Data)
}

func TestClassifyFileURIText(t *testing.T) {
	c := New(60)
	cand, err := c.Classify(Payload{Text: "file:///home/u/a.txt\nfile:///home/u/b%20c.txt\n"})
	require.NoError(t, err)
	assert.Equal(t, KindFile, cand.Kind)
	assert.Equal(t, "/home/u/a.txt\n/home/u/b c.txt", cand.Text)
}

func TestClassifyMixedLinesStayText(t *testing.T) {
	c := New(60)
	cand, err := c.Classify(Payload{Text: "file:///home/u/a.txt\nnot a uri"})
	require.NoError(t, err)
	assert.Equal(t, KindText, cand.Kind)
}

func TestPreviewCollapsesWhitespace(t *testing.T) {
	c := New(60)
	assert.Equal(t, "a b c", c.Preview("a\n\tb   c"))
}

func TestPreviewTruncatesOnRuneBoundary(t *testing.T) {
	c := New(10)
	got := c.Preview(strings.Repeat("é", 40))
	assert.Equal(t, strings.Repeat("é", 7)+"...", got)
	assert.True(t, len([]rune(got)) == 10)
}

func TestPreviewShortInputUntouched(t *testing.T) {
	c := New(10)
	assert.Equal(t, "short", c.Preview("short"))
}
