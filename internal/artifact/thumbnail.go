package artifact

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/jpeg"
)

// Thumbnail returns the path of a thumbnail for the artifact, generating
// one scaled to fit maxPx on its longer side if it does not exist yet.
func (s *Store) Thumbnail(hash string, maxPx int) (string, error) {
	if maxPx <= 0 {
		return "", fmt.Errorf("invalid thumbnail size %d", maxPx)
	}
	thumbPath := s.ThumbPath(hash)
	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}

	data, err := s.Read(hash)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode artifact %s: %w", hash, err)
	}

	w, h := fitSize(src.Bounds().Dx(), src.Bounds().Dy(), maxPx)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	tmp, err := os.CreateTemp(s.dir, ".thumb-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := png.Encode(tmp, dst); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, thumbPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename thumbnail: %w", err)
	}
	return thumbPath, nil
}

// fitSize scales (w, h) down to fit within maxPx on the longer side,
// preserving aspect ratio. Images already small enough keep their size.
func fitSize(w, h, maxPx int) (int, int) {
	if w <= maxPx && h <= maxPx {
		return w, h
	}
	if w >= h {
		scaled := h * maxPx / w
		if scaled < 1 {
			scaled = 1
		}
		return maxPx, scaled
	}
	scaled := w * maxPx / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, maxPx
}
