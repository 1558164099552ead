package detect

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileFrameSource serves frames from still images on disk, cycling through
// them in filename order. It stands in for the live camera during
// development and replay: point it at a directory of captured JPEGs and the
// polling loop behaves as if the subject were in front of the camera.
type FileFrameSource struct {
	mu     sync.Mutex
	frames []Frame
	next   int
}

// NewFileFrameSource loads every .jpg/.jpeg/.png under dir. An empty or
// missing directory is not an error at construction; GrabFrame reports
// ErrFrameNotReady instead, matching a camera that never warmed up.
func NewFileFrameSource(dir string) (*FileFrameSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read frame dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	src := &FileFrameSource{}
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", name, err)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			// Skip files that aren't decodable images rather than failing
			// the whole source.
			continue
		}
		src.frames = append(src.frames, Frame{Data: data, Width: cfg.Width, Height: cfg.Height})
	}

	return src, nil
}

// GrabFrame returns the next frame in rotation.
func (f *FileFrameSource) GrabFrame(_ context.Context) (Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.frames) == 0 {
		return Frame{}, ErrFrameNotReady
	}
	frame := f.frames[f.next]
	f.next = (f.next + 1) % len(f.frames)
	return frame, nil
}

// Len reports how many frames were loaded.
func (f *FileFrameSource) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}
