package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FormatFunc post-processes generated content before it is written, e.g.
// gofmt for Go output. path is the destination of the file.
type FormatFunc func(path string, src []byte) ([]byte, error)

// FileWriter writes generated files and keeps metrics about them.
// It is safe for concurrent use.
type FileWriter struct {
	Format FormatFunc

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks generation output.
type WriterMetrics struct {
	FilesWritten int
	TotalBytes   int64
	FormatTime   time.Duration
	WriteTime    time.Duration
}

// Metrics returns a snapshot of the metrics.
func (w *FileWriter) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// Write formats src and writes it to path, creating parent directories.
// When formatting fails, the raw content is written to path+".error" for
// debugging and no file is written at path.
func (w *FileWriter) Write(path string, src []byte) error {
	out := src
	var formatTime time.Duration
	if w.Format != nil {
		start := time.Now()
		formatted, err := w.Format(path, src)
		formatTime = time.Since(start)
		if err != nil {
			debugPath := path + ".error"
			_ = os.MkdirAll(filepath.Dir(debugPath), 0o755)
			_ = os.WriteFile(debugPath, src, 0o644)
			return fmt.Errorf("format %s: %w (unformatted written to %s)", filepath.Base(path), err, debugPath)
		}
		out = formatted
	}

	start := time.Now()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(out))
	w.metrics.FormatTime += formatTime
	w.metrics.WriteTime += time.Since(start)
	w.mu.Unlock()
	return nil
}
