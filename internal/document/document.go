// Package document rewrites the marked region of a text document.
package document

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Markers delimit the generated region.
type Markers struct {
	Start string
	End   string
}

// Store reads and writes a whole document.
type Store interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, content string) error
}

// Replace swaps the first start marker, the first end marker after it and
// everything in between for start+block+end. Content outside the markers is
// preserved as is. When either marker is missing the content is returned
// unchanged with found set to false.
func Replace(content string, m Markers, block string) (updated string, found bool) {
	start := strings.Index(content, m.Start)
	if start < 0 {
		return content, false
	}
	bodyStart := start + len(m.Start)
	end := strings.Index(content[bodyStart:], m.End)
	if end < 0 {
		return content, false
	}
	tail := bodyStart + end + len(m.End)
	return content[:start] + m.Start + block + m.End + content[tail:], true
}

// Update reads the document, replaces the marked region with block and writes it back.
// The write happens even when the markers are missing.
func Update(ctx context.Context, store Store, m Markers, block string, logger *zap.Logger) (bool, error) {
	content, err := store.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read document: %w", err)
	}
	updated, found := Replace(content, m, block)
	if !found {
		logger.Warn("markers not found, document content left as is",
			zap.String("start", m.Start), zap.String("end", m.End))
	}
	if err := store.Write(ctx, updated); err != nil {
		return found, fmt.Errorf("failed to write document: %w", err)
	}
	logger.Debug("document written", zap.Bool("markers_found", found), zap.Bool("changed", updated != content))
	return found, nil
}
