// Package ingest turns uploaded files, paths and pasted text into the raw
// document list consumed by the clustering service.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// maxParallelReads bounds concurrent file reads.
const maxParallelReads = 8

// IsText reports whether name carries the accepted .txt extension.
func IsText(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".txt")
}

// ExpandPaths resolves glob patterns and keeps .txt files, in argument order.
// A pattern without matches is kept literally so that reading reports it.
// A malformed pattern fails with filepath.ErrBadPattern.
func ExpandPaths(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if IsText(m) {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// ReadFiles reads every path concurrently and returns the trimmed, non-empty
// contents in path order.
func ReadFiles(ctx context.Context, paths []string) ([]string, error) {
	contents := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			text, err := DecodeText(data)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			contents[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dropEmpty(contents), nil
}

// ReadUpload decodes one uploaded file body.
func ReadUpload(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return DecodeText(data)
}

// DecodeText validates UTF-8 and trims surrounding whitespace.
func DecodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("content is not valid UTF-8")
	}
	return strings.TrimSpace(string(data)), nil
}

// SplitPasted treats each non-blank line of text as one document.
func SplitPasted(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Collect joins file contents and pasted lines, files first.
func Collect(files []string, pasted string) []string {
	docs := dropEmpty(files)
	return append(docs, SplitPasted(pasted)...)
}

func dropEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
