// Package hashgen builds the server manifest from a local game install:
// it walks the game directory, hashes every patchable file, and writes
// hash-file.json in the format the patch client consumes.
package hashgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teraforge/launcher/internal/events"
	"github.com/teraforge/launcher/internal/patch"
)

// Generator hashes a game install into a manifest. Hashing is fanned out
// across workers; file order in the output is deterministic regardless.
type Generator struct {
	gamePath      string
	outputPath    string
	fileServerURL string
	workers       int
	bus           *events.Bus
	log           *zap.Logger
}

// NewGenerator builds a Generator writing to outputPath. File URLs in the
// manifest point under fileServerURL.
func NewGenerator(gamePath, outputPath, fileServerURL string, bus *events.Bus, log *zap.Logger) *Generator {
	return &Generator{
		gamePath:      gamePath,
		outputPath:    outputPath,
		fileServerURL: fileServerURL,
		workers:       runtime.NumCPU(),
		bus:           bus,
		log:           log,
	}
}

// Generate walks the game directory, hashes every non-ignored file, and
// writes the manifest. Progress is emitted per hashed file.
func (g *Generator) Generate(ctx context.Context) (*patch.Manifest, error) {
	start := time.Now()

	paths, totalSize, err := g.collect()
	if err != nil {
		return nil, err
	}
	g.log.Info("hash generation started",
		zap.Int("files", len(paths)),
		zap.Int64("total_size", totalSize),
		zap.Int("workers", g.workers))

	type result struct {
		index int
		entry patch.FileInfo
		err   error
	}

	jobs := make(chan int)
	// Buffered so workers never block on a reader that bailed out early.
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rel := paths[i]
				full := filepath.Join(g.gamePath, filepath.FromSlash(rel))
				hash, err := patch.HashFile(full)
				if err != nil {
					results <- result{index: i, err: err}
					continue
				}
				info, err := os.Stat(full)
				if err != nil {
					results <- result{index: i, err: err}
					continue
				}
				results <- result{index: i, entry: patch.FileInfo{
					Path: rel,
					Hash: hash,
					Size: info.Size(),
					URL:  g.fileServerURL + "/files/" + rel,
				}}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range paths {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	entries := make([]patch.FileInfo, len(paths))
	var processed int
	for r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("hash %s: %w", paths[r.index], r.err)
		}
		entries[r.index] = r.entry
		processed++
		g.bus.Emit(events.HashFileProgressEvent, events.HashFileProgress{
			CurrentFile:    r.entry.Path,
			Progress:       float64(processed) / float64(len(paths)) * 100,
			ProcessedFiles: processed,
			TotalFiles:     len(paths),
			TotalSize:      totalSize,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest := &patch.Manifest{Files: entries}
	if err := g.write(manifest); err != nil {
		return nil, err
	}
	g.log.Info("hash file written",
		zap.String("path", g.outputPath),
		zap.Int("files", len(entries)),
		zap.Duration("elapsed", time.Since(start)))
	return manifest, nil
}

// collect walks the game directory and returns the sorted, slash-separated
// relative paths of every file the patcher manages, plus their total size.
func (g *Generator) collect() ([]string, int64, error) {
	var paths []string
	var totalSize int64
	err := filepath.WalkDir(g.gamePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(g.gamePath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if patch.Ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		totalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk game directory: %w", err)
	}
	sort.Strings(paths)
	return paths, totalSize, nil
}

func (g *Generator) write(manifest *patch.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(g.outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
