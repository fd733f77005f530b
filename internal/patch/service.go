package patch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/teraforge/launcher/internal/events"
)

const (
	// checkProgressStride keeps file-check events sparse; one per file would
	// flood the bus on large installs.
	checkProgressStride = 50

	// progressInterval throttles per-file download progress emission.
	progressInterval = 100 * time.Millisecond

	copyBufferSize = 32 * 1024
)

// Service implements the file-transfer operations the update orchestrator
// drives: enumerating files that differ from the server manifest and
// downloading them, emitting progress events along the way.
type Service struct {
	client    *Client
	gamePath  string
	cachePath string
	bus       *events.Bus
	log       *zap.Logger
}

// NewService wires a Service against the patch client and game directory.
func NewService(client *Client, gamePath, cachePath string, bus *events.Bus, log *zap.Logger) *Service {
	return &Service{
		client:    client,
		gamePath:  gamePath,
		cachePath: cachePath,
		bus:       bus,
		log:       log,
	}
}

// EnumerateFilesToUpdate fetches the server manifest and returns the ordered
// list of files whose local copy is missing or differs. A file is current
// when it exists, matches the declared size, and its sha256 matches; the
// mtime cache skips re-hashing files that have not changed since last check.
func (s *Service) EnumerateFilesToUpdate(ctx context.Context) ([]FileInfo, error) {
	start := time.Now()

	manifest, err := s.client.FetchManifest(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("server manifest fetched", zap.Int("files", len(manifest.Files)))

	cache := loadCache(s.cachePath)
	total := len(manifest.Files)

	var toUpdate []FileInfo
	var updateSize int64
	for i, entry := range manifest.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.needsUpdate(entry, cache) {
			toUpdate = append(toUpdate, entry)
			updateSize += entry.Size
		}
		if (i+1)%checkProgressStride == 0 || i == total-1 {
			s.bus.Emit(events.FileCheckProgressEvent, events.FileCheckProgress{
				CurrentFile:   entry.Path,
				Progress:      float64(i+1) / float64(total) * 100,
				CurrentCount:  i + 1,
				TotalFiles:    total,
				ElapsedTime:   time.Since(start).Seconds(),
				FilesToUpdate: len(toUpdate),
			})
		}
	}

	if err := saveCache(s.cachePath, cache); err != nil {
		s.log.Warn("hash cache not saved", zap.Error(err))
	}

	s.bus.Emit(events.FileCheckCompletedEvent, events.FileCheckCompleted{
		TotalFiles:       total,
		FilesToUpdate:    len(toUpdate),
		TotalSize:        updateSize,
		TotalTimeSeconds: time.Since(start).Seconds(),
	})
	s.log.Info("file check completed",
		zap.Int("files_to_update", len(toUpdate)),
		zap.Int64("update_size", updateSize),
		zap.Duration("elapsed", time.Since(start)))

	return toUpdate, nil
}

// needsUpdate decides whether one manifest entry requires a download. Any
// doubt (unreadable file, hash failure) marks the file for update.
func (s *Service) needsUpdate(entry FileInfo, cache hashCache) bool {
	local := filepath.Join(s.gamePath, filepath.FromSlash(entry.Path))

	info, err := os.Stat(local)
	if err != nil {
		return true
	}
	if info.Size() != entry.Size {
		return true
	}

	mod := info.ModTime()
	if cached, ok := cache[entry.Path]; ok && cached.LastModified.Equal(mod) {
		return cached.Hash != entry.Hash
	}

	hash, err := HashFile(local)
	if err != nil {
		s.log.Warn("local hash failed, marking for update",
			zap.String("path", entry.Path), zap.Error(err))
		return true
	}
	cache[entry.Path] = cachedFile{Hash: hash, LastModified: mod}
	return hash != entry.Hash
}

// DownloadFiles downloads the given files in order and returns one
// downloaded-byte count per input file, same order. The batch fails
// atomically: the first error aborts and no partial list is returned.
func (s *Service) DownloadFiles(ctx context.Context, files []FileInfo) ([]int64, error) {
	if len(files) == 0 {
		s.bus.Emit(events.DownloadCompleteEvent, events.DownloadComplete{})
		return nil, nil
	}

	totalSize := TotalSize(files)
	counts := make([]int64, 0, len(files))
	var accumulated int64

	for i, f := range files {
		s.log.Info("downloading file",
			zap.String("path", f.Path),
			zap.Int("index", i+1),
			zap.Int("total", len(files)))
		n, err := s.downloadFile(ctx, f, i+1, len(files), totalSize, accumulated)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", f.Path, err)
		}
		counts = append(counts, n)
		accumulated += n
	}

	s.bus.Emit(events.DownloadCompleteEvent, events.DownloadComplete{})
	s.log.Info("all files downloaded", zap.Int64("bytes", accumulated))
	return counts, nil
}

func (s *Service) downloadFile(ctx context.Context, f FileInfo, index, totalFiles int, totalSize, accumulated int64) (int64, error) {
	local := filepath.Join(s.gamePath, filepath.FromSlash(f.Path))
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	fileURL := f.URL
	if fileURL == "" {
		fileURL = s.client.fileServerURL + "/files/" + f.Path
	}

	body, _, err := s.client.openDownload(ctx, fileURL)
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(local), ".patch-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	start := time.Now()
	lastEmit := start
	var downloaded int64
	buf := make([]byte, copyBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			_ = tmp.Close()
			return 0, err
		}
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := tmp.Write(buf[:n]); err != nil {
				_ = tmp.Close()
				return 0, fmt.Errorf("write temp file: %w", err)
			}
			downloaded += int64(n)
			if time.Since(lastEmit) >= progressInterval {
				s.emitProgress(f, index, totalFiles, totalSize, accumulated, downloaded, start)
				lastEmit = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = tmp.Close()
			return 0, fmt.Errorf("%w: %v", ErrUnreachable, readErr)
		}
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}

	// Final sample so the file always ends at its full byte count.
	s.emitProgress(f, index, totalFiles, totalSize, accumulated, downloaded, start)

	hash, err := HashFile(tmpPath)
	if err != nil {
		return 0, err
	}
	if hash != f.Hash {
		return 0, fmt.Errorf("hash mismatch for %s: want %s, got %s", f.Path, f.Hash, hash)
	}

	if err := os.Rename(tmpPath, local); err != nil {
		return 0, fmt.Errorf("move into place: %w", err)
	}
	return downloaded, nil
}

func (s *Service) emitProgress(f FileInfo, index, totalFiles int, totalSize, accumulated, downloaded int64, start time.Time) {
	elapsed := time.Since(start).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(downloaded) / elapsed
	}
	overall := accumulated + downloaded
	var pct float64
	if totalSize > 0 {
		pct = float64(overall) / float64(totalSize) * 100
	}
	s.bus.Emit(events.DownloadProgressEvent, events.DownloadProgress{
		FileName:         f.Path,
		Progress:         pct,
		Speed:            speed,
		DownloadedBytes:  overall,
		TotalBytes:       totalSize,
		TotalFiles:       totalFiles,
		ElapsedTime:      elapsed,
		CurrentFileIndex: index,
	})
}
