package patch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/teraforge/launcher/internal/events"
)

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// patchServer serves a manifest plus file contents under /files/.
func patchServer(t *testing.T, manifest Manifest, files map[string][]byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hash-file.json", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(manifest)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		rel := r.URL.Path[len("/files/"):]
		data, ok := files[rel]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T, server *httptest.Server, gameDir string, bus *events.Bus) *Service {
	t.Helper()
	client, err := NewClient(server.URL+"/hash-file.json", server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewService(client, gameDir, filepath.Join(gameDir, "file_cache.json"), bus, zap.NewNop())
}

func TestEnumerateFilesToUpdate_DetectsMissingAndChanged(t *testing.T) {
	gameDir := t.TempDir()

	current := []byte("current contents")
	stale := []byte("old contents")
	fresh := []byte("new contents")

	writeGameFile(t, gameDir, "Client/current.pak", current)
	writeGameFile(t, gameDir, "Client/stale.pak", stale)

	manifest := Manifest{Files: []FileInfo{
		{Path: "Client/current.pak", Hash: digest(current), Size: int64(len(current))},
		{Path: "Client/stale.pak", Hash: digest(fresh), Size: int64(len(stale))},
		{Path: "Client/missing.pak", Hash: digest(fresh), Size: int64(len(fresh))},
	}}
	server := patchServer(t, manifest, nil)

	bus := events.NewBus()
	var completed *events.FileCheckCompleted
	bus.Subscribe(events.FileCheckCompletedEvent, func(p any) {
		if fc, ok := p.(events.FileCheckCompleted); ok {
			completed = &fc
		}
	})
	var progressCount int
	bus.Subscribe(events.FileCheckProgressEvent, func(any) { progressCount++ })

	svc := newTestService(t, server, gameDir, bus)
	files, err := svc.EnumerateFilesToUpdate(context.Background())
	if err != nil {
		t.Fatalf("EnumerateFilesToUpdate: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("files to update = %d, want 2: %+v", len(files), files)
	}
	if files[0].Path != "Client/stale.pak" || files[1].Path != "Client/missing.pak" {
		t.Fatalf("unexpected order: %+v", files)
	}
	if completed == nil {
		t.Fatal("no file_check_completed event emitted")
	}
	if completed.TotalFiles != 3 || completed.FilesToUpdate != 2 {
		t.Fatalf("completed event = %+v", completed)
	}
	if progressCount == 0 {
		t.Fatal("no file_check_progress events emitted")
	}

	// The hash cache is persisted for the next check.
	if _, err := os.Stat(filepath.Join(gameDir, "file_cache.json")); err != nil {
		t.Fatalf("hash cache not written: %v", err)
	}
}

func TestEnumerateFilesToUpdate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // deliberately dead

	client, err := NewClient(server.URL+"/hash-file.json", server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	svc := NewService(client, t.TempDir(), filepath.Join(t.TempDir(), "cache.json"), events.NewBus(), zap.NewNop())

	_, err = svc.EnumerateFilesToUpdate(context.Background())
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}

func TestDownloadFiles_VerifiesAndReturnsCounts(t *testing.T) {
	gameDir := t.TempDir()

	a := []byte("aaaa file body")
	b := []byte("bbbbbbbb a longer file body")
	manifest := Manifest{Files: []FileInfo{
		{Path: "a.pak", Hash: digest(a), Size: int64(len(a))},
		{Path: "sub/b.pak", Hash: digest(b), Size: int64(len(b))},
	}}
	server := patchServer(t, manifest, map[string][]byte{
		"a.pak":     a,
		"sub/b.pak": b,
	})

	bus := events.NewBus()
	var samples []events.DownloadProgress
	bus.Subscribe(events.DownloadProgressEvent, func(p any) {
		if dp, ok := p.(events.DownloadProgress); ok {
			samples = append(samples, dp)
		}
	})
	var complete bool
	bus.Subscribe(events.DownloadCompleteEvent, func(any) { complete = true })

	svc := newTestService(t, server, gameDir, bus)
	counts, err := svc.DownloadFiles(context.Background(), manifest.Files)
	if err != nil {
		t.Fatalf("DownloadFiles: %v", err)
	}

	if len(counts) != 2 || counts[0] != int64(len(a)) || counts[1] != int64(len(b)) {
		t.Fatalf("counts = %v, want [%d %d]", counts, len(a), len(b))
	}
	if !complete {
		t.Fatal("no download_complete event emitted")
	}
	if len(samples) == 0 {
		t.Fatal("no download_progress samples emitted")
	}
	last := samples[len(samples)-1]
	if last.DownloadedBytes != int64(len(a)+len(b)) || last.TotalBytes != int64(len(a)+len(b)) {
		t.Fatalf("final sample = %+v, want full byte counts", last)
	}

	got, err := os.ReadFile(filepath.Join(gameDir, "sub", "b.pak"))
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if string(got) != string(b) {
		t.Fatalf("downloaded contents differ")
	}
}

func TestDownloadFiles_HashMismatchAborts(t *testing.T) {
	gameDir := t.TempDir()

	body := []byte("served body")
	files := []FileInfo{{Path: "bad.pak", Hash: digest([]byte("other body")), Size: int64(len(body))}}
	server := patchServer(t, Manifest{Files: files}, map[string][]byte{"bad.pak": body})

	svc := newTestService(t, server, gameDir, events.NewBus())
	if _, err := svc.DownloadFiles(context.Background(), files); err == nil {
		t.Fatal("DownloadFiles succeeded, want hash mismatch error")
	}
	if _, err := os.Stat(filepath.Join(gameDir, "bad.pak")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("corrupt file must not be moved into place")
	}
}

func TestDownloadFiles_EmptyListEmitsComplete(t *testing.T) {
	server := patchServer(t, Manifest{}, nil)
	bus := events.NewBus()
	var complete bool
	bus.Subscribe(events.DownloadCompleteEvent, func(any) { complete = true })

	svc := newTestService(t, server, t.TempDir(), bus)
	counts, err := svc.DownloadFiles(context.Background(), nil)
	if err != nil || counts != nil {
		t.Fatalf("DownloadFiles(nil) = %v, %v", counts, err)
	}
	if !complete {
		t.Fatal("empty batch must still emit download_complete")
	}
}

func TestIgnored(t *testing.T) {
	cases := []struct {
		rel  string
		want bool
	}{
		{"Launcher.exe", true},
		{"S1Game/Logs/today.log", true},
		{"$Patch", true},
		{"S1Game/CookedPC/core.gpk", false},
		{"Binaries/Tera.exe", false},
		{"file_cache.json", true},
	}
	for _, tc := range cases {
		if got := Ignored(tc.rel); got != tc.want {
			t.Fatalf("Ignored(%q) = %v, want %v", tc.rel, got, tc.want)
		}
	}
}

func writeGameFile(t *testing.T, gameDir, rel string, data []byte) {
	t.Helper()
	full := filepath.Join(gameDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
