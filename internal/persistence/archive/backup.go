package archive

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mapsync.ai/internal/persistence/snapshot"
)

type BackupMeta struct {
	Source    string `json:"source"`
	Snapshot  string `json:"snapshot"`
	Version   int    `json:"version"`
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Fixtures  int    `json:"fixtures"`
	CreatedAt string `json:"created_at"`
}

const stampLayout = "20060102T150405.000000000Z"

// BackupSnapshot copies the snapshot at snapshotPath into
// `backupDir/<name>_<stamp>/` next to a meta.json describing it. It returns
// (path, false, nil) when there is nothing on disk to back up yet.
func BackupSnapshot(backupDir, snapshotPath string, now time.Time) (string, bool, error) {
	h, err := snapshot.ReadHeader(snapshotPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	name := filepath.Base(snapshotPath)
	dir := filepath.Join(backupDir, backupPrefix(snapshotPath)+now.UTC().Format(stampLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, err
	}
	dst := filepath.Join(dir, name)
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", false, err
	}

	meta := BackupMeta{
		Source:    snapshotPath,
		Snapshot:  name,
		Version:   h.Version,
		Rows:      h.Rows,
		Cols:      h.Cols,
		Fixtures:  h.Fixtures,
		CreatedAt: now.UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644)
	}
	return dst, true, nil
}

// Backups lists the backed-up copies of snapshotPath, oldest first.
func Backups(backupDir, snapshotPath string) ([]string, error) {
	ents, err := os.ReadDir(backupDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	prefix := backupPrefix(snapshotPath)
	name := filepath.Base(snapshotPath)
	var out []string
	for _, e := range ents {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		p := filepath.Join(backupDir, e.Name(), name)
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func backupPrefix(snapshotPath string) string {
	return filepath.Base(snapshotPath) + "_"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
