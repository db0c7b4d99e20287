package archive

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
	"mapsync.ai/internal/persistence/snapshot"
)

func TestBackupSnapshot_CopiesAndDescribes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.snap")
	m := mapstore.NewMemory(src, model.Dimensions{Rows: 2, Cols: 3})
	m.AddFixture(model.Point{Row: 1, Col: 2}, model.NewGround("loam", true, 7))
	if err := snapshot.Save(src, m); err != nil {
		t.Fatalf("save: %v", err)
	}
	want, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read src: %v", err)
	}

	backups := filepath.Join(dir, "backups")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dst, ok, err := BackupSnapshot(backups, src, now)
	if err != nil || !ok {
		t.Fatalf("backup: ok=%v err=%v", ok, err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("backup content differs from the snapshot")
	}

	b, err := os.ReadFile(filepath.Join(filepath.Dir(dst), "meta.json"))
	if err != nil {
		t.Fatalf("meta.json: %v", err)
	}
	var meta BackupMeta
	if err := json.Unmarshal(b, &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if meta.Rows != 2 || meta.Cols != 3 || meta.Fixtures != 1 || meta.Snapshot != "main.snap" {
		t.Fatalf("meta=%+v", meta)
	}

	if _, _, err := BackupSnapshot(backups, src, now.Add(time.Second)); err != nil {
		t.Fatalf("second backup: %v", err)
	}
	list, err := Backups(backups, src)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0] != dst {
		t.Fatalf("backups=%v", list)
	}
}

func TestBackupSnapshot_MissingSourceIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	_, ok, err := BackupSnapshot(filepath.Join(dir, "backups"), filepath.Join(dir, "new.snap"), time.Now())
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	list, err := Backups(filepath.Join(dir, "backups"), filepath.Join(dir, "new.snap"))
	if err != nil || len(list) != 0 {
		t.Fatalf("list=%v err=%v", list, err)
	}
}
