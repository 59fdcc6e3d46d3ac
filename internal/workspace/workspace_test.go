package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_CreateAndCleanup(t *testing.T) {
	tempBase := t.TempDir()
	mgr := NewManager(tempBase)

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	wsPath := mgr.GetPath()
	if wsPath == "" {
		t.Fatal("GetPath() returned empty string")
	}

	if !strings.HasPrefix(filepath.Base(wsPath), "bookbuilder-") {
		t.Errorf("Expected bookbuilder- prefixed directory, got: %s", wsPath)
	}

	if _, err := os.Stat(wsPath); os.IsNotExist(err) {
		t.Errorf("Workspace directory does not exist: %s", wsPath)
	}

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	if _, err := os.Stat(wsPath); !os.IsNotExist(err) {
		t.Errorf("Workspace directory still exists after cleanup: %s", wsPath)
	}
}

func TestManager_CleanupWithoutCreate(t *testing.T) {
	mgr := NewManager(t.TempDir())

	if err := mgr.Cleanup(); err != nil {
		t.Fatalf("Cleanup() on unused manager failed: %v", err)
	}
}

func TestManager_CreateSubdir(t *testing.T) {
	mgr := NewManager(t.TempDir())

	if _, err := mgr.CreateSubdir("unpacked"); err == nil {
		t.Fatal("CreateSubdir() before Create() should fail")
	}

	if err := mgr.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	defer func() { _ = mgr.Cleanup() }()

	subdir, err := mgr.CreateSubdir("unpacked")
	if err != nil {
		t.Fatalf("CreateSubdir() failed: %v", err)
	}

	if filepath.Dir(subdir) != mgr.GetPath() {
		t.Errorf("Subdir %s is not inside workspace %s", subdir, mgr.GetPath())
	}

	if _, err := os.Stat(subdir); os.IsNotExist(err) {
		t.Errorf("Subdirectory does not exist: %s", subdir)
	}
}

func TestManager_DistinctWorkspaces(t *testing.T) {
	tempBase := t.TempDir()

	a := NewManager(tempBase)
	b := NewManager(tempBase)

	if err := a.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	defer func() { _ = a.Cleanup() }()
	if err := b.Create(); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	defer func() { _ = b.Cleanup() }()

	if a.GetPath() == b.GetPath() {
		t.Errorf("Two workspaces share a path: %s", a.GetPath())
	}
}
