package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

const tinyRig = `name: tiny
nodes:
  - id: root
    children:
      - id: arm
        translation: [1, 0, 0]
animations:
  - id: raise
    tracks:
      - node: arm
        translation:
          keys:
            - {time: 0, value: [1, 0, 0]}
            - {time: 1, value: [1, 1, 0]}
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestResolvePriority(t *testing.T) {
	low, high := t.TempDir(), t.TempDir()
	writeFile(t, low, "a.yaml", "low")
	writeFile(t, low, "b.yaml", "low only")
	writeFile(t, high, "a.yaml", "high")

	m := NewManager(low, high)

	data, err := m.Load("a.yaml")
	if err != nil {
		t.Fatalf("Load(a.yaml): %v", err)
	}
	if string(data) != "high" {
		t.Errorf("expected last added dir to win, got %q", data)
	}

	data, err = m.Load("b.yaml")
	if err != nil {
		t.Fatalf("Load(b.yaml): %v", err)
	}
	if string(data) != "low only" {
		t.Errorf("unexpected content %q", data)
	}

	abs := filepath.Join(low, "b.yaml")
	if path, err := m.Resolve(abs); err != nil || path != abs {
		t.Errorf("Resolve(%s) = %s, %v", abs, path, err)
	}
}

func TestLoadNotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	_, err := m.Load("missing.yaml")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = m.Resolve(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absolute path, got %v", err)
	}
}

func TestLoadCaches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "first")
	m := NewManager(dir)

	if _, err := m.Load("a.yaml"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "a.yaml", "second")
	data, err := m.Load("a.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("expected cached content, got %q", data)
	}

	hits, misses := m.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}

	m.Close()
	if hits, misses := m.Stats(); hits != 0 || misses != 0 {
		t.Errorf("expected stats reset after Close, got %d/%d", hits, misses)
	}
}

func TestLoadRigInstances(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", tinyRig)
	m := NewManager(dir)

	a, err := m.LoadRig("tiny.yaml")
	if err != nil {
		t.Fatalf("LoadRig: %v", err)
	}
	b, err := m.LoadRig("tiny.yaml")
	if err != nil {
		t.Fatalf("LoadRig: %v", err)
	}

	if a.Graph == b.Graph {
		t.Error("instances must not share a graph")
	}
	if a.Animations != b.Animations {
		t.Error("instances must share the animation library")
	}
	if _, ok := a.Animations.Get("raise"); !ok {
		t.Error("expected animation 'raise'")
	}

	arm := a.Graph.Find("arm", true, false)
	a.Graph.Node(arm).Translation.Y = 5
	if b.Graph.Node(arm).Translation.Y != 0 {
		t.Error("modifying one instance changed another")
	}
}

func TestLoadRigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "nodes: []\n")
	m := NewManager(dir)

	if _, err := m.LoadRig("bad.yaml"); err == nil {
		t.Error("expected error for rig without nodes")
	}
	if _, err := m.LoadRig("nope.yaml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadRigConcurrent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", tinyRig)
	m := NewManager(dir)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.LoadRig("tiny.yaml"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent LoadRig: %v", err)
	}
}
