package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_YAML(t *testing.T) {
	data := []byte("tra: model.tra\nrew: model.tra.rew\nlab: model.lab\nseed: 42\nstrict: true\n")
	m, err := Load(data, ".yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Tra != "model.tra" || m.Rew != "model.tra.rew" || m.Lab != "model.lab" {
		t.Errorf("paths: got %+v", m)
	}
	if m.Seed == nil || *m.Seed != 42 {
		t.Errorf("seed: got %v", m.Seed)
	}
	if !m.Strict {
		t.Error("strict: got false, want true")
	}
}

func TestLoad_JSON(t *testing.T) {
	data := []byte(`{"tra":"m.tra","seed":7}`)
	m, err := Load(data, ".json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Tra != "m.tra" {
		t.Errorf("tra: got %q", m.Tra)
	}
	if m.Seed == nil || *m.Seed != 7 {
		t.Errorf("seed: got %v", m.Seed)
	}
	if m.Rew != "" || m.Lab != "" {
		t.Errorf("optional paths should stay empty: %+v", m)
	}
}

func TestLoad_DetectByContent(t *testing.T) {
	if m, err := Load([]byte(`{"tra":"a.tra"}`), ""); err != nil || m.Tra != "a.tra" {
		t.Errorf("detect json: m=%+v err=%v", m, err)
	}
	if m, err := Load([]byte("tra: b.tra\n"), ""); err != nil || m.Tra != "b.tra" {
		t.Errorf("detect yaml: m=%+v err=%v", m, err)
	}
}

func TestLoad_MissingTra(t *testing.T) {
	if _, err := Load([]byte("seed: 3\n"), ".yaml"); err == nil {
		t.Fatal("expected error for manifest without tra")
	}
}

func TestLoadFromPath_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(path, []byte("tra: model.tra\nlab: /abs/model.lab\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join(dir, "model.tra"); m.Tra != want {
		t.Errorf("tra: got %q, want %q", m.Tra, want)
	}
	// Absolute paths are left alone, empty optional paths stay empty.
	if m.Lab != "/abs/model.lab" {
		t.Errorf("lab: got %q", m.Lab)
	}
	if m.Rew != "" {
		t.Errorf("rew: got %q, want empty", m.Rew)
	}
}
