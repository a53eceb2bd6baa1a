package prefabs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanPaths(t *testing.T) {
	cases := []struct {
		in, prefab, script string
	}{
		{"", "", ""},
		{"player.yaml", "player.yaml", "scripts/player.yaml"},
		{"prefabs/player.yaml", "player.yaml", "scripts/player.yaml"},
		{"zone.tengo", "zone.tengo", "scripts/zone.tengo"},
		{"prefabs/scripts/zone.tengo", "scripts/zone.tengo", "scripts/zone.tengo"},
		{"scripts/zone.tengo", "scripts/zone.tengo", "scripts/zone.tengo"},
	}
	for _, tc := range cases {
		if got := cleanPrefabPath(tc.in); got != tc.prefab {
			t.Fatalf("cleanPrefabPath(%q) = %q, want %q", tc.in, got, tc.prefab)
		}
		if got := cleanScriptPath(tc.in); got != tc.script {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", tc.in, got, tc.script)
		}
	}
}

func TestLoadPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	old := DiskRoot
	DiskRoot = dir
	t.Cleanup(func() { DiskRoot = old })

	if err := os.WriteFile(filepath.Join(dir, LayersFile), []byte("layers:\n  enemy: [enemy]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadLayerMatrix(LayersFile)
	if err != nil {
		t.Fatal(err)
	}
	pairs := m.Pairs()
	if len(pairs) != 1 || pairs[0].A.String() != "enemy" || pairs[0].B.String() != "enemy" {
		t.Fatalf("expected disk override, got %v", pairs)
	}
	if _, ok := ModTime(LayersFile); !ok {
		t.Fatalf("expected mod time for disk file")
	}

	if _, err := Load("player.yaml"); err != nil {
		t.Fatalf("embedded fallback failed: %v", err)
	}
	if _, err := LoadScript("zone_counter.tengo"); err != nil {
		t.Fatalf("embedded script fallback failed: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("missing.yaml"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := LoadSpec[LayerMatrixSpec]("missing.yaml"); err == nil {
		t.Fatalf("expected error")
	}
}
