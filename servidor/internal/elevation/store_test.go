package elevation

import (
	"path/filepath"
	"testing"

	"PlanetVision/shared/icosphere"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "planet.pv"), 42)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestSaveLoadRoundtrip(t *testing.T) {
	s := openTestStore(t)

	id := icosphere.NewTileID(3, 1, 0, 1)
	res := int32(4)
	want := make([]float64, icosphere.TileVertexCount(res))
	for i := range want {
		want[i] = float64(i) * 0.25
	}

	if err := s.SavePatch(id, res, want); err != nil {
		t.Fatalf("SavePatch: %v", err)
	}

	got, err := s.LoadPatch(id, res)
	if err != nil {
		t.Fatalf("LoadPatch: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("amostras: %d, esperado %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("amostra %d: %v, esperado %v", i, got[i], want[i])
		}
	}
}

func TestLoadMissingPatch(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.LoadPatch(icosphere.NewTileID(0, 0, 0, 0), 4); err == nil {
		t.Fatal("esperado erro para patch ausente")
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := openTestStore(t)

	id := icosphere.NewTileID(7, 2, 1, 2)
	res := int32(2)
	n := icosphere.TileVertexCount(res)

	first := make([]float64, n)
	second := make([]float64, n)
	for i := range second {
		second[i] = 9.5
	}

	if err := s.SavePatch(id, res, first); err != nil {
		t.Fatalf("SavePatch: %v", err)
	}
	if err := s.SavePatch(id, res, second); err != nil {
		t.Fatalf("SavePatch (upsert): %v", err)
	}

	got, err := s.LoadPatch(id, res)
	if err != nil {
		t.Fatalf("LoadPatch: %v", err)
	}
	if got[0] != 9.5 {
		t.Errorf("upsert não sobrescreveu: %v", got[0])
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, esperado 1", count)
	}
}

func TestResolutionsAreDistinct(t *testing.T) {
	s := openTestStore(t)

	id := icosphere.NewTileID(0, 0, 0, 0)
	if err := s.SavePatch(id, 2, make([]float64, icosphere.TileVertexCount(2))); err != nil {
		t.Fatalf("SavePatch res 2: %v", err)
	}
	if err := s.SavePatch(id, 4, make([]float64, icosphere.TileVertexCount(4))); err != nil {
		t.Fatalf("SavePatch res 4: %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, esperado 2 (resoluções diferentes)", count)
	}
}
