package icosphere

import "log"

// PrecomputedTileEntry guarda a geometria derivada de um tile para que o
// gerenciador de visibilidade nunca refaça trigonometria por frame.
type PrecomputedTileEntry struct {
	ID      TileID
	Normal  Vec    // direção unitária do centroide
	Center  Vec    // centroide projetado na esfera, em espaço de mundo
	Corners [3]Vec // cantos do tile em espaço de mundo
}

// TileRegistry é a tabela pré-computada de todos os tiles de uma
// profundidade. Cobre deliberadamente todas as tilesPerEdge² células
// inteiras de cada face, sem filtragem triangular: células com x+y >= n
// são os triângulos invertidos, refletidos na diagonal pelo mapeamento.
// O total é sempre 20 * (2^depth)². O registro é imutável depois de
// construído; mudanças de profundidade reconstroem a tabela inteira.
type TileRegistry struct {
	Depth  int32
	Radius float64
	Origin Vec

	entries map[TileID]*PrecomputedTileEntry
	ordered []*PrecomputedTileEntry
}

// NewTileRegistry constrói o registro completo de uma profundidade.
func NewTileRegistry(depth int32, radius float64, origin Vec) *TileRegistry {
	n := int32(1) << depth
	total := NumFaces * n * n

	r := &TileRegistry{
		Depth:   depth,
		Radius:  radius,
		Origin:  origin,
		entries: make(map[TileID]*PrecomputedTileEntry, total),
		ordered: make([]*PrecomputedTileEntry, 0, total),
	}

	for face := int32(0); face < NumFaces; face++ {
		for x := int32(0); x < n; x++ {
			for y := int32(0); y < n; y++ {
				id := TileID{Face: face, X: x, Y: y, Depth: depth}
				e := r.buildEntry(id)
				r.entries[id] = e
				r.ordered = append(r.ordered, e)
			}
		}
	}

	log.Printf("[Registry] Profundidade %d pré-computada: %d tiles", depth, len(r.ordered))
	return r
}

func (r *TileRegistry) buildEntry(id TileID) *PrecomputedTileEntry {
	normal := id.CenterDirection()
	e := &PrecomputedTileEntry{
		ID:     id,
		Normal: normal,
		Center: r.Origin.Add(normal.Scale(r.Radius)),
	}
	// Cantos via a grade inteira mínima (resolution 2), então tiles
	// vizinhos relatam cantos bit a bit idênticos.
	corners := [3][2]int32{{0, 0}, {1, 0}, {0, 1}}
	for k, c := range corners {
		dir := BaryToDirection(id.Face, BaryLocalToGlobal(2, id, c[0], c[1]))
		e.Corners[k] = r.Origin.Add(dir.Scale(r.Radius))
	}
	return e
}

// Entry retorna a entrada pré-computada do tile, ou false se o id não
// pertence a este registro (profundidade diferente ou fora da grade).
func (r *TileRegistry) Entry(id TileID) (*PrecomputedTileEntry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Len retorna o número de tiles registrados.
func (r *TileRegistry) Len() int {
	return len(r.ordered)
}

// Entries retorna todas as entradas em ordem determinística, para a
// varredura linear do teste de cone. O slice não deve ser modificado.
func (r *TileRegistry) Entries() []*PrecomputedTileEntry {
	return r.ordered
}
