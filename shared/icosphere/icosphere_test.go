package icosphere

import (
	"math"
	"testing"
)

func TestDirectionToFaceCentroids(t *testing.T) {
	// O centroide de cada face precisa mapear de volta para a própria face.
	for f := int32(0); f < NumFaces; f++ {
		if got := DirectionToFace(FaceCenter(f)); got != f {
			t.Errorf("centroide da face %d mapeou para %d", f, got)
		}
	}
}

func TestBaryRoundTrip(t *testing.T) {
	// Direção -> (face, bary) -> direção deve fechar com erro angular mínimo.
	dirs := []Vec{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		{0.3, -0.7, 0.648}, {-0.5, 0.5, 0.70710678},
		{0.1, 0.2, -0.97}, {0.9, 0.1, 0.42},
	}
	for _, d := range dirs {
		d = d.Normalize()
		face := DirectionToFace(d)
		b := DirectionToBary(face, d)
		back := BaryToDirection(face, b)
		if dot := back.Dot(d); dot < 1-1e-9 {
			t.Errorf("ida e volta divergiu para %+v: dot=%.12f (face %d, bary %+v)", d, dot, face, b)
		}
	}
}

func TestDirectionToBaryInsideFace(t *testing.T) {
	// Pontos interiores da face escolhida ficam com u, v, w em [0, 1].
	dirs := []Vec{
		{0.2, 0.9, -0.1}, {0.7, -0.3, 0.4}, {-0.8, 0.1, 0.5},
	}
	for _, d := range dirs {
		d = d.Normalize()
		face := DirectionToFace(d)
		b := DirectionToBary(face, d)
		if b.U < -1e-9 || b.V < -1e-9 || b.W() < -1e-9 {
			t.Errorf("bary fora da face para %+v: %+v (w=%.9f)", d, b, b.W())
		}
	}
}

func TestDirectionToBaryDegenerate(t *testing.T) {
	b := DirectionToBary(0, Vec{})
	if b.U != 1.0/3.0 || b.V != 1.0/3.0 {
		t.Errorf("direção nula deveria cair no centroide, veio %+v", b)
	}
}

func TestCanonicalBaryReflection(t *testing.T) {
	cases := []struct {
		in   Barycentric
		want Barycentric
	}{
		{Barycentric{0.2, 0.3}, Barycentric{0.2, 0.3}},    // dentro: intocado
		{Barycentric{0.8, 0.9}, Barycentric{0.1, 0.2}},    // fora: refletido na diagonal
		{Barycentric{1.0, 0.75}, Barycentric{0.25, 0.0}},  // fora: refletido
	}
	for _, c := range cases {
		got := canonicalBary(c.in)
		if math.Abs(got.U-c.want.U) > 1e-12 || math.Abs(got.V-c.want.V) > 1e-12 {
			t.Errorf("canonicalBary(%+v) = %+v, esperado %+v", c.in, got, c.want)
		}
	}

	// Excesso marginal (erro numérico) é empurrado para dentro, não refletido.
	m := canonicalBary(Barycentric{0.7, 0.3 + 1e-12})
	if m.U+m.V > 1 {
		t.Errorf("excesso marginal não foi normalizado: %+v", m)
	}
	if math.Abs(m.U-0.7) > 1e-6 {
		t.Errorf("excesso marginal foi refletido indevidamente: %+v", m)
	}
}

func TestWorldDirectionToTileIndex(t *testing.T) {
	// O centroide de cada tile precisa quantizar de volta para o próprio
	// tile em células diretas.
	depth := int32(2)
	n := int32(1) << depth
	for face := int32(0); face < NumFaces; face++ {
		for x := int32(0); x < n; x++ {
			for y := int32(0); x+y <= n-1; y++ {
				id := TileID{Face: face, X: x, Y: y, Depth: depth}
				gotFace, gotX, gotY := WorldDirectionToTileIndex(depth, id.CenterDirection())
				if gotFace != face || gotX != x || gotY != y {
					t.Errorf("centroide de %s quantizou para f%d(%d,%d)", id, gotFace, gotX, gotY)
				}
			}
		}
	}
}

func TestWorldDirectionToTileIndexInRange(t *testing.T) {
	dirs := []Vec{
		{1, 1, 1}, {-1, 1, -1}, {0.001, -1, 0.001}, {1, 0, 0},
	}
	for _, depth := range []int32{0, 1, 3, 5} {
		n := int32(1) << depth
		for _, d := range dirs {
			face, x, y := WorldDirectionToTileIndex(depth, d.Normalize())
			if face < 0 || face >= NumFaces || x < 0 || x >= n || y < 0 || y >= n {
				t.Errorf("índice fora da grade em depth %d: f%d(%d,%d)", depth, face, x, y)
			}
		}
	}
}

func TestLatticeCounts(t *testing.T) {
	cases := []struct {
		resolution int32
		verts      int32
		tris       int32
	}{
		{2, 3, 1},
		{3, 6, 4},
		{4, 10, 9},
		{8, 36, 49},
	}
	for _, c := range cases {
		if got := TileVertexCount(c.resolution); got != c.verts {
			t.Errorf("TileVertexCount(%d) = %d, esperado %d", c.resolution, got, c.verts)
		}
		if got := TileTriangleCount(c.resolution); got != c.tris {
			t.Errorf("TileTriangleCount(%d) = %d, esperado %d", c.resolution, got, c.tris)
		}
		barys := TileVertexBarys(c.resolution, TileID{Face: 5, X: 0, Y: 0, Depth: 0})
		if int32(len(barys)) != c.verts {
			t.Errorf("TileVertexBarys res %d enumerou %d vértices, esperado %d", c.resolution, len(barys), c.verts)
		}
	}
}

func TestLatticeIndexIsDense(t *testing.T) {
	res := int32(5)
	next := int32(0)
	for i := int32(0); i < res; i++ {
		for j := int32(0); i+j <= res-1; j++ {
			if got := LatticeIndex(res, i, j); got != next {
				t.Errorf("LatticeIndex(%d,%d,%d) = %d, esperado %d", res, i, j, got, next)
			}
			next++
		}
	}
	if next != TileVertexCount(res) {
		t.Errorf("enumeração cobriu %d índices, esperado %d", next, TileVertexCount(res))
	}
}

func TestSharedEdgeBitExact(t *testing.T) {
	// Tiles vizinhos (um direto, um invertido) na mesma face devem produzir
	// direções bit a bit idênticas nos vértices da aresta compartilhada.
	res := int32(4)
	a := TileID{Face: 7, X: 0, Y: 0, Depth: 1}
	b := TileID{Face: 7, X: 1, Y: 1, Depth: 1} // reflexo diagonal de a

	dirsA := map[Barycentric]Vec{}
	for _, bary := range TileVertexBarys(res, a) {
		dirsA[bary] = BaryToDirection(a.Face, bary)
	}

	shared := 0
	for _, bary := range TileVertexBarys(res, b) {
		da, ok := dirsA[bary]
		if !ok {
			continue
		}
		shared++
		db := BaryToDirection(b.Face, bary)
		if da != db {
			t.Errorf("vértice compartilhado %+v divergiu: %+v vs %+v", bary, da, db)
		}
	}
	if shared < int(res) {
		t.Errorf("aresta compartilhada tem %d vértices em comum, esperado >= %d", shared, res)
	}
}

func TestChildrenCoverAndParent(t *testing.T) {
	ids := []TileID{
		{Face: 0, X: 0, Y: 0, Depth: 0},
		{Face: 3, X: 1, Y: 0, Depth: 1},
		{Face: 3, X: 1, Y: 1, Depth: 1}, // invertido
		{Face: 12, X: 5, Y: 2, Depth: 3},
		{Face: 19, X: 6, Y: 7, Depth: 3}, // invertido
	}
	for _, id := range ids {
		children := id.Children()
		seen := map[TileID]bool{}
		for _, c := range children {
			if c.Depth != id.Depth+1 {
				t.Errorf("filho %s de %s com profundidade errada", c, id)
			}
			if !c.InRange() {
				t.Errorf("filho %s de %s fora da grade", c, id)
			}
			if seen[c] {
				t.Errorf("filho duplicado %s em %s", c, id)
			}
			seen[c] = true
			p, ok := c.Parent()
			if !ok || p != id {
				t.Errorf("Parent(%s) = %s, esperado %s", c, p, id)
			}
		}
	}
}

func TestTileIDHashStable(t *testing.T) {
	a := TileID{Face: 4, X: 3, Y: 1, Depth: 2}
	if a.Hash() != a.Hash() {
		t.Fatal("hash instável para o mesmo id")
	}
	b := TileID{Face: 4, X: 1, Y: 3, Depth: 2}
	if a.Hash() == b.Hash() {
		t.Errorf("ids distintos %s e %s com o mesmo hash", a, b)
	}
}
