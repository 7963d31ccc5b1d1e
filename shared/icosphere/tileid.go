package icosphere

import (
	"fmt"
	"hash/fnv"
)

// TileID identifica um tile de terreno de forma única: face do icosaedro,
// célula inteira (x, y) dentro da face e profundidade de subdivisão. A
// identidade é puramente inteira; direções e centros são derivados dela.
// Por ser uma struct comparável, serve diretamente como chave de mapa.
type TileID struct {
	Face  int32
	X, Y  int32
	Depth int32
}

// NewTileID monta um TileID a partir dos quatro componentes.
func NewTileID(face, x, y, depth int32) TileID {
	return TileID{Face: face, X: x, Y: y, Depth: depth}
}

// String formata o id para logs: "f7(3,1)@d2".
func (t TileID) String() string {
	return fmt.Sprintf("f%d(%d,%d)@d%d", t.Face, t.X, t.Y, t.Depth)
}

// TilesPerEdge retorna quantas células existem ao longo de cada aresta da
// face nesta profundidade (2^depth).
func (t TileID) TilesPerEdge() int32 {
	return int32(1) << t.Depth
}

// InRange informa se os índices do tile estão dentro da grade da face.
func (t TileID) InRange() bool {
	n := t.TilesPerEdge()
	return t.Face >= 0 && t.Face < NumFaces &&
		t.X >= 0 && t.X < n && t.Y >= 0 && t.Y < n
}

// Upward informa se a célula representa um triângulo na orientação direta
// da face (x+y <= n-1). Células com x+y >= n representam o triângulo
// invertido obtido por reflexão na diagonal.
func (t TileID) Upward() bool {
	return t.X+t.Y <= t.TilesPerEdge()-1
}

// CenterBary retorna a coordenada baricêntrica do centroide do tile:
// ((x + 1/3) / n, (y + 1/3) / n). Para células invertidas a reflexão é
// aplicada depois, por BaryToDirection.
func (t TileID) CenterBary() Barycentric {
	n := float64(t.TilesPerEdge())
	return Barycentric{
		U: (float64(t.X) + 1.0/3.0) / n,
		V: (float64(t.Y) + 1.0/3.0) / n,
	}
}

// CenterDirection retorna a direção unitária do centroide do tile.
func (t TileID) CenterDirection() Vec {
	return BaryToDirection(t.Face, t.CenterBary())
}

// Children retorna os quatro tiles de profundidade depth+1 que cobrem a
// mesma área deste tile. Três filhos ocupam o canto da célula dobrada; o
// quarto é o triângulo central, que tem orientação oposta e por isso vive
// na célula refletida (n'-1-2y, n'-1-2x). A fórmula vale para células
// diretas e invertidas.
func (t TileID) Children() [4]TileID {
	d := t.Depth + 1
	n := int32(1) << d
	x2, y2 := 2*t.X, 2*t.Y
	return [4]TileID{
		{Face: t.Face, X: x2, Y: y2, Depth: d},
		{Face: t.Face, X: x2 + 1, Y: y2, Depth: d},
		{Face: t.Face, X: x2, Y: y2 + 1, Depth: d},
		{Face: t.Face, X: n - 1 - y2, Y: n - 1 - x2, Depth: d},
	}
}

// Parent retorna o tile de profundidade depth-1 que contém este tile.
// O segundo retorno é false na raiz (depth 0).
func (t TileID) Parent() (TileID, bool) {
	if t.Depth == 0 {
		return TileID{}, false
	}
	// Candidato direto: célula dobrada pela metade.
	p := TileID{Face: t.Face, X: t.X / 2, Y: t.Y / 2, Depth: t.Depth - 1}
	for _, c := range p.Children() {
		if c == t {
			return p, true
		}
	}
	// Caso contrário este é o filho central de um pai refletido.
	n := t.TilesPerEdge()
	p = TileID{Face: t.Face, X: (n - 1 - t.Y) / 2, Y: (n - 1 - t.X) / 2, Depth: t.Depth - 1}
	return p, true
}

// Hash retorna um hash FNV estável do id, usado no checksum independente
// de ordem do conjunto de candidatos.
func (t TileID) Hash() uint64 {
	h := fnv.New64a()
	var buf [16]byte
	putInt32(buf[0:], t.Face)
	putInt32(buf[4:], t.X)
	putInt32(buf[8:], t.Y)
	putInt32(buf[12:], t.Depth)
	h.Write(buf[:])
	return h.Sum64()
}

func putInt32(b []byte, v int32) {
	u := uint32(v)
	b[0] = byte(u)
	b[1] = byte(u >> 8)
	b[2] = byte(u >> 16)
	b[3] = byte(u >> 24)
}
