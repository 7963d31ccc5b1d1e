package meshing

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"PlanetVision/shared/height"
	"PlanetVision/shared/icosphere"
)

// ErrUnknownTile indica um pedido de build para um tile que o registro da
// profundidade atual não conhece.
var ErrUnknownTile = errors.New("tile desconhecido no registro")

// ErrBadResolution indica uma resolução de grade abaixo do mínimo (2).
var ErrBadResolution = errors.New("resolução de tile inválida")

// minAreaFactor define o limiar de área (relativo ao quadrado da aresta
// nominal de um segmento) abaixo do qual um triângulo é descartado como
// degenerado.
const minAreaFactor = 1e-12

// TileBuilder constrói a malha de um tile: amostra elevação na grade
// baricêntrica global, projeta na esfera e monta os buffers indexados.
// Toda a matemática fica em float64 até a escrita dos buffers, para que a
// aresta compartilhada entre tiles vizinhos saia bit a bit idêntica.
type TileBuilder struct {
	Cache    *MeshCache
	Provider height.Provider
	Patches  height.PatchSource // opcional: grades pré-assadas do servidor

	Radius float64
	Origin icosphere.Vec
}

// NewTileBuilder cria um construtor. Provider nulo cai no provedor padrão,
// então um builder sem fonte de elevação ainda produz um planeta.
func NewTileBuilder(cache *MeshCache, provider height.Provider, radius float64, origin icosphere.Vec) *TileBuilder {
	if provider == nil {
		provider = height.Default()
	}
	if cache == nil {
		cache = NewMeshCache()
	}
	return &TileBuilder{
		Cache:    cache,
		Provider: provider,
		Radius:   radius,
		Origin:   origin,
	}
}

// Build preenche td.Center e td.Geometry para o tile pedido. Builds
// repetidos com os mesmos parâmetros retornam a mesma geometria do cache;
// resolução ou centro divergentes invalidam a entrada e reconstroem.
func (b *TileBuilder) Build(td *TileData, reg *icosphere.TileRegistry) error {
	if td.Resolution < 2 {
		return fmt.Errorf("%w: %d", ErrBadResolution, td.Resolution)
	}
	entry, ok := reg.Entry(td.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTile, td.ID)
	}
	td.Center = entry.Center

	if cached, ok := b.Cache.Get(td.ID, td.Resolution, td.Center); ok {
		td.Geometry = cached.Geometry
		return nil
	}

	barys := icosphere.TileVertexBarys(td.Resolution, td.ID)
	heights := b.sampleHeights(td, barys)

	// Posições de mundo em float64; a localização (mundo - centro) é a
	// última operação antes do float32.
	world := make([]icosphere.Vec, len(barys))
	dirs := make([]icosphere.Vec, len(barys))
	for k, bary := range barys {
		dir := icosphere.BaryToDirection(td.ID.Face, bary)
		dirs[k] = dir
		world[k] = b.Origin.Add(dir.Scale(b.Radius + heights[k]))
	}

	buf := GetMeshBuffer()
	defer PutMeshBuffer(buf)

	for k := range world {
		local := world[k].Sub(td.Center)
		buf.AddVertex(
			[3]float32{float32(local.X), float32(local.Y), float32(local.Z)},
			[3]float32{float32(dirs[k].X), float32(dirs[k].Y), float32(dirs[k].Z)},
			[2]float32{float32(barys[k].U), float32(barys[k].V)},
			elevationColor(heights[k]),
		)
	}

	b.triangulate(buf, td.Resolution, world)
	b.fixWinding(buf)

	geo := buf.Geometry.Clone()
	cached := b.Cache.Store(td.ID, &CachedMesh{
		Geometry:   &geo,
		Center:     td.Center,
		Resolution: td.Resolution,
	})
	td.Geometry = cached.Geometry
	return nil
}

// sampleHeights obtém as elevações da grade: patch remoto se disponível e
// do tamanho certo, senão o provedor procedural vértice a vértice.
func (b *TileBuilder) sampleHeights(td *TileData, barys []icosphere.Barycentric) []float64 {
	if b.Patches != nil {
		if patch, ok := b.Patches.Patch(td.ID, td.Resolution); ok {
			if len(patch) == len(barys) {
				return patch
			}
			log.Printf("[Builder] Patch de %s com %d amostras (esperado %d); usando provedor local",
				td.ID, len(patch), len(barys))
		}
	}

	out := make([]float64, len(barys))
	for k, bary := range barys {
		out[k] = b.Provider.Sample(icosphere.BaryToDirection(td.ID.Face, bary), td.ID.Depth)
	}
	return out
}

// triangulate emite os dois laços de triângulos da grade: os diretos
// (i,j),(i+1,j),(i,j+1) e os invertidos (i+1,j),(i+1,j+1),(i,j+1).
// Triângulos com área degenerada são descartados.
func (b *TileBuilder) triangulate(buf *MeshBuffer, res int32, world []icosphere.Vec) {
	segs := res - 1
	// Aresta nominal de um segmento medida na própria grade, para que o
	// limiar de degenerescência escale com a profundidade do tile.
	edge := world[icosphere.LatticeIndex(res, 1, 0)].Sub(world[0]).Len()
	if edge == 0 {
		edge = b.Radius / float64(segs)
	}
	minArea := edge * edge * minAreaFactor

	emit := func(a, bb, c int32) {
		va, vb, vc := world[a], world[bb], world[c]
		cross := vb.Sub(va).Cross(vc.Sub(va))
		if cross.Len()/2 < minArea {
			return
		}
		buf.AddTriangle(uint16(a), uint16(bb), uint16(c))
	}

	for i := int32(0); i+1 <= segs; i++ {
		for j := int32(0); i+j <= segs-1; j++ {
			emit(
				icosphere.LatticeIndex(res, i, j),
				icosphere.LatticeIndex(res, i+1, j),
				icosphere.LatticeIndex(res, i, j+1),
			)
			if i+j <= segs-2 {
				emit(
					icosphere.LatticeIndex(res, i+1, j),
					icosphere.LatticeIndex(res, i+1, j+1),
					icosphere.LatticeIndex(res, i, j+1),
				)
			}
		}
	}
}

// fixWinding garante orientação consistente: se o normal geométrico do
// primeiro triângulo discorda do normal radial médio dos seus vértices,
// todos os triângulos são invertidos.
func (b *TileBuilder) fixWinding(buf *MeshBuffer) {
	g := &buf.Geometry
	if len(g.Indices) < 3 {
		return
	}

	i0, i1, i2 := g.Indices[0], g.Indices[1], g.Indices[2]
	v0 := vertexAt(g, i0)
	v1 := vertexAt(g, i1)
	v2 := vertexAt(g, i2)
	geoNormal := v1.Sub(v0).Cross(v2.Sub(v0))

	avg := normalAt(g, i0).Add(normalAt(g, i1)).Add(normalAt(g, i2))
	if geoNormal.Dot(avg) >= 0 {
		return
	}
	for k := 0; k+2 < len(g.Indices); k += 3 {
		g.Indices[k+1], g.Indices[k+2] = g.Indices[k+2], g.Indices[k+1]
	}
}

func vertexAt(g *GeometryData, i uint16) mgl32.Vec3 {
	return mgl32.Vec3{g.Vertices[3*i], g.Vertices[3*i+1], g.Vertices[3*i+2]}
}

func normalAt(g *GeometryData, i uint16) mgl32.Vec3 {
	return mgl32.Vec3{g.Normals[3*i], g.Normals[3*i+1], g.Normals[3*i+2]}
}

// elevationColor pinta o vértice por faixa de elevação: azul abaixo do
// nível do mar, verde nas planícies, cinza e branco nas alturas.
func elevationColor(h float64) [4]uint8 {
	switch {
	case h < -1.0:
		return [4]uint8{20, 60, 160, 255}
	case h < 0:
		return [4]uint8{40, 110, 200, 255}
	case h < 1.5:
		return [4]uint8{60, 140, 70, 255}
	case h < 3.0:
		return [4]uint8{110, 100, 80, 255}
	default:
		return [4]uint8{235, 235, 240, 255}
	}
}
