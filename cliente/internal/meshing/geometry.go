// Package meshing constrói as malhas de tiles do planeta a partir da grade
// baricêntrica global, com cache idempotente por TileID.
package meshing

import (
	"sync"

	"PlanetVision/shared/icosphere"
)

// GeometryData contém os buffers de vértices para uma malha, no layout
// plano que o renderizador sobe direto para a GPU. Vértices ficam em
// espaço local do tile (mundo menos centro); o centro viaja ao lado no
// TileData.
type GeometryData struct {
	Vertices []float32
	Normals  []float32
	Colors   []uint8
	UVs      []float32
	Indices  []uint16
}

// VertexCount retorna quantos vértices a malha tem.
func (g *GeometryData) VertexCount() int {
	return len(g.Vertices) / 3
}

// TriangleCount retorna quantos triângulos a malha tem.
func (g *GeometryData) TriangleCount() int {
	return len(g.Indices) / 3
}

// Clone cria uma cópia profunda dos dados.
func (g GeometryData) Clone() GeometryData {
	clone := GeometryData{}
	if len(g.Vertices) > 0 {
		clone.Vertices = make([]float32, len(g.Vertices))
		copy(clone.Vertices, g.Vertices)
	}
	if len(g.Normals) > 0 {
		clone.Normals = make([]float32, len(g.Normals))
		copy(clone.Normals, g.Normals)
	}
	if len(g.Colors) > 0 {
		clone.Colors = make([]uint8, len(g.Colors))
		copy(clone.Colors, g.Colors)
	}
	if len(g.UVs) > 0 {
		clone.UVs = make([]float32, len(g.UVs))
		copy(clone.UVs, g.UVs)
	}
	if len(g.Indices) > 0 {
		clone.Indices = make([]uint16, len(g.Indices))
		copy(clone.Indices, g.Indices)
	}
	return clone
}

// TileData é a unidade de trabalho do construtor: o chamador preenche ID e
// Resolution, o Build preenche Center e Geometry.
type TileData struct {
	ID         icosphere.TileID
	Resolution int32
	Center     icosphere.Vec
	Geometry   *GeometryData
}

// Pool para reciclar MeshBuffers e evitar alocação excessiva (GC Pressure).
var meshBufferPool = sync.Pool{
	New: func() interface{} {
		return &MeshBuffer{
			Geometry: GeometryData{
				Vertices: make([]float32, 0, 4096),
				Normals:  make([]float32, 0, 4096),
				Colors:   make([]uint8, 0, 4096),
				UVs:      make([]float32, 0, 2048),
				Indices:  make([]uint16, 0, 4096),
			},
		}
	},
}

// GetMeshBuffer aloca ou recicla um buffer vazio para meshing.
func GetMeshBuffer() *MeshBuffer {
	return meshBufferPool.Get().(*MeshBuffer)
}

// PutMeshBuffer zera os buffers e devolve a memória para o pool.
func PutMeshBuffer(b *MeshBuffer) {
	if b == nil {
		return
	}
	b.Geometry.Vertices = b.Geometry.Vertices[:0]
	b.Geometry.Normals = b.Geometry.Normals[:0]
	b.Geometry.Colors = b.Geometry.Colors[:0]
	b.Geometry.UVs = b.Geometry.UVs[:0]
	b.Geometry.Indices = b.Geometry.Indices[:0]
	meshBufferPool.Put(b)
}

// MeshBuffer auxilia na construção de malhas indexadas: vértices entram uma
// vez, triângulos referenciam por índice.
type MeshBuffer struct {
	Geometry GeometryData
}

// AddVertex acrescenta um vértice e retorna seu índice no buffer.
func (b *MeshBuffer) AddVertex(v [3]float32, n [3]float32, uv [2]float32, c [4]uint8) uint16 {
	idx := uint16(len(b.Geometry.Vertices) / 3)
	b.Geometry.Vertices = append(b.Geometry.Vertices, v[0], v[1], v[2])
	b.Geometry.Normals = append(b.Geometry.Normals, n[0], n[1], n[2])
	b.Geometry.UVs = append(b.Geometry.UVs, uv[0], uv[1])
	b.Geometry.Colors = append(b.Geometry.Colors, c[0], c[1], c[2], c[3])
	return idx
}

// AddTriangle acrescenta um triângulo referenciando vértices já inseridos.
func (b *MeshBuffer) AddTriangle(a, bb, c uint16) {
	b.Geometry.Indices = append(b.Geometry.Indices, a, bb, c)
}
