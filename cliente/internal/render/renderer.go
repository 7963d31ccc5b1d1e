package render

/*
#include <stdlib.h>
*/
import "C"

import (
	"log"
	"sync"
	"unsafe"

	"PlanetVision/cliente/internal/meshing"
	"PlanetVision/shared/icosphere"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TileModel é um tile residente na GPU. O modelo guarda a geometria em
// espaço local do tile e é desenhado transladado para Center, preservando
// a precisão de float32 perto da câmera.
type TileModel struct {
	ID       icosphere.TileID
	Model    rl.Model
	Center   rl.Vector3
	Fade     float32
	HasModel bool
}

// Renderer mantém os modelos raylib dos tiles materializados, chaveados
// por TileID, com uma fila de purga incremental para não travar o frame
// descarregando GPU em lote.
type Renderer struct {
	mu     sync.RWMutex
	Models map[icosphere.TileID]*TileModel

	Wireframe bool

	purgeQueue []icosphere.TileID
}

// NewRenderer cria um novo renderizador.
func NewRenderer() *Renderer {
	return &Renderer{
		Models:     make(map[icosphere.TileID]*TileModel),
		purgeQueue: make([]icosphere.TileID, 0),
	}
}

// Spawn sobe a malha de um tile para a GPU, substituindo qualquer modelo
// anterior do mesmo tile. Satisfaz o sink do gerenciador de visibilidade.
func (r *Renderer) Spawn(td *meshing.TileData) {
	if !rl.IsWindowReady() {
		return
	}
	if td.Geometry == nil || len(td.Geometry.Vertices) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Cancela uma purga pendente: o tile voltou antes do descarte.
	for i, pid := range r.purgeQueue {
		if pid == td.ID {
			r.purgeQueue = append(r.purgeQueue[:i], r.purgeQueue[i+1:]...)
			break
		}
	}

	fade := float32(1)
	if old, ok := r.Models[td.ID]; ok {
		if old.HasModel {
			rl.UnloadModel(old.Model)
		}
		fade = old.Fade // rebuild preserva o alfa atual
		delete(r.Models, td.ID)
	}

	mesh := r.geometryToMesh(td.Geometry)
	rl.UploadMesh(&mesh, false)
	r.freeMeshRAM(&mesh)

	r.Models[td.ID] = &TileModel{
		ID:    td.ID,
		Model: rl.LoadModelFromMesh(mesh),
		Center: rl.Vector3{
			X: float32(td.Center.X),
			Y: float32(td.Center.Y),
			Z: float32(td.Center.Z),
		},
		Fade:     fade,
		HasModel: true,
	}
}

// Despawn agenda o descarte do modelo de um tile. O descarte real acontece
// aos poucos em ProcessPurge.
func (r *Renderer) Despawn(id icosphere.TileID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.Models[id]; ok && m.HasModel {
		r.purgeQueue = append(r.purgeQueue, id)
	}
}

// SetFade ajusta o alfa de cross-fade de um tile (0 invisível, 1 opaco).
func (r *Renderer) SetFade(id icosphere.TileID, alpha float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.Models[id]; ok {
		m.Fade = alpha
	}
}

// TileCount retorna quantos modelos residem na GPU.
func (r *Renderer) TileCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Models)
}

// geometryToMesh monta uma rl.Mesh indexada copiando os buffers para
// memória C, como o raylib exige para o upload.
func (r *Renderer) geometryToMesh(data *meshing.GeometryData) rl.Mesh {
	var mesh rl.Mesh
	mesh.VertexCount = int32(len(data.Vertices) / 3)
	mesh.TriangleCount = int32(len(data.Indices) / 3)

	if len(data.Vertices) > 0 {
		mesh.Vertices = (*float32)(r.copyToC(unsafe.Pointer(&data.Vertices[0]), len(data.Vertices)*4))
	}
	if len(data.Normals) > 0 {
		mesh.Normals = (*float32)(r.copyToC(unsafe.Pointer(&data.Normals[0]), len(data.Normals)*4))
	}
	if len(data.Colors) > 0 {
		mesh.Colors = (*uint8)(r.copyToC(unsafe.Pointer(&data.Colors[0]), len(data.Colors)))
	}
	if len(data.UVs) > 0 {
		mesh.Texcoords = (*float32)(r.copyToC(unsafe.Pointer(&data.UVs[0]), len(data.UVs)*4))
	}
	if len(data.Indices) > 0 {
		mesh.Indices = (*uint16)(r.copyToC(unsafe.Pointer(&data.Indices[0]), len(data.Indices)*2))
	}
	return mesh
}

func (r *Renderer) copyToC(data unsafe.Pointer, size int) unsafe.Pointer {
	if size <= 0 || data == nil {
		return nil
	}
	ptr := C.malloc(C.size_t(size))
	if ptr == nil {
		return nil
	}
	cSlice := unsafe.Slice((*byte)(ptr), size)
	goSlice := unsafe.Slice((*byte)(data), size)
	copy(cSlice, goSlice)
	return ptr
}

// freeMeshRAM libera a memória principal (C) associada a uma malha após o
// upload para a GPU.
func (r *Renderer) freeMeshRAM(mesh *rl.Mesh) {
	if mesh.Vertices != nil {
		C.free(unsafe.Pointer(mesh.Vertices))
		mesh.Vertices = nil
	}
	if mesh.Normals != nil {
		C.free(unsafe.Pointer(mesh.Normals))
		mesh.Normals = nil
	}
	if mesh.Colors != nil {
		C.free(unsafe.Pointer(mesh.Colors))
		mesh.Colors = nil
	}
	if mesh.Texcoords != nil {
		C.free(unsafe.Pointer(mesh.Texcoords))
		mesh.Texcoords = nil
	}
	if mesh.Indices != nil {
		C.free(unsafe.Pointer(mesh.Indices))
		mesh.Indices = nil
	}
}

// Draw desenha todos os tiles visíveis. Tiles em cross-fade passam por um
// blend de alfa; tiles com alfa zero são pulados por inteiro.
func (r *Renderer) Draw() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rl.BeginBlendMode(rl.BlendAlpha)
	for _, m := range r.Models {
		if !m.HasModel || m.Fade <= 0 {
			continue
		}
		a := m.Fade
		if a > 1 {
			a = 1
		}
		tint := rl.Color{R: 255, G: 255, B: 255, A: uint8(a * 255)}
		if r.Wireframe {
			rl.DrawModelWires(m.Model, m.Center, 1.0, tint)
		} else {
			rl.DrawModel(m.Model, m.Center, 1.0, tint)
		}
	}
	rl.EndBlendMode()
}

// ProcessPurge descarrega até dois modelos agendados por frame, diluindo o
// custo de UnloadModel.
func (r *Renderer) ProcessPurge() {
	r.mu.Lock()
	defer r.mu.Unlock()
	limit := 2
	if len(r.purgeQueue) < limit {
		limit = len(r.purgeQueue)
	}
	for i := 0; i < limit; i++ {
		id := r.purgeQueue[0]
		r.purgeQueue = r.purgeQueue[1:]
		if m, ok := r.Models[id]; ok {
			if m.HasModel {
				rl.UnloadModel(m.Model)
			}
			delete(r.Models, id)
		}
	}
}

// Unload descarrega todos os modelos (encerramento).
func (r *Renderer) Unload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.Models {
		if m.HasModel {
			rl.UnloadModel(m.Model)
		}
	}
	r.Models = make(map[icosphere.TileID]*TileModel)
	r.purgeQueue = r.purgeQueue[:0]
	log.Printf("[Renderer] Modelos descarregados")
}
