package meshing

import (
	"sync"

	"PlanetVision/shared/icosphere"
)

// CachedMesh é uma entrada do cache: a geometria pronta mais os parâmetros
// com que foi construída, usados na detecção de cache obsoleto.
type CachedMesh struct {
	Geometry   *GeometryData
	Center     icosphere.Vec
	Resolution int32
}

// MeshCache guarda malhas prontas por TileID. Um hit exige que resolução e
// centro batam com o pedido; qualquer divergência é tratada como entrada
// obsoleta e força reconstrução. Builds repetidos do mesmo tile retornam a
// MESMA geometria (identidade de ponteiro), não uma cópia.
type MeshCache struct {
	mu      sync.RWMutex
	entries map[icosphere.TileID]*CachedMesh
}

// NewMeshCache cria um cache vazio.
func NewMeshCache() *MeshCache {
	return &MeshCache{
		entries: make(map[icosphere.TileID]*CachedMesh),
	}
}

// Get retorna a malha cacheada se existir e for compatível com a resolução
// e o centro pedidos.
func (c *MeshCache) Get(id icosphere.TileID, resolution int32, center icosphere.Vec) (*CachedMesh, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.entries[id]
	if ok && m.Resolution == resolution && m.Center == center {
		return m, true
	}
	return nil, false
}

// Store registra uma malha no cache. Se uma entrada compatível já existe
// (corrida entre dois builds do mesmo tile), a existente vence e é
// retornada, preservando a idempotência por identidade.
func (c *MeshCache) Store(id icosphere.TileID, m *CachedMesh) *CachedMesh {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.entries[id]; ok && prev.Resolution == m.Resolution && prev.Center == m.Center {
		return prev
	}
	c.entries[id] = m
	return m
}

// Invalidate remove um tile do cache, tipicamente quando dados de elevação
// novos chegam para ele.
func (c *MeshCache) Invalidate(id icosphere.TileID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Len retorna o número de entradas no cache.
func (c *MeshCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear esvazia o cache (reset de sessão).
func (c *MeshCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[icosphere.TileID]*CachedMesh)
}
