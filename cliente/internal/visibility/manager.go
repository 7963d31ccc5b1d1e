// Package visibility decide quais tiles do planeta existem a cada momento:
// seleciona a profundidade global pela distância do observador, calcula o
// conjunto de tiles candidatos, e materializa/despacha tiles dentro de um
// orçamento de construções por tick. Todo o trabalho acontece no laço
// principal, de forma cooperativa; não há goroutines aqui.
package visibility

import (
	"log"
	"math"
	"time"

	"PlanetVision/cliente/internal/meshing"
	"PlanetVision/shared/config"
	"PlanetVision/shared/icosphere"
	"PlanetVision/shared/util"
)

// sin45 é o limiar angular entre a visão "planeta inteiro" (varredura por
// cone) e a visão aproximada (anel de vizinhos ao redor do tile central).
var sin45 = math.Sqrt(2) / 2

// faceEdgeArc é o arco entre dois vértices adjacentes do icosaedro
// (~63.4°); dividido por 2^depth dá a largura angular aproximada de um
// tile daquela profundidade.
var faceEdgeArc = math.Acos(1 / math.Sqrt(5))

// TileSink recebe os eventos de ciclo de vida dos tiles. O renderizador é
// a implementação real; os testes usam um gravador.
type TileSink interface {
	Spawn(td *meshing.TileData)
	Despawn(id icosphere.TileID)
	SetFade(id icosphere.TileID, alpha float32)
}

// spawnRequest é o item da fila de materialização.
type spawnRequest struct {
	depth     int32
	fromSplit bool
}

// tileState acompanha um tile já materializado. Um tile inativo mantém o
// modelo na GPU mas não é desenhado (pai de um split concluído).
type tileState struct {
	active bool
}

// Manager é o gerenciador de visibilidade do planeta.
type Manager struct {
	cfg     *config.Config
	builder *meshing.TileBuilder
	sink    TileSink

	radius float64
	origin icosphere.Vec

	depth      int32 // -1 até o primeiro tick
	registries map[int32]*icosphere.TileRegistry

	queue      *util.PriorityQueue[icosphere.TileID, spawnRequest]
	tiles      map[icosphere.TileID]*tileState
	candidates map[icosphere.TileID]bool

	lastChecksum  uint64
	checksumValid bool
	lastTick      float64
	lastReconcile float64

	splitter *Splitter

	// now é injetável nos testes; por padrão é o relógio monotônico.
	now func() float64

	// Contadores para o overlay de debug.
	SpawnedTotal   int64
	DespawnedTotal int64
}

// NewManager cria o gerenciador. O sink recebe os tiles prontos.
func NewManager(cfg *config.Config, builder *meshing.TileBuilder, sink TileSink) *Manager {
	start := time.Now()
	m := &Manager{
		cfg:        cfg,
		builder:    builder,
		sink:       sink,
		radius:     builder.Radius,
		origin:     builder.Origin,
		depth:      -1,
		registries: make(map[int32]*icosphere.TileRegistry),
		queue:      util.NewPriorityQueue[icosphere.TileID, spawnRequest](),
		tiles:      make(map[icosphere.TileID]*tileState),
		candidates: make(map[icosphere.TileID]bool),
		now:        func() float64 { return time.Since(start).Seconds() },
	}
	m.splitter = newSplitter(m)
	return m
}

// Depth retorna a profundidade global atual (-1 antes do primeiro tick).
func (m *Manager) Depth() int32 { return m.depth }

// ActiveCount retorna quantos tiles estão materializados.
func (m *Manager) ActiveCount() int { return len(m.tiles) }

// QueueLen retorna o tamanho da fila de materialização.
func (m *Manager) QueueLen() int { return m.queue.Len() }

// Registry retorna (construindo sob demanda) o registro de uma
// profundidade. Registros são imutáveis e ficam cacheados por sessão.
func (m *Manager) Registry(depth int32) *icosphere.TileRegistry {
	if r, ok := m.registries[depth]; ok {
		return r
	}
	r := icosphere.NewTileRegistry(depth, m.radius, m.origin)
	m.registries[depth] = r
	return r
}

// Update avança o gerenciador um frame. A seleção de candidatos roda no
// intervalo configurado; o cross-fade do splitter anima a cada frame.
func (m *Manager) Update(viewerPos icosphere.Vec, dt float32) {
	now := m.now()
	if now-m.lastTick >= m.cfg.VisibilityInterval || m.depth < 0 {
		m.lastTick = now
		m.tick(viewerPos, now)
	}
	m.splitter.Tick(viewerPos, dt)
}

// tick faz um passo completo: profundidade, candidatos, debounce,
// reconciliação e drenagem da fila.
func (m *Manager) tick(viewerPos icosphere.Vec, now float64) {
	dist := viewerPos.Sub(m.origin).Len()
	m.setDepth(m.DesiredDepth(dist))

	cands := m.computeCandidates(viewerPos, dist)

	checksum := uint64(0)
	for _, e := range cands {
		checksum ^= e.ID.Hash()
	}
	// Debounce: conjunto idêntico ao anterior dentro da janela não força
	// nova reconciliação.
	if m.checksumValid && checksum == m.lastChecksum && now-m.lastReconcile < m.cfg.DebounceInterval {
		m.processQueue()
		return
	}
	m.lastChecksum = checksum
	m.checksumValid = true
	m.lastReconcile = now

	m.reconcile(cands, viewerPos)
	m.processQueue()
}

// DesiredDepth mapeia a altitude normalizada do observador para a
// profundidade de subdivisão: limiares inverso-exponenciais
// min + (max-min)/2^d, escolhendo o nível mais profundo ainda satisfeito.
func (m *Manager) DesiredDepth(dist float64) int32 {
	norm := (dist - m.radius) / m.radius
	if norm < 0 {
		norm = 0
	}

	best := int32(0)
	for d := int32(0); d <= m.cfg.MaxDepth; d++ {
		threshold := m.cfg.MinLODDistance +
			(m.cfg.MaxLODDistance-m.cfg.MinLODDistance)/float64(int64(1)<<d)
		if norm <= threshold {
			best = d
		}
	}
	return best
}

// setDepth troca a profundidade global: reconstrói o registro, drena da
// fila o trabalho da profundidade antiga e despacha os tiles que ficaram
// obsoletos. Splits locais são desfeitos junto.
func (m *Manager) setDepth(d int32) {
	if d == m.depth {
		return
	}
	old := m.depth
	m.depth = d
	m.Registry(d)

	m.splitter.Reset()

	dropped := m.queue.DropWhere(func(id icosphere.TileID, req spawnRequest) bool {
		return req.depth != d
	})
	for id := range m.tiles {
		if id.Depth != d {
			m.sink.Despawn(id)
			delete(m.tiles, id)
			m.DespawnedTotal++
		}
	}
	m.candidates = make(map[icosphere.TileID]bool)
	m.checksumValid = false

	if old >= 0 {
		log.Printf("[Visibility] Profundidade %d -> %d (%d pedidos obsoletos descartados)", old, d, dropped)
	} else {
		log.Printf("[Visibility] Profundidade inicial %d", d)
	}
}

// computeCandidates escolhe o caminho pela fração angular do planeta na
// visão: acima de 45° o planeta domina a tela e vale a varredura linear
// com teste de cone; abaixo disso o planeta é um disco pequeno e basta o
// anel de RingSize tiles ao redor do ponto sob o observador.
func (m *Manager) computeCandidates(viewerPos icosphere.Vec, dist float64) []*icosphere.PrecomputedTileEntry {
	reg := m.Registry(m.depth)
	if dist <= m.radius {
		dist = m.radius + 1e-9
	}
	viewerDir := viewerPos.Sub(m.origin).Normalize()

	angularRadius := m.radius / dist // seno do raio angular do planeta
	if angularRadius > sin45 {
		// Cosseno do horizonte geométrico, com folga para incluir a
		// primeira fileira além dele. Aproximar do planeta aperta o cone.
		cone := util.Clamp(m.radius/dist-0.05, m.cfg.ConeMin, m.cfg.ConeMax)
		out := make([]*icosphere.PrecomputedTileEntry, 0, reg.Len()/2)
		for _, e := range reg.Entries() {
			if e.Normal.Dot(viewerDir) > cone {
				out = append(out, e)
			}
		}
		return out
	}

	// O anel é resolvido geometricamente sobre o registro: uma janela
	// angular de RingSize larguras de tile ao redor da direção do
	// observador. Um anel em espaço de índice não atravessa costuras entre
	// faces nem alcança as células invertidas intercaladas; a janela
	// angular cobre ambas, e é intersectada com o horizonte.
	arc := faceEdgeArc / float64(int64(1)<<m.depth)
	ringCos := math.Cos(math.Min((float64(m.cfg.RingSize)+1.5)*arc, math.Pi/2))
	if horizon := m.radius/dist - 0.05; horizon > ringCos {
		ringCos = horizon
	}
	ringCos = util.Clamp(ringCos, m.cfg.ConeMin, m.cfg.ConeMax)

	out := make([]*icosphere.PrecomputedTileEntry, 0, 64)
	for _, e := range reg.Entries() {
		if e.Normal.Dot(viewerDir) >= ringCos {
			out = append(out, e)
		}
	}
	return out
}

// reconcile alinha o estado materializado ao conjunto de candidatos:
// candidatos ausentes entram na fila priorizados pela distância ao
// observador; tiles fora do conjunto são despachados, exceto os retidos
// pelo splitter.
func (m *Manager) reconcile(cands []*icosphere.PrecomputedTileEntry, viewerPos icosphere.Vec) {
	inSet := make(map[icosphere.TileID]bool, len(cands))
	for _, e := range cands {
		inSet[e.ID] = true
		if _, spawned := m.tiles[e.ID]; spawned {
			continue
		}
		d := viewerPos.Sub(e.Center)
		m.queue.Push(e.ID, spawnRequest{depth: m.depth}, d.Dot(d))
	}

	for id := range m.tiles {
		if inSet[id] || m.splitter.Holds(id) {
			continue
		}
		m.sink.Despawn(id)
		delete(m.tiles, id)
		m.DespawnedTotal++
		m.queue.Remove(id)
	}
	m.candidates = inSet
}

// processQueue materializa até SpawnBudget tiles. Pedidos obsoletos
// (profundidade antiga, tile que saiu do conjunto, split desfeito) são
// descartados em silêncio e não consomem orçamento.
func (m *Manager) processQueue() {
	built := int32(0)
	for built < m.cfg.SpawnBudget {
		id, req, ok := m.queue.Pop()
		if !ok {
			return
		}
		if req.fromSplit {
			if !m.splitter.wantsChild(id) {
				continue
			}
		} else {
			if req.depth != m.depth || !m.candidates[id] {
				continue
			}
		}
		if _, spawned := m.tiles[id]; spawned {
			continue
		}

		td := &meshing.TileData{ID: id, Resolution: m.cfg.ResolutionFor(id.Depth)}
		if err := m.builder.Build(td, m.Registry(id.Depth)); err != nil {
			log.Printf("[Visibility] Build de %s falhou: %v", id, err)
			continue
		}
		m.sink.Spawn(td)
		if req.fromSplit {
			// Filhos de split nascem invisíveis e aparecem no cross-fade.
			m.sink.SetFade(id, 0)
		}
		m.tiles[id] = &tileState{active: true}
		m.SpawnedTotal++
		built++
	}
}

// Invalidate descarta a malha cacheada de um tile e o reconstrói se está
// materializado. Usado quando um patch de elevação novo chega do servidor.
func (m *Manager) Invalidate(id icosphere.TileID) {
	m.builder.Cache.Invalidate(id)
	if _, spawned := m.tiles[id]; !spawned {
		return
	}
	td := &meshing.TileData{ID: id, Resolution: m.cfg.ResolutionFor(id.Depth)}
	if err := m.builder.Build(td, m.Registry(id.Depth)); err != nil {
		log.Printf("[Visibility] Rebuild de %s falhou: %v", id, err)
		return
	}
	m.sink.Spawn(td)
}

// Reset despacha tudo e limpa caches, voltando ao estado inicial de
// sessão.
func (m *Manager) Reset() {
	m.splitter.Reset()
	for id := range m.tiles {
		m.sink.Despawn(id)
		delete(m.tiles, id)
	}
	m.queue.Clear()
	m.builder.Cache.Clear()
	m.candidates = make(map[icosphere.TileID]bool)
	m.checksumValid = false
	m.depth = -1
	log.Printf("[Visibility] Reset de sessão concluído")
}
