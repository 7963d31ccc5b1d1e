package visibility

import (
	"log"

	"PlanetVision/shared/icosphere"
	"PlanetVision/shared/util"
)

// tileEdgeFactor aproxima o comprimento de aresta de um tile de
// profundidade d como radius * tileEdgeFactor / 2^d (a aresta do icosaedro
// inscrito mede ~1.05 raios).
const tileEdgeFactor = 1.1

type splitPhase int

const (
	phaseSpawning splitPhase = iota // esperando os 4 filhos saírem da fila
	phaseFadeIn                     // filhos aparecendo, pai sumindo
	phaseStable                     // filhos visíveis, pai retido invisível
	phaseFadeOut                    // merge: filhos sumindo, pai voltando
)

type splitState struct {
	parent   icosphere.TileID
	children [4]icosphere.TileID
	fade     float32
	phase    splitPhase
}

// Splitter refina tiles individuais perto do observador para profundidade
// +1 sem mudar a profundidade global, com cross-fade entre pai e filhos.
// O pai de um split concluído fica retido invisível (o modelo permanece na
// GPU) para que o merge seja instantâneo.
type Splitter struct {
	mgr    *Manager
	splits map[icosphere.TileID]*splitState
	// byChild resolve a qual split um filho pertence, para o descarte de
	// trabalho obsoleto na fila.
	byChild map[icosphere.TileID]*splitState
}

func newSplitter(mgr *Manager) *Splitter {
	return &Splitter{
		mgr:     mgr,
		splits:  make(map[icosphere.TileID]*splitState),
		byChild: make(map[icosphere.TileID]*splitState),
	}
}

// SplitCount retorna quantos splits estão vivos (qualquer fase).
func (s *Splitter) SplitCount() int { return len(s.splits) }

// Holds informa se o tile está retido pelo splitter (pai ou filho de um
// split vivo) e portanto fora do alcance do despawn da reconciliação.
func (s *Splitter) Holds(id icosphere.TileID) bool {
	if _, ok := s.splits[id]; ok {
		return true
	}
	_, ok := s.byChild[id]
	return ok
}

// wantsChild informa se um pedido de spawn de filho ainda interessa.
func (s *Splitter) wantsChild(id icosphere.TileID) bool {
	st, ok := s.byChild[id]
	return ok && st.phase != phaseFadeOut
}

// Tick avalia splits novos e avança os cross-fades.
func (s *Splitter) Tick(viewerPos icosphere.Vec, dt float32) {
	m := s.mgr
	if m.depth < 0 || m.depth >= m.cfg.MaxDepth {
		return
	}
	reg := m.Registry(m.depth)
	splitDist := m.cfg.SplitFactor * m.radius * tileEdgeFactor / float64(int64(1)<<m.depth)

	// Splits novos: tile ativo da profundidade global, perto o bastante.
	for id, st := range m.tiles {
		if !st.active || id.Depth != m.depth {
			continue
		}
		if _, already := s.splits[id]; already {
			continue
		}
		e, ok := reg.Entry(id)
		if !ok {
			continue
		}
		if viewerPos.Sub(e.Center).Len() < splitDist {
			s.begin(id, viewerPos)
		}
	}

	for parent, st := range s.splits {
		s.advance(parent, st, viewerPos, splitDist, dt)
	}
}

// begin inicia um split: os quatro filhos entram na fila com prioridade de
// proximidade.
func (s *Splitter) begin(parent icosphere.TileID, viewerPos icosphere.Vec) {
	childReg := s.mgr.Registry(parent.Depth + 1)
	st := &splitState{parent: parent, children: parent.Children(), phase: phaseSpawning}
	s.splits[parent] = st
	for _, c := range st.children {
		s.byChild[c] = st
		priority := 0.0
		if e, ok := childReg.Entry(c); ok {
			d := viewerPos.Sub(e.Center)
			priority = d.Dot(d)
		}
		s.mgr.queue.Push(c, spawnRequest{depth: c.Depth, fromSplit: true}, priority)
	}
	log.Printf("[LOD] Split de %s iniciado", parent)
}

// advance move um split pela máquina de fases.
func (s *Splitter) advance(parent icosphere.TileID, st *splitState, viewerPos icosphere.Vec, splitDist float64, dt float32) {
	m := s.mgr
	mergeDist := splitDist * m.cfg.MergeHysteresis

	dist := 0.0
	if e, ok := m.Registry(m.depth).Entry(parent); ok {
		dist = viewerPos.Sub(e.Center).Len()
	}

	switch st.phase {
	case phaseSpawning:
		for _, c := range st.children {
			if _, ok := m.tiles[c]; !ok {
				return
			}
		}
		st.phase = phaseFadeIn
		st.fade = 0

	case phaseFadeIn:
		st.fade = util.ClampF(st.fade+m.cfg.FadeSpeed*dt, 0, 1)
		s.applyFade(st)
		if st.fade >= 1 {
			st.phase = phaseStable
			if ps, ok := m.tiles[parent]; ok {
				ps.active = false
			}
		}

	case phaseStable:
		if dist > mergeDist {
			st.phase = phaseFadeOut
			if ps, ok := m.tiles[parent]; ok {
				ps.active = true
			}
		}

	case phaseFadeOut:
		st.fade = util.ClampF(st.fade-m.cfg.FadeSpeed*dt, 0, 1)
		s.applyFade(st)
		if st.fade <= 0 {
			s.finishMerge(parent, st)
		}
	}
}

func (s *Splitter) applyFade(st *splitState) {
	for _, c := range st.children {
		s.mgr.sink.SetFade(c, st.fade)
	}
	s.mgr.sink.SetFade(st.parent, 1-st.fade)
}

// finishMerge despacha os filhos e devolve o pai à visibilidade plena.
func (s *Splitter) finishMerge(parent icosphere.TileID, st *splitState) {
	m := s.mgr
	for _, c := range st.children {
		if _, ok := m.tiles[c]; ok {
			m.sink.Despawn(c)
			delete(m.tiles, c)
			m.DespawnedTotal++
		}
		m.queue.Remove(c)
		delete(s.byChild, c)
	}
	m.sink.SetFade(parent, 1)
	delete(s.splits, parent)
	log.Printf("[LOD] Merge de %s concluído", parent)
}

// Reset desfaz todos os splits imediatamente, sem fade. Usado quando a
// profundidade global muda ou a sessão reinicia.
func (s *Splitter) Reset() {
	m := s.mgr
	for parent, st := range s.splits {
		for _, c := range st.children {
			if _, ok := m.tiles[c]; ok {
				m.sink.Despawn(c)
				delete(m.tiles, c)
				m.DespawnedTotal++
			}
			m.queue.Remove(c)
			delete(s.byChild, c)
		}
		if ps, ok := m.tiles[parent]; ok {
			ps.active = true
		}
		m.sink.SetFade(parent, 1)
		delete(s.splits, parent)
	}
}
