package visibility

import (
	"testing"

	"PlanetVision/cliente/internal/meshing"
	"PlanetVision/shared/config"
	"PlanetVision/shared/height"
	"PlanetVision/shared/icosphere"
)

// fakeSink grava os eventos de ciclo de vida para inspeção.
type fakeSink struct {
	spawns   []icosphere.TileID
	despawns []icosphere.TileID
	fades    map[icosphere.TileID]float32
}

func newFakeSink() *fakeSink {
	return &fakeSink{fades: make(map[icosphere.TileID]float32)}
}

func (s *fakeSink) Spawn(td *meshing.TileData)       { s.spawns = append(s.spawns, td.ID) }
func (s *fakeSink) Despawn(id icosphere.TileID)      { s.despawns = append(s.despawns, id) }
func (s *fakeSink) SetFade(id icosphere.TileID, a float32) { s.fades[id] = a }

type fakeClock struct{ t float64 }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.PlanetRadius = 10
	cfg.BaseResolution = 4
	cfg.MaxDepth = 3
	cfg.SpawnBudget = 1000
	cfg.VisibilityInterval = 0
	cfg.DebounceInterval = 0.5
	cfg.RingSize = 2
	return cfg
}

func newTestManager(cfg *config.Config) (*Manager, *fakeSink, *fakeClock) {
	sink := newFakeSink()
	builder := meshing.NewTileBuilder(meshing.NewMeshCache(), height.Flat{}, cfg.PlanetRadius, icosphere.Vec{})
	m := NewManager(cfg, builder, sink)
	clk := &fakeClock{}
	m.now = func() float64 { return clk.t }
	return m, sink, clk
}

func TestDesiredDepthThresholds(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDepth = 6
	m, _, _ := newTestManager(cfg)

	// Limiar do nível d: 0.02 + 3.98/2^d sobre a altitude normalizada.
	cases := []struct {
		norm float64
		want int32
	}{
		{10.0, 0},  // acima de todos os limiares
		{3.0, 0},   // só o nível 0 satisfeito
		{1.5, 1},   // abaixo de 2.01, acima de 1.015
		{0.6, 2},
		{0.3, 3},
		{0.001, 6}, // rente à superfície: nível máximo
	}
	for _, c := range cases {
		dist := cfg.PlanetRadius * (1 + c.norm)
		if got := m.DesiredDepth(dist); got != c.want {
			t.Errorf("DesiredDepth(norm=%.3f) = %d, esperado %d", c.norm, got, c.want)
		}
	}
	// Abaixo da superfície não explode nem passa do teto.
	if got := m.DesiredDepth(cfg.PlanetRadius * 0.5); got != cfg.MaxDepth {
		t.Errorf("dentro do planeta: profundidade %d, esperado %d", got, cfg.MaxDepth)
	}
}

func TestDepthMonotonicNonIncreasing(t *testing.T) {
	m, _, _ := newTestManager(testConfig())
	prev := m.DesiredDepth(10.0 * 1.001)
	for norm := 0.01; norm < 6; norm += 0.05 {
		d := m.DesiredDepth(10.0 * (1 + norm))
		if d > prev {
			t.Fatalf("profundidade subiu com a distância: %d -> %d em norm %.2f", prev, d, norm)
		}
		prev = d
	}
}

func TestDepthTransitionCleansStaleTiles(t *testing.T) {
	cfg := testConfig()
	m, sink, clk := newTestManager(cfg)

	far := icosphere.Vec{X: cfg.PlanetRadius * 4}
	m.Update(far, 0.016)
	if m.Depth() != 0 {
		t.Fatalf("profundidade longe = %d, esperado 0", m.Depth())
	}
	if m.ActiveCount() == 0 {
		t.Fatal("nenhum tile materializado na visão distante")
	}

	clk.t += 1.0
	near := icosphere.Vec{X: cfg.PlanetRadius * 1.3}
	m.Update(near, 0.016)
	newDepth := m.Depth()
	if newDepth == 0 {
		t.Fatalf("aproximação não mudou a profundidade")
	}

	// Nenhum tile da profundidade antiga pode sobreviver à transição.
	for id := range m.tiles {
		if id.Depth != newDepth {
			t.Errorf("tile obsoleto %s sobreviveu à transição para %d", id, newDepth)
		}
	}
	if len(sink.despawns) == 0 {
		t.Error("transição de profundidade não despachou os tiles antigos")
	}
	if m.queue.Len() > 0 {
		// Tudo que restar na fila precisa ser da profundidade nova.
		m.queue.DropWhere(func(id icosphere.TileID, req spawnRequest) bool {
			if req.depth != newDepth {
				t.Errorf("pedido obsoleto na fila: %s (depth %d)", id, req.depth)
			}
			return false
		})
	}
}

func TestConeCandidatesExcludeFarSide(t *testing.T) {
	cfg := testConfig()
	m, _, _ := newTestManager(cfg)
	m.setDepth(2)

	// Observador acima do centroide de um tile, com o planeta dominando a
	// visão (raio angular > 45°).
	reg := m.Registry(2)
	target := icosphere.NewTileID(0, 1, 1, 2)
	entry, _ := reg.Entry(target)
	dist := cfg.PlanetRadius * 1.2
	viewerPos := entry.Normal.Scale(dist)
	viewerDir := entry.Normal

	cands := m.computeCandidates(viewerPos, dist)
	found := false
	for _, e := range cands {
		if e.ID == target {
			found = true
		}
		if e.Normal.Dot(viewerDir) <= 0 {
			t.Errorf("candidato %s no hemisfério oposto (dot=%.3f)", e.ID, e.Normal.Dot(viewerDir))
		}
	}
	if !found {
		t.Errorf("o tile diretamente abaixo do observador ficou fora do conjunto")
	}
	if len(cands) == 0 || len(cands) >= reg.Len() {
		t.Errorf("cone não filtrou nada: %d de %d", len(cands), reg.Len())
	}
}

func TestRingCandidatesCoverVisibleDisc(t *testing.T) {
	cfg := testConfig()
	m, _, _ := newTestManager(cfg)
	m.setDepth(2)

	// Planeta pequeno na tela (raio angular < 45°): caminho do anel.
	reg := m.Registry(2)
	entry, _ := reg.Entry(icosphere.NewTileID(3, 0, 1, 2))
	dist := cfg.PlanetRadius * 3
	viewerDir := entry.Normal
	viewerPos := viewerDir.Scale(dist)

	cands := m.computeCandidates(viewerPos, dist)
	inSet := make(map[icosphere.TileID]bool, len(cands))
	for _, e := range cands {
		if e.ID.Depth != 2 {
			t.Errorf("candidato %s fora da profundidade atual", e.ID)
		}
		if e.Normal.Dot(viewerDir) < 0.5 {
			t.Errorf("candidato %s longe demais do ponto sob o observador (dot=%.3f)",
				e.ID, e.Normal.Dot(viewerDir))
		}
		inSet[e.ID] = true
	}
	if len(cands) == 0 || len(cands) >= reg.Len() {
		t.Fatalf("anel não filtrou nada: %d de %d", len(cands), reg.Len())
	}

	// O centro do disco visível precisa estar coberto por inteiro,
	// independente de face ou orientação da célula.
	for _, e := range reg.Entries() {
		if e.Normal.Dot(viewerDir) >= 0.7 && !inSet[e.ID] {
			t.Errorf("tile %s no centro do disco visível (dot=%.3f) ficou fora do anel",
				e.ID, e.Normal.Dot(viewerDir))
		}
	}
}

func TestRingCandidatesCrossFaceSeams(t *testing.T) {
	cfg := testConfig()
	m, _, _ := newTestManager(cfg)
	m.setDepth(2)

	// Observador sobre um vértice do icosaedro: o disco visível cobre as
	// cinco faces incidentes, e o anel precisa enxergar através das
	// costuras.
	viewerDir := icosphere.FaceVertices(0)[0]
	dist := cfg.PlanetRadius * 3
	cands := m.computeCandidates(viewerDir.Scale(dist), dist)

	faces := make(map[int32]bool)
	for _, e := range cands {
		faces[e.ID.Face] = true
	}
	if len(faces) < 3 {
		t.Errorf("anel sobre um vértice cobriu só %d faces, esperado pelo menos 3", len(faces))
	}
}

func TestRingCandidatesIncludeInvertedCell(t *testing.T) {
	cfg := testConfig()
	m, _, _ := newTestManager(cfg)
	m.setDepth(3)

	// Observador sobre o interior da face 0. A célula direta sob ele é
	// (1,1); a célula invertida (6,6) é o reflexo diagonal que divide o
	// mesmo quadrado e fica igualmente perto — ambas precisam entrar.
	viewerDir := icosphere.BaryToDirection(0, icosphere.Barycentric{U: 0.2, V: 0.2})
	dist := cfg.PlanetRadius * 3
	cands := m.computeCandidates(viewerDir.Scale(dist), dist)

	want := map[icosphere.TileID]bool{
		icosphere.NewTileID(0, 1, 1, 3): false,
		icosphere.NewTileID(0, 6, 6, 3): false,
	}
	for _, e := range cands {
		if _, ok := want[e.ID]; ok {
			want[e.ID] = true
		}
	}
	for id, found := range want {
		if !found {
			t.Errorf("tile %s sob o observador ficou fora do anel", id)
		}
	}
}

func TestChecksumDebounce(t *testing.T) {
	cfg := testConfig()
	m, _, clk := newTestManager(cfg)

	pos := icosphere.Vec{X: cfg.PlanetRadius * 4}
	m.Update(pos, 0.016)
	first := m.lastReconcile

	// Mesmo conjunto dentro da janela: reconciliação pulada.
	clk.t += 0.1
	m.Update(pos, 0.016)
	if m.lastReconcile != first {
		t.Error("conjunto idêntico dentro da janela reconciliou de novo")
	}

	// Depois da janela, reconciliação roda mesmo com conjunto idêntico.
	clk.t += cfg.DebounceInterval + 0.1
	m.Update(pos, 0.016)
	if m.lastReconcile == first {
		t.Error("janela vencida deveria forçar reconciliação")
	}
}

func TestSpawnBudgetBoundsWorkPerTick(t *testing.T) {
	cfg := testConfig()
	cfg.SpawnBudget = 3
	m, sink, clk := newTestManager(cfg)

	// Visão preenchida: muito mais candidatos do que o orçamento.
	pos := icosphere.Vec{X: cfg.PlanetRadius * 1.3}
	m.Update(pos, 0.016)
	if len(sink.spawns) != 3 {
		t.Fatalf("primeiro tick materializou %d tiles, orçamento era 3", len(sink.spawns))
	}
	if m.QueueLen() == 0 {
		t.Fatal("a fila deveria reter o trabalho excedente")
	}

	clk.t += 1.0
	m.Update(pos, 0.016)
	if len(sink.spawns) != 6 {
		t.Errorf("segundo tick acumulou %d spawns, esperado 6", len(sink.spawns))
	}
}

func TestSpawnsOrderedNearestFirst(t *testing.T) {
	cfg := testConfig()
	cfg.SpawnBudget = 1000
	m, sink, _ := newTestManager(cfg)

	pos := icosphere.Vec{X: cfg.PlanetRadius * 1.2}
	m.Update(pos, 0.016)

	if len(sink.spawns) < 2 {
		t.Skip("poucos tiles para verificar ordenação")
	}
	reg := m.Registry(m.Depth())
	prev := -1.0
	for _, id := range sink.spawns {
		e, _ := reg.Entry(id)
		d := pos.Sub(e.Center)
		dd := d.Dot(d)
		if dd+1e-9 < prev {
			t.Fatalf("spawn fora de ordem: %s a %.3f depois de %.3f", id, dd, prev)
		}
		prev = dd
	}
}

func TestStaleQueueEntriesDroppedSilently(t *testing.T) {
	cfg := testConfig()
	m, sink, _ := newTestManager(cfg)
	m.setDepth(1)

	// Pedido de uma profundidade que já não é a atual.
	stale := icosphere.NewTileID(0, 0, 0, 3)
	m.queue.Push(stale, spawnRequest{depth: 3}, 0)
	m.processQueue()

	for _, id := range sink.spawns {
		if id == stale {
			t.Error("pedido obsoleto foi materializado")
		}
	}
	if m.QueueLen() != 0 {
		t.Error("pedido obsoleto ficou na fila")
	}
}

func TestInvalidateRebuildsSpawnedTile(t *testing.T) {
	cfg := testConfig()
	m, sink, _ := newTestManager(cfg)

	pos := icosphere.Vec{X: cfg.PlanetRadius * 4}
	m.Update(pos, 0.016)
	if len(sink.spawns) == 0 {
		t.Fatal("setup sem tiles")
	}
	target := sink.spawns[0]
	before := len(sink.spawns)

	m.Invalidate(target)
	if len(sink.spawns) != before+1 || sink.spawns[before] != target {
		t.Error("Invalidate de tile materializado deveria reenviar o tile")
	}

	// Tile não materializado (face do hemisfério oposto): só limpa o
	// cache, sem spawn.
	m.Invalidate(icosphere.NewTileID(12, 0, 0, m.Depth()))
	if len(sink.spawns) != before+1 {
		t.Error("Invalidate de tile ausente não deveria materializar nada")
	}
}

func TestResetReturnsToInitialState(t *testing.T) {
	cfg := testConfig()
	m, sink, _ := newTestManager(cfg)

	m.Update(icosphere.Vec{X: cfg.PlanetRadius * 4}, 0.016)
	if m.ActiveCount() == 0 {
		t.Fatal("setup sem tiles")
	}

	m.Reset()
	if m.ActiveCount() != 0 || m.QueueLen() != 0 {
		t.Error("Reset deixou estado para trás")
	}
	if m.Depth() != -1 {
		t.Errorf("Reset deveria voltar a profundidade para -1, ficou %d", m.Depth())
	}
	if m.builder.Cache.Len() != 0 {
		t.Error("Reset deveria limpar o cache de malhas")
	}
	if len(sink.despawns) == 0 {
		t.Error("Reset não despachou os tiles ativos")
	}
}
