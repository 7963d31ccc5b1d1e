package main

import (
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"PlanetVision/servidor/internal/elevation"
	"PlanetVision/shared/height"
	"PlanetVision/shared/icosphere"
	"PlanetVision/shared/proto/pvnet"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub gerencia as conexões WebSocket ativas
type Hub struct {
	clients    map[*websocket.Conn]*sync.Mutex
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]*sync.Mutex),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Hub] Recuperado de pânico fatal: %v", r)
		}
	}()

	for {
		select {
		case client, ok := <-h.register:
			if !ok {
				return
			}
			h.mu.Lock()
			h.clients[client] = &sync.Mutex{}
			h.mu.Unlock()
			log.Printf("Cliente registrado: %s", client.RemoteAddr())
		case client, ok := <-h.unregister:
			if !ok {
				return
			}
			h.mu.Lock()
			if lock, ok := h.clients[client]; ok {
				lock.Lock()
				delete(h.clients, client)
				client.Close()
				lock.Unlock()
				log.Printf("Cliente desregistrado: %s", client.RemoteAddr())
			}
			h.mu.Unlock()
		}
	}
}

// WriteSafe garante que apenas uma goroutine escreva no WebSocket por vez
func (h *Hub) WriteSafe(conn *websocket.Conn, data []byte) error {
	h.mu.Lock()
	lock, ok := h.clients[conn]
	h.mu.Unlock()

	if !ok {
		// Cliente acabou de desconectar; descarta em silêncio
		return nil
	}

	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// SendMessage embrulha o payload num envelope e envia para uma conexão.
func (h *Hub) SendMessage(conn *websocket.Conn, msgType pvnet.MessageType, payload []byte) {
	data := pvnet.NewEnvelope(msgType, payload)
	if err := h.WriteSafe(conn, data); err != nil {
		log.Printf("Erro ao enviar mensagem: %v", err)
	}
}

// server agrupa as dependências compartilhadas pelas conexões.
type server struct {
	hub      *Hub
	store    *elevation.Store
	provider height.Provider
}

func main() {
	// Garante que o working directory é o mesmo diretório do executável,
	// para que caminhos relativos (saves/, tmp/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		os.Chdir(filepath.Dir(exePath))
	}

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Configurar Log em Arquivo para depuração de crash
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			// MultiWriter para logar no console e no arquivo simultaneamente
			mw := io.MultiWriter(os.Stdout, logFile)
			log.SetOutput(mw)
		}
	}
	log.Println("╔══════════════════════════════════════╗")
	log.Println("║     PlanetVision SERVER v0.1.0       ║")
	log.Println("╚══════════════════════════════════════╝")

	port := flag.String("port", "", "Porta do servidor (padrão 8080, ou env PORT)")
	dbPath := flag.String("db", "", "Caminho do banco SQLite (padrão saves/planet.pv, ou env PV_DB)")
	seed := flag.Int64("seed", 1337, "Semente do terreno")
	flag.Parse()

	if *port == "" {
		*port = os.Getenv("PORT")
	}
	if *port == "" {
		*port = "8080"
	}
	if *dbPath == "" {
		*dbPath = os.Getenv("PV_DB")
	}
	if *dbPath == "" {
		*dbPath = filepath.Join("saves", "planet.pv")
	}

	hub := newHub()
	go hub.run()

	srv := &server{
		hub:      hub,
		provider: height.NewNoiseProvider(*seed),
	}

	store, err := elevation.Open(*dbPath, *seed)
	if err != nil {
		log.Printf("Aviso: servidor seguirá sem persistência: %v", err)
	} else {
		srv.store = store
		if count, err := store.Count(); err == nil {
			log.Printf("[Startup] Inspeção de Banco de Dados: %d patches persistidos.", count)
		}
	}

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		srv.serveWs(w, r)
	})

	// Iniciar Servidor HTTP/WebSocket com verificação de porta
	addr := "127.0.0.1:" + *port
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("╔══════════════════════════════════════════════════════════════╗")
		log.Printf("║ ERRO CRÍTICO: Não foi possível abrir a porta %s.      ║", *port)
		log.Printf("║ Provavelmente há outra instância do servidor rodando.        ║")
		log.Printf("╚══════════════════════════════════════════════════════════════╝")
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}
	ln.Close() // Fecha para o ListenAndServe reabrir

	log.Printf("Servidor PlanetVision iniciado em %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Erro fatal no servidor HTTP: %v", err)
	}
}

// serveWs maneja requisições websocket do peer.
func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Erro no upgrade do WebSocket: %v", err)
		return
	}
	s.hub.register <- conn

	// Enviar status inicial
	status := pvnet.ServerStatus{
		Message: "Conectado ao Servidor PlanetVision",
		DBReady: s.store != nil,
	}
	s.hub.SendMessage(conn, pvnet.MsgServerStatus, status.Marshal())

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[WS] Recuperado de pânico na conexão: %v", r)
			}
			s.hub.unregister <- conn
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Printf("Erro ao ler mensagem: %v", err)
				break
			}

			var envelope pvnet.Envelope
			if err := envelope.Unmarshal(message); err != nil {
				log.Printf("Erro ao desempacotar envelope: %v", err)
				continue
			}

			s.handleClientMessage(conn, &envelope)
		}
	}()
}

func (s *server) handleClientMessage(conn *websocket.Conn, env *pvnet.Envelope) {
	switch env.Type {
	case pvnet.MsgPing:
		s.hub.SendMessage(conn, pvnet.MsgPong, nil)

	case pvnet.MsgRequestPatch:
		var req pvnet.RequestPatch
		if err := req.Unmarshal(env.Payload); err != nil {
			log.Printf("Erro ao ler RequestPatch: %v", err)
			return
		}
		go s.servePatch(conn, &req)
	}
}

// servePatch responde um pedido de patch: devolve o que está no banco ou
// assa a grade com o provedor procedural, persistindo o resultado.
func (s *server) servePatch(conn *websocket.Conn, req *pvnet.RequestPatch) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Patch] Recuperado de pânico: %v", r)
		}
	}()

	id := icosphere.NewTileID(req.Face, req.X, req.Y, req.Depth)
	if !id.InRange() || req.Resolution < 2 || req.Resolution > 257 {
		log.Printf("[Patch] Pedido inválido: %s res %d", id, req.Resolution)
		return
	}

	samples := s.lookupPatch(id, req.Resolution)
	if samples == nil {
		samples = s.bakePatch(id, req.Resolution)
	}

	patch := pvnet.ElevationPatch{
		Face:       id.Face,
		X:          id.X,
		Y:          id.Y,
		Depth:      id.Depth,
		Resolution: req.Resolution,
		Samples:    make([]float32, len(samples)),
	}
	for i, v := range samples {
		patch.Samples[i] = float32(v)
	}
	s.hub.SendMessage(conn, pvnet.MsgElevationPatch, patch.Marshal())
}

func (s *server) lookupPatch(id icosphere.TileID, resolution int32) []float64 {
	if s.store == nil {
		return nil
	}
	samples, err := s.store.LoadPatch(id, resolution)
	if err != nil {
		return nil
	}
	return samples
}

// bakePatch amostra o provedor em toda a grade do tile e persiste o
// resultado em segundo plano.
func (s *server) bakePatch(id icosphere.TileID, resolution int32) []float64 {
	barys := icosphere.TileVertexBarys(resolution, id)
	samples := make([]float64, len(barys))
	for i, b := range barys {
		dir := icosphere.BaryToDirection(id.Face, b)
		samples[i] = s.provider.Sample(dir, id.Depth)
	}

	if s.store != nil {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Persistence] Recuperado de pânico: %v", r)
				}
			}()
			s.store.SavePatch(id, resolution, samples) //nolint:errcheck — gravação em segundo plano, erro já logado no store
		}()
	}
	return samples
}
