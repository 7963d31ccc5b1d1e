// Package client conecta o visualizador ao servidor de elevação via
// websocket. O cliente funciona como um PatchSource para o construtor de
// malhas: patches já recebidos respondem na hora, ausentes são pedidos ao
// servidor em segundo plano enquanto o terreno procedural local cobre o
// buraco.
package client

import (
	"log"
	"sync"
	"time"

	"PlanetVision/shared/icosphere"
	"PlanetVision/shared/proto/pvnet"
	"PlanetVision/shared/util"

	"github.com/gorilla/websocket"
)

type patchKey struct {
	id         icosphere.TileID
	resolution int32
}

// PatchEvent anuncia a chegada de um patch novo, para o app invalidar a
// malha do tile correspondente.
type PatchEvent struct {
	ID         icosphere.TileID
	Resolution int32
}

// NetworkClient lida com a comunicação com o servidor PlanetVision.
type NetworkClient struct {
	conn      *websocket.Conn
	url       string
	connected bool
	mu        sync.RWMutex

	patches map[patchKey][]float64
	pending map[patchKey]bool

	// Patches recém-chegados, drenados pelo laço principal do app.
	Arrivals *util.ThreadSafeQueue[PatchEvent]

	// Callbacks para o App
	OnStatus func(msg string, dbReady bool)
}

// NewNetworkClient cria o cliente para a URL dada (ws://host:porta/ws).
func NewNetworkClient(url string) *NetworkClient {
	return &NetworkClient{
		url:      url,
		patches:  make(map[patchKey][]float64),
		pending:  make(map[patchKey]bool),
		Arrivals: util.NewThreadSafeQueue[PatchEvent](),
	}
}

// Connect tenta estabelecer a conexão, com algumas tentativas antes de
// desistir. O visualizador segue funcionando sem servidor.
func (c *NetworkClient) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	var err error
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		log.Printf("[Network] Tentativa de conexão %d/%d em %s...", i+1, maxRetries, c.url)
		c.conn, _, err = dialer.Dial(c.url, nil)
		if err == nil {
			break
		}
		log.Printf("[Network] Servidor ainda não está pronto: %v. Aguardando...", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Printf("[Network] Sem servidor de elevação após %d tentativas: %v", maxRetries, err)
		return err
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// IsConnected informa se a conexão está viva.
func (c *NetworkClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Patch implementa height.PatchSource: retorna a grade do tile se já
// chegou; caso contrário dispara o pedido (uma vez) e retorna false para o
// construtor usar o provedor procedural.
func (c *NetworkClient) Patch(id icosphere.TileID, resolution int32) ([]float64, bool) {
	key := patchKey{id: id, resolution: resolution}

	c.mu.RLock()
	samples, ok := c.patches[key]
	pending := c.pending[key]
	connected := c.connected
	c.mu.RUnlock()

	if ok {
		return samples, true
	}
	if connected && !pending {
		c.mu.Lock()
		c.pending[key] = true
		c.mu.Unlock()
		c.requestPatch(id, resolution)
	}
	return nil, false
}

// PatchCount retorna quantos patches estão no cache local.
func (c *NetworkClient) PatchCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.patches)
}

func (c *NetworkClient) requestPatch(id icosphere.TileID, resolution int32) {
	req := pvnet.RequestPatch{
		Face:       id.Face,
		X:          id.X,
		Y:          id.Y,
		Depth:      id.Depth,
		Resolution: resolution,
	}
	c.send(pvnet.MsgRequestPatch, req.Marshal())
}

// Ping envia um ping de manutenção de conexão.
func (c *NetworkClient) Ping() {
	c.send(pvnet.MsgPing, nil)
}

func (c *NetworkClient) send(msgType pvnet.MessageType, payload []byte) {
	if !c.IsConnected() {
		return
	}

	data := pvnet.NewEnvelope(msgType, payload)

	c.mu.Lock()
	err := c.conn.WriteMessage(websocket.BinaryMessage, data)
	if err != nil {
		c.connected = false
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("[Network] Erro ao enviar mensagem: %v", err)
	}
}

func (c *NetworkClient) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		if c.conn != nil {
			c.conn.Close()
		}
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("[Network] Conexão perdida: %v", err)
			break
		}

		var env pvnet.Envelope
		if err := env.Unmarshal(message); err != nil {
			log.Printf("[Network] Erro ao desempacotar envelope: %v", err)
			continue
		}

		c.handleMessage(&env)
	}
}

func (c *NetworkClient) handleMessage(env *pvnet.Envelope) {
	switch env.Type {
	case pvnet.MsgServerStatus:
		var status pvnet.ServerStatus
		if err := status.Unmarshal(env.Payload); err == nil {
			log.Printf("[Network] Status do servidor: %s (banco pronto: %v)", status.Message, status.DBReady)
			if c.OnStatus != nil {
				c.OnStatus(status.Message, status.DBReady)
			}
		}

	case pvnet.MsgElevationPatch:
		var patch pvnet.ElevationPatch
		if err := patch.Unmarshal(env.Payload); err != nil {
			log.Printf("[Network] Patch inválido: %v", err)
			return
		}
		c.storePatch(&patch)

	case pvnet.MsgPong:
		// Ping/Pong tratado
	}
}

// storePatch guarda a grade recebida e anuncia a chegada para o laço
// principal invalidar a malha do tile.
func (c *NetworkClient) storePatch(patch *pvnet.ElevationPatch) {
	id := icosphere.NewTileID(patch.Face, patch.X, patch.Y, patch.Depth)
	want := icosphere.TileVertexCount(patch.Resolution)
	if int32(len(patch.Samples)) != want {
		log.Printf("[Network] Patch de %s com %d amostras, esperado %d; descartado",
			id, len(patch.Samples), want)
		return
	}

	samples := make([]float64, len(patch.Samples))
	for i, s := range patch.Samples {
		samples[i] = float64(s)
	}

	key := patchKey{id: id, resolution: patch.Resolution}
	c.mu.Lock()
	c.patches[key] = samples
	delete(c.pending, key)
	c.mu.Unlock()

	c.Arrivals.Push(PatchEvent{ID: id, Resolution: patch.Resolution})
}

// Close encerra a conexão.
func (c *NetworkClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
	}
}
