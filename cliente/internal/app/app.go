package app

import (
	"log"

	"PlanetVision/cliente/internal/camera"
	"PlanetVision/cliente/internal/client"
	"PlanetVision/cliente/internal/meshing"
	"PlanetVision/cliente/internal/render"
	"PlanetVision/cliente/internal/visibility"
	"PlanetVision/shared/config"
	"PlanetVision/shared/height"
	"PlanetVision/shared/icosphere"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateViewing AppState = iota // Visualizando o planeta
	StatePaused                  // Pausado
)

// App é a aplicação principal do PlanetVision.
type App struct {
	Config *config.Config
	State  AppState

	// Controlador de câmera orbital
	Cam *camera.CameraController

	// Informações de debug
	frameCount int

	// Pipeline do planeta
	netClient *client.NetworkClient
	meshCache *meshing.MeshCache
	builder   *meshing.TileBuilder
	manager   *visibility.Manager
	renderer  *render.Renderer

	serverStatus string
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config) *App {
	return &App{
		Config:       cfg,
		State:        StateViewing,
		serverStatus: "Offline",
	}
}

// Run inicia o loop principal da aplicação.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	// Inicializar janela raylib
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning) // Reduz ruído no terminal

	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}

	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0)

	log.Println("[PlanetVision] Janela inicializada com sucesso")
	log.Printf("[PlanetVision] Resolução: %dx%d", a.Config.WindowWidth, a.Config.WindowHeight)

	// Câmera orbital centrada no planeta na origem.
	a.Cam = camera.New(rl.Vector3{}, float32(a.Config.PlanetRadius), a.Config.FOV)

	// Pipeline: cache -> builder -> gerenciador de visibilidade -> renderer.
	a.renderer = render.NewRenderer()
	a.renderer.Wireframe = a.Config.WireframeMode
	a.meshCache = meshing.NewMeshCache()

	provider := height.NewNoiseProvider(a.Config.NoiseSeed)
	a.builder = meshing.NewTileBuilder(a.meshCache, provider, a.Config.PlanetRadius, icosphere.Vec{})

	if a.Config.ServerURL != "" {
		a.netClient = client.NewNetworkClient(a.Config.ServerURL)
		a.builder.Patches = a.netClient
		go a.connectServer()
	}

	a.manager = visibility.NewManager(a.Config, a.builder, a.renderer)
	log.Printf("[App] Planeta raio %.0f, profundidade máxima %d, orçamento %d tiles/tick",
		a.Config.PlanetRadius, a.Config.MaxDepth, a.Config.SpawnBudget)

	// Loop principal
	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	// Cleanup
	a.shutdown()
	rl.CloseWindow()
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	if a.netClient != nil {
		a.netClient.Close()
	}
	a.renderer.Unload()

	if err := a.Config.Save(); err != nil {
		log.Printf("[PlanetVision] Erro ao salvar configurações: %v", err)
	}
}
