package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config armazena as configurações do PlanetVision.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// PlanetVision Server (Usado pelo Cliente)
	ServerURL string `json:"server_url"`

	// Planeta
	PlanetRadius   float64 `json:"planet_radius"`
	NoiseSeed      int64   `json:"noise_seed"`
	BaseResolution int32   `json:"base_resolution"`
	MaxDepth       int32   `json:"max_depth"`
	// Resolução por profundidade; índice = profundidade, 0 = usa a base.
	ResolutionOverrides []int32 `json:"resolution_overrides"`

	// Visibilidade
	MinLODDistance     float64 `json:"min_lod_distance"`    // altitude normalizada do nível mais profundo
	MaxLODDistance     float64 `json:"max_lod_distance"`    // altitude normalizada do nível 0
	RingSize           int32   `json:"ring_size"`           // raio do anel de vizinhos na visão aproximada
	SpawnBudget        int32   `json:"spawn_budget"`        // construções de tile por tick
	DebounceInterval   float64 `json:"debounce_interval"`   // segundos entre reconciliações forçadas
	VisibilityInterval float64 `json:"visibility_interval"` // segundos entre seleções de candidatos
	ConeMin            float64 `json:"cone_min"`            // limites do cosseno do teste de cone
	ConeMax            float64 `json:"cone_max"`

	// LOD local
	SplitFactor     float64 `json:"split_factor"`     // distância de split em múltiplos do tamanho do tile
	MergeHysteresis float64 `json:"merge_hysteresis"` // folga multiplicativa do merge sobre a distância de split
	FadeSpeed       float32 `json:"fade_speed"`       // alfa por segundo no cross-fade

	// Câmera
	CameraSpeed       float32 `json:"camera_speed"`
	CameraSensitivity float32 `json:"camera_sensitivity"`
	ZoomSpeed         float32 `json:"zoom_speed"`
	FOV               float32 `json:"fov"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info"`
	WireframeMode bool `json:"wireframe_mode"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "PlanetVision",
		Fullscreen:   false,
		TargetFPS:    60,

		ServerURL: "", // vazio = só terreno procedural local

		PlanetRadius:        100.0,
		NoiseSeed:           1337,
		BaseResolution:      17,
		MaxDepth:            6,
		ResolutionOverrides: nil,

		MinLODDistance:     0.02,
		MaxLODDistance:     4.0,
		RingSize:           2,
		SpawnBudget:        8,
		DebounceInterval:   0.5,
		VisibilityInterval: 1.0 / 30.0,
		ConeMin:            0.0,
		ConeMax:            0.95,

		SplitFactor:     1.5,
		MergeHysteresis: 1.3,
		FadeSpeed:       2.0,

		CameraSpeed:       10.0,
		CameraSensitivity: 0.3,
		ZoomSpeed:         5.0,
		FOV:               60.0,

		ShowDebugInfo: true,
		WireframeMode: false,
	}
}

// ResolutionFor retorna a resolução da grade de vértices para uma
// profundidade, respeitando overrides por nível.
func (c *Config) ResolutionFor(depth int32) int32 {
	if depth >= 0 && int(depth) < len(c.ResolutionOverrides) {
		if r := c.ResolutionOverrides[depth]; r >= 2 {
			return r
		}
	}
	if c.BaseResolution < 2 {
		return 2
	}
	return c.BaseResolution
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações de um arquivo JSON.
// Se o arquivo não existir, retorna as configurações padrão.
func Load() *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0644)
}
