package camera

import (
	"math"

	"PlanetVision/shared/icosphere"
	"PlanetVision/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraController orbita a câmera ao redor do centro do planeta:
// longitude/latitude definem o ponto sobre a superfície, o zoom é a
// distância ao centro. Movimento e zoom são interpolados para dar peso.
type CameraController struct {
	// Estado interno do Raylib
	RLCamera rl.Camera3D

	PlanetCenter rl.Vector3
	PlanetRadius float32

	// Configurações
	MinAltitude  float32 // distância mínima à superfície
	MaxAltitude  float32
	OrbitSpeed   float32 // radianos/s na superfície (escala com a altitude)
	RotateSpeed  float32
	ZoomSpeed    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave/lento)

	// Estado alvo (para interpolação suave)
	TargetLon  float32 // longitude (radianos)
	TargetLat  float32 // latitude (radianos)
	TargetDist float32 // distância ao centro do planeta

	// Estado atual (interpolado)
	CurrentLon  float32
	CurrentLat  float32
	CurrentDist float32
}

// New cria um controlador orbital para um planeta de raio dado.
func New(center rl.Vector3, radius float32, fovy float32) *CameraController {
	c := &CameraController{
		PlanetCenter: center,
		PlanetRadius: radius,

		MinAltitude:  radius * 0.01,
		MaxAltitude:  radius * 6.0,
		OrbitSpeed:   1.2,
		RotateSpeed:  2.0,
		ZoomSpeed:    5.0,
		SmoothFactor: 0.12,

		TargetLon:  0,
		TargetLat:  20.0 * rl.Deg2rad,
		TargetDist: radius * 3.0,
	}

	// Inicializa os valores atuais com os alvos para não "saltar" no início.
	c.CurrentLon = c.TargetLon
	c.CurrentLat = c.TargetLat
	c.CurrentDist = c.TargetDist

	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       fovy,
		Projection: rl.CameraPerspective,
	}

	c.recompute()
	return c
}

// Position retorna a posição atual da câmera em precisão dupla, para o
// gerenciador de visibilidade.
func (c *CameraController) Position() icosphere.Vec {
	return icosphere.Vec{
		X: float64(c.RLCamera.Position.X),
		Y: float64(c.RLCamera.Position.Y),
		Z: float64(c.RLCamera.Position.Z),
	}
}

// Altitude retorna a distância atual à superfície do planeta.
func (c *CameraController) Altitude() float32 {
	return c.CurrentDist - c.PlanetRadius
}

// Update interpola o estado atual em direção ao alvo. Chamar a cada frame.
func (c *CameraController) Update(dt float32) {
	// Amortecimento normalizado para 60 FPS, como clamp para frames longos.
	factor := c.SmoothFactor * 60.0 * dt
	if factor > 1.0 {
		factor = 1.0
	}

	c.CurrentLon = util.Lerp(c.CurrentLon, c.TargetLon, factor)
	c.CurrentLat = util.Lerp(c.CurrentLat, c.TargetLat, factor)
	c.CurrentDist = util.Lerp(c.CurrentDist, c.TargetDist, factor)

	c.recompute()
}

// recompute converte (lon, lat, dist) esféricos em posição cartesiana e
// aponta a câmera para o ponto da superfície abaixo dela.
func (c *CameraController) recompute() {
	cosLat := float32(math.Cos(float64(c.CurrentLat)))
	sinLat := float32(math.Sin(float64(c.CurrentLat)))
	cosLon := float32(math.Cos(float64(c.CurrentLon)))
	sinLon := float32(math.Sin(float64(c.CurrentLon)))

	dir := mgl32.Vec3{cosLat * cosLon, sinLat, cosLat * sinLon}

	pos := dir.Mul(c.CurrentDist)
	c.RLCamera.Position = rl.Vector3{
		X: c.PlanetCenter.X + pos.X(),
		Y: c.PlanetCenter.Y + pos.Y(),
		Z: c.PlanetCenter.Z + pos.Z(),
	}

	// Perto da superfície a câmera olha o horizonte; longe, olha o centro.
	surf := dir.Mul(c.PlanetRadius)
	altFrac := util.ClampF((c.CurrentDist-c.PlanetRadius)/c.PlanetRadius, 0, 1)
	look := surf.Mul(1 - altFrac) // altFrac 1 => olhar o centro
	c.RLCamera.Target = rl.Vector3{
		X: c.PlanetCenter.X + look.X(),
		Y: c.PlanetCenter.Y + look.Y(),
		Z: c.PlanetCenter.Z + look.Z(),
	}
}

// HandleInput processa entrada do usuário. Retorna true se houve input.
func (c *CameraController) HandleInput(dt float32) bool {
	moved := false

	// Zoom com scroll, escalado pela altitude para aterrissagens suaves.
	wheel := rl.GetMouseWheelMove()
	if wheel != 0 {
		moved = true
		alt := c.TargetDist - c.PlanetRadius
		c.TargetDist -= wheel * c.ZoomSpeed * (alt / c.PlanetRadius) * c.PlanetRadius * 0.1
		c.clampDist()
	}

	// Órbita com botão esquerdo.
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			moved = true
		}
		c.TargetLon += delta.X * c.RotateSpeed * 0.005
		c.TargetLat += delta.Y * c.RotateSpeed * 0.005
		c.clampLat()
	}

	// WASD percorre a superfície; quanto mais baixo, mais devagar.
	alt := c.TargetDist - c.PlanetRadius
	angular := c.OrbitSpeed * dt * util.ClampF(alt/c.PlanetRadius, 0.02, 1.5)

	if rl.IsKeyDown(rl.KeyW) {
		c.TargetLat += angular
		moved = true
	}
	if rl.IsKeyDown(rl.KeyS) {
		c.TargetLat -= angular
		moved = true
	}
	if rl.IsKeyDown(rl.KeyD) {
		c.TargetLon += angular
		moved = true
	}
	if rl.IsKeyDown(rl.KeyA) {
		c.TargetLon -= angular
		moved = true
	}
	c.clampLat()

	// PageUp/PageDown como zoom de teclado.
	if rl.IsKeyDown(rl.KeyPageUp) {
		c.TargetDist -= c.ZoomSpeed * dt * c.PlanetRadius * 0.2
		c.clampDist()
		moved = true
	}
	if rl.IsKeyDown(rl.KeyPageDown) {
		c.TargetDist += c.ZoomSpeed * dt * c.PlanetRadius * 0.2
		c.clampDist()
		moved = true
	}

	return moved
}

func (c *CameraController) clampDist() {
	c.TargetDist = util.ClampF(c.TargetDist,
		c.PlanetRadius+c.MinAltitude,
		c.PlanetRadius+c.MaxAltitude)
}

func (c *CameraController) clampLat() {
	// Evita cruzar os polos, onde a longitude degenera.
	limit := float32(85.0 * rl.Deg2rad)
	c.TargetLat = util.ClampF(c.TargetLat, -limit, limit)
}
