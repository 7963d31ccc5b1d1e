package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(8, 8, 16, 255))

	a.drawScene()
	a.drawHUD()

	if a.State == StatePaused {
		a.drawPauseMenu()
	}

	rl.EndDrawing()
}

// drawScene renderiza o planeta.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)
	a.renderer.Draw()
	rl.EndMode3D()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo {
		return
	}

	// Fundo semi-transparente para o debug
	width := int32(300)
	height := int32(190)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	// FPS
	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	// Divisor
	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("PLANETA", x+10, y+45, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Altitude: %.2f (raio %.0f)", a.Cam.Altitude(), a.Config.PlanetRadius),
		x+10, y+60, 14, rl.White)
	rl.DrawText(fmt.Sprintf("Profundidade: %d / %d", a.manager.Depth(), a.Config.MaxDepth),
		x+10, y+78, 14, rl.White)

	rl.DrawLine(x+10, y+98, x+width-10, y+98, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("TILES", x+10, y+106, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Ativos: %d | Fila: %d | Cache: %d",
		a.manager.ActiveCount(), a.manager.QueueLen(), a.meshCache.Len()),
		x+10, y+121, 14, rl.White)

	// Servidor de elevação
	status := a.serverStatus
	statusColor := rl.Gray
	if a.netClient != nil && a.netClient.IsConnected() {
		status = fmt.Sprintf("Conectado (%d patches)", a.netClient.PatchCount())
		statusColor = rl.Green
	}
	rl.DrawText(fmt.Sprintf("Servidor: %s", status), x+10, y+141, 14, statusColor)

	rl.DrawText("F1 debug | F2 wireframe | R reset | P pausa", x+10, y+165, 10, rl.LightGray)
}

// drawPauseMenu escurece a tela e mostra o aviso de pausa.
func (a *App) drawPauseMenu() {
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	rl.DrawRectangle(0, 0, w, h, rl.NewColor(0, 0, 0, 140))

	text := "PAUSADO - pressione P para continuar"
	size := int32(20)
	tw := rl.MeasureText(text, size)
	rl.DrawText(text, w/2-tw/2, h/2-size/2, size, rl.RayWhite)
}
