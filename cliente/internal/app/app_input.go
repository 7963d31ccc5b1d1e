package app

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// updateInput processa os atalhos globais de teclado.
func (a *App) updateInput() {
	// P pausa/despausa.
	if rl.IsKeyPressed(rl.KeyP) {
		if a.State == StatePaused {
			a.State = StateViewing
		} else {
			a.State = StatePaused
		}
		return
	}

	if a.State != StateViewing {
		return
	}

	// F1 alterna o overlay de debug.
	if rl.IsKeyPressed(rl.KeyF1) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}

	// F2 alterna wireframe.
	if rl.IsKeyPressed(rl.KeyF2) {
		a.Config.WireframeMode = !a.Config.WireframeMode
		a.renderer.Wireframe = a.Config.WireframeMode
	}

	// R reinicia a sessão: despacha tudo, limpa caches e deixa o próximo
	// tick reconstruir do zero.
	if rl.IsKeyPressed(rl.KeyR) {
		log.Printf("[App] Reset manual da sessão")
		a.manager.Reset()
	}
}
