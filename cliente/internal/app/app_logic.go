package app

import rl "github.com/gen2brain/raylib-go/raylib"

// update atualiza a lógica a cada frame. O gerenciador de visibilidade
// internamente limita a seleção de candidatos ao intervalo configurado;
// câmera e cross-fade animam todo frame.
func (a *App) update() {
	a.frameCount++
	dt := rl.GetFrameTime()

	switch a.State {
	case StateViewing:
		a.renderer.ProcessPurge() // Limpeza incremental da GPU
		a.updateInput()

		a.Cam.HandleInput(dt)
		a.Cam.Update(dt)

		a.manager.Update(a.Cam.Position(), dt)
		a.processPatchArrivals()

	case StatePaused:
		a.updateInput() // Permite detectar P para despausar
	}
}

// processPatchArrivals drena os patches de elevação recém-chegados do
// servidor e invalida as malhas correspondentes, que serão reconstruídas
// com os dados reais.
func (a *App) processPatchArrivals() {
	if a.netClient == nil {
		return
	}
	// Poucos por frame para não competir com o orçamento de spawn.
	for i := 0; i < 4; i++ {
		ev, ok := a.netClient.Arrivals.Pop()
		if !ok {
			return
		}
		a.manager.Invalidate(ev.ID)
	}
}
