package app

import "log"

// connectServer estabelece a conexão com o servidor de elevação em segundo
// plano. A falha não é fatal: o visualizador continua com o terreno
// procedural local.
func (a *App) connectServer() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Goroutine de rede recuperada: %v", r)
		}
	}()

	a.netClient.OnStatus = func(msg string, dbReady bool) {
		a.serverStatus = msg
		if dbReady {
			a.serverStatus = msg + " (banco pronto)"
		}
	}

	if err := a.netClient.Connect(); err != nil {
		a.serverStatus = "Offline"
		return
	}
	a.serverStatus = "Conectado"
	a.netClient.Ping()
}
