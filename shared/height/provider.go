// Package height define de onde vêm as elevações do terreno. O construtor
// de malhas só conhece o contrato Provider; a implementação pode ser o
// ruído procedural padrão ou um cliente de dados remotos.
package height

import "PlanetVision/shared/icosphere"

// Provider amostra a elevação radial (em unidades de mundo) para uma
// direção unitária na esfera. O parâmetro detail é uma dica de densidade
// de amostragem (tipicamente a profundidade do tile) que provedores
// procedurais usam para adicionar oitavas.
type Provider interface {
	Sample(dir icosphere.Vec, detail int32) float64
}

// PatchSource fornece grades inteiras de elevação pré-assadas para um tile,
// na ordem de LatticeIndex. Retorna false quando o patch não está
// disponível; o chamador então amostra o Provider normalmente.
type PatchSource interface {
	Patch(id icosphere.TileID, resolution int32) ([]float64, bool)
}

// Flat é um provedor de elevação zero: a esfera perfeita.
type Flat struct{}

// Sample retorna sempre zero.
func (Flat) Sample(icosphere.Vec, int32) float64 { return 0 }

// Default retorna o provedor procedural padrão, com semente fixa para que
// cliente e servidor vejam o mesmo planeta.
func Default() Provider {
	return NewNoiseProvider(1337)
}
