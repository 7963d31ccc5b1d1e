package height

import "PlanetVision/shared/icosphere"

// NoiseProvider gera elevação por ruído de valor determinístico: hash
// inteiro nos nós de uma grade 3D, interpolação trilinear suavizada e
// soma de oitavas. Sem tabelas pré-computadas, então qualquer semente
// funciona sem estado global.
type NoiseProvider struct {
	Seed       int64
	Frequency  float64 // escala espacial da primeira oitava
	Amplitude  float64 // elevação máxima em unidades de mundo
	Octaves    int32   // oitavas base; detail adiciona mais
	MaxOctaves int32
	Lacunarity float64
	Gain       float64
}

// NewNoiseProvider cria um provedor com os parâmetros padrão do planeta.
func NewNoiseProvider(seed int64) *NoiseProvider {
	return &NoiseProvider{
		Seed:       seed,
		Frequency:  2.0,
		Amplitude:  4.0,
		Octaves:    4,
		MaxOctaves: 10,
		Lacunarity: 2.0,
		Gain:       0.5,
	}
}

// Sample soma oitavas de ruído de valor sobre a direção unitária. Cada
// nível de detail acrescenta uma oitava, até MaxOctaves, de modo que tiles
// mais profundos ganham relevo fino sem mudar as formas grandes.
func (p *NoiseProvider) Sample(dir icosphere.Vec, detail int32) float64 {
	octaves := p.Octaves + detail
	if octaves > p.MaxOctaves {
		octaves = p.MaxOctaves
	}
	if octaves < 1 {
		octaves = 1
	}

	freq := p.Frequency
	amp := 1.0
	sum := 0.0
	norm := 0.0
	for o := int32(0); o < octaves; o++ {
		sum += amp * p.valueNoise(dir.X*freq, dir.Y*freq, dir.Z*freq, int64(o))
		norm += amp
		freq *= p.Lacunarity
		amp *= p.Gain
	}
	// sum/norm fica em [-1, 1]; escala para a amplitude do planeta.
	return p.Amplitude * (sum / norm)
}

// valueNoise interpola valores pseudo-aleatórios nos oito nós da célula da
// grade que contém o ponto.
func (p *NoiseProvider) valueNoise(x, y, z float64, octave int64) float64 {
	ix, fx := splitCoord(x)
	iy, fy := splitCoord(y)
	iz, fz := splitCoord(z)

	fx = fade(fx)
	fy = fade(fy)
	fz = fade(fz)

	seed := p.Seed ^ int64(uint64(octave)*0x9E3779B97F4A7C15)
	c000 := latticeValue(ix, iy, iz, seed)
	c100 := latticeValue(ix+1, iy, iz, seed)
	c010 := latticeValue(ix, iy+1, iz, seed)
	c110 := latticeValue(ix+1, iy+1, iz, seed)
	c001 := latticeValue(ix, iy, iz+1, seed)
	c101 := latticeValue(ix+1, iy, iz+1, seed)
	c011 := latticeValue(ix, iy+1, iz+1, seed)
	c111 := latticeValue(ix+1, iy+1, iz+1, seed)

	x00 := lerp(c000, c100, fx)
	x10 := lerp(c010, c110, fx)
	x01 := lerp(c001, c101, fx)
	x11 := lerp(c011, c111, fx)
	y0 := lerp(x00, x10, fy)
	y1 := lerp(x01, x11, fy)
	return lerp(y0, y1, fz)
}

func splitCoord(v float64) (int64, float64) {
	i := int64(v)
	if v < float64(i) {
		i--
	}
	return i, v - float64(i)
}

// latticeValue mistura as coordenadas inteiras e a semente em um valor
// determinístico em [-1, 1].
func latticeValue(x, y, z, seed int64) float64 {
	h := uint64(x)*0x8DA6B343 ^ uint64(y)*0xD8163841 ^ uint64(z)*0xCB1AB31F ^ uint64(seed)
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	h *= 0xC4CEB9FE1A85EC53
	h ^= h >> 33
	return float64(h&0xFFFFFF)/float64(0x7FFFFF) - 1
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
