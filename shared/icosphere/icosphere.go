// Package icosphere implementa o mapeamento entre direções no espaço e a
// malha icosaédrica subdividida do planeta. Toda a matemática aqui é feita
// em float64; a conversão para float32 acontece apenas na montagem dos
// buffers de vértices, garantindo que arestas compartilhadas entre tiles
// produzam exatamente os mesmos bits.
package icosphere

import "math"

// NumFaces é o número de faces do icosaedro base.
const NumFaces = 20

// baryEpsilon é o empurrão aplicado a coordenadas marginalmente fora do
// triângulo (u+v ligeiramente acima de 1 por erro de ponto flutuante).
const baryEpsilon = 1e-9

// Vec é um vetor 3D em precisão dupla usado por todo o núcleo geométrico.
type Vec struct {
	X, Y, Z float64
}

// Add soma dois vetores.
func (a Vec) Add(b Vec) Vec { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub subtrai b de a.
func (a Vec) Sub(b Vec) Vec { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale multiplica o vetor por um escalar.
func (a Vec) Scale(s float64) Vec { return Vec{a.X * s, a.Y * s, a.Z * s} }

// Dot retorna o produto escalar.
func (a Vec) Dot(b Vec) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross retorna o produto vetorial.
func (a Vec) Cross(b Vec) Vec {
	return Vec{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len retorna o comprimento do vetor.
func (a Vec) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize retorna o vetor unitário correspondente. Vetor nulo vira nulo.
func (a Vec) Normalize() Vec {
	l := a.Len()
	if l == 0 {
		return Vec{}
	}
	return a.Scale(1 / l)
}

// Barycentric é uma coordenada baricêntrica (u, v) dentro de uma face.
// O terceiro peso é implícito: w = 1 - u - v.
type Barycentric struct {
	U, V float64
}

// W retorna o peso implícito do primeiro vértice da face.
func (b Barycentric) W() float64 { return 1 - b.U - b.V }

// Vértices e faces do icosaedro regular. Os 12 vértices são as permutações
// cíclicas de (±1, ±t, 0) com t = razão áurea, normalizados para a esfera
// unitária no init abaixo.
var icoVertices = [12]Vec{
	{-1, goldenRatio, 0}, {1, goldenRatio, 0}, {-1, -goldenRatio, 0}, {1, -goldenRatio, 0},
	{0, -1, goldenRatio}, {0, 1, goldenRatio}, {0, -1, -goldenRatio}, {0, 1, -goldenRatio},
	{goldenRatio, 0, -1}, {goldenRatio, 0, 1}, {-goldenRatio, 0, -1}, {-goldenRatio, 0, 1},
}

var icoFaces = [NumFaces][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

var goldenRatio = (1 + math.Sqrt(5)) / 2

// faceVertices[f] são os três vértices unitários da face f, na ordem (v0, v1, v2).
var faceVertices [NumFaces][3]Vec

// faceCenters[f] é a direção unitária do centroide da face f, usada na
// seleção de face por produto escalar máximo.
var faceCenters [NumFaces]Vec

func init() {
	for i := range icoVertices {
		icoVertices[i] = icoVertices[i].Normalize()
	}
	for f, face := range icoFaces {
		v0 := icoVertices[face[0]]
		v1 := icoVertices[face[1]]
		v2 := icoVertices[face[2]]
		faceVertices[f] = [3]Vec{v0, v1, v2}
		faceCenters[f] = v0.Add(v1).Add(v2).Scale(1.0 / 3.0).Normalize()
	}
}

// FaceVertices retorna os três vértices unitários da face, na ordem
// (v0, v1, v2) usada pelas coordenadas baricêntricas.
func FaceVertices(face int32) [3]Vec {
	return faceVertices[face]
}

// FaceCenter retorna a direção unitária do centroide da face.
func FaceCenter(face int32) Vec {
	return faceCenters[face]
}

// DirectionToFace retorna a face do icosaedro cujo centroide tem o maior
// produto escalar com a direção dada.
func DirectionToFace(dir Vec) int32 {
	best := int32(0)
	bestDot := math.Inf(-1)
	for f := int32(0); f < NumFaces; f++ {
		if d := faceCenters[f].Dot(dir); d > bestDot {
			bestDot = d
			best = f
		}
	}
	return best
}

// BaryToDirection converte uma coordenada baricêntrica de uma face em uma
// direção unitária no espaço. Coordenadas com u+v > 1 representam o
// triângulo invertido da mesma célula e são refletidas na diagonal
// (u,v) -> (1-v, 1-u) antes da interpolação; excessos marginais por erro
// numérico são apenas empurrados de volta para dentro.
func BaryToDirection(face int32, b Barycentric) Vec {
	b = canonicalBary(b)
	verts := faceVertices[face]
	p := verts[0].Scale(b.W()).Add(verts[1].Scale(b.U)).Add(verts[2].Scale(b.V))
	return p.Normalize()
}

// canonicalBary resolve coordenadas fora do triângulo superior: excesso
// numérico é normalizado de volta, excesso real é refletido na diagonal.
func canonicalBary(b Barycentric) Barycentric {
	sum := b.U + b.V
	if sum <= 1 {
		return b
	}
	if sum <= 1+baryEpsilon*8 {
		s := (1 - baryEpsilon) / sum
		return Barycentric{b.U * s, b.V * s}
	}
	return Barycentric{1 - b.V, 1 - b.U}
}

// DirectionToBary projeta uma direção no plano da face e resolve as
// coordenadas baricêntricas pelo método de Cramer sobre produtos escalares.
// Direções degeneradas (nulas ou paralelas ao plano) caem no centroide.
func DirectionToBary(face int32, dir Vec) Barycentric {
	verts := faceVertices[face]
	v0, v1, v2 := verts[0], verts[1], verts[2]

	normal := v1.Sub(v0).Cross(v2.Sub(v0))
	denomRay := dir.Dot(normal)
	if math.Abs(denomRay) < 1e-12 {
		return Barycentric{1.0 / 3.0, 1.0 / 3.0}
	}
	// Interseção do raio (origem no centro) com o plano da face.
	t := v0.Dot(normal) / denomRay
	p := dir.Scale(t)

	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	d := p.Sub(v0)
	d00 := e1.Dot(e1)
	d01 := e1.Dot(e2)
	d11 := e2.Dot(e2)
	d20 := d.Dot(e1)
	d21 := d.Dot(e2)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < 1e-12 {
		return Barycentric{1.0 / 3.0, 1.0 / 3.0}
	}
	u := (d11*d20 - d01*d21) / denom
	v := (d00*d21 - d01*d20) / denom
	return Barycentric{u, v}
}

// WorldDirectionToTileIndex retorna a face e a célula (x, y) que contém a
// direção dada na profundidade pedida. A coordenada baricêntrica é
// quantizada por tilesPerEdge com clamp nas bordas, então o resultado é
// sempre um índice válido de registro.
func WorldDirectionToTileIndex(depth int32, dir Vec) (face, x, y int32) {
	face = DirectionToFace(dir)
	b := DirectionToBary(face, dir)

	if b.U < 0 {
		b.U = 0
	}
	if b.V < 0 {
		b.V = 0
	}
	if sum := b.U + b.V; sum > 1 {
		s := (1 - baryEpsilon) / sum
		b.U *= s
		b.V *= s
	}

	n := int32(1) << depth
	x = int32(b.U * float64(n))
	y = int32(b.V * float64(n))
	if x > n-1 {
		x = n - 1
	}
	if y > n-1 {
		y = n - 1
	}
	return face, x, y
}
