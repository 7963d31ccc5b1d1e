package icosphere

// A grade de vértices de um tile é triangular: índices locais (i, j) com
// i+j <= resolution-1. Para que tiles vizinhos produzam bits idênticos nas
// arestas compartilhadas, cada vértice local é primeiro convertido para um
// par inteiro global na grade da face inteira (N = tilesPerEdge *
// (resolution-1) segmentos por aresta) e só então dividido, uma única vez,
// em float64. Dois tiles que tocam a mesma aresta chegam aos mesmos
// inteiros globais e portanto aos mesmos floats.

// TileVertexCount retorna o número de vértices da grade triangular de um
// tile: resolution*(resolution+1)/2.
func TileVertexCount(resolution int32) int32 {
	return resolution * (resolution + 1) / 2
}

// TileTriangleCount retorna o número de triângulos da grade:
// (resolution-1)².
func TileTriangleCount(resolution int32) int32 {
	return (resolution - 1) * (resolution - 1)
}

// LatticeIndex converte índices locais (i, j) no índice linear do vetor de
// vértices, com i variando no laço externo. Assume i+j <= resolution-1.
func LatticeIndex(resolution, i, j int32) int32 {
	return i*resolution - i*(i-1)/2 + j
}

// BaryLocalToGlobal converte o vértice local (i, j) de um tile na
// coordenada baricêntrica global da face. Células invertidas são
// refletidas na diagonal ainda em aritmética inteira (gu' = N-gv,
// gv' = N-gu), preservando a identidade bit a bit das arestas.
func BaryLocalToGlobal(resolution int32, id TileID, i, j int32) Barycentric {
	n := id.TilesPerEdge()
	segs := resolution - 1
	total := n * segs

	gu := id.X*segs + i
	gv := id.Y*segs + j
	if !id.Upward() {
		gu, gv = total-gv, total-gu
	}
	inv := 1 / float64(total)
	return Barycentric{U: float64(gu) * inv, V: float64(gv) * inv}
}

// TileVertexBarys enumera as coordenadas baricêntricas globais de todos os
// vértices do tile, na ordem de LatticeIndex.
func TileVertexBarys(resolution int32, id TileID) []Barycentric {
	out := make([]Barycentric, 0, TileVertexCount(resolution))
	for i := int32(0); i < resolution; i++ {
		for j := int32(0); i+j <= resolution-1; j++ {
			out = append(out, BaryLocalToGlobal(resolution, id, i, j))
		}
	}
	return out
}
