// Package elevation persiste patches de elevação assados pelo servidor em
// SQLite, para que pedidos repetidos do mesmo tile não recomputem o ruído.
package elevation

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"PlanetVision/shared/icosphere"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PatchModel representa o esquema do banco de dados para um patch
type PatchModel struct {
	ID         string `gorm:"primaryKey"` // "face_x_y_depth_res"
	Face       int32  `gorm:"index:idx_tile"`
	X          int32  `gorm:"index:idx_tile"`
	Y          int32  `gorm:"index:idx_tile"`
	Depth      int32  `gorm:"index:idx_tile"`
	Resolution int32
	Samples    []byte    // Grade de elevação serializada em GOB
	UpdatedAt  time.Time // Para controle interno do GORM
}

// WorldMetadata armazena informações globais do planeta no banco
type WorldMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

// Store guarda patches de elevação em SQLite. Os métodos são seguros para
// uso concorrente pelas goroutines de conexão.
type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

// Open abre (ou cria) o banco de dados SQLite do planeta e roda migrações.
func Open(path string, seed int64) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	// Configuramos o logger para ser silencioso em produção
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	// Migração automática das tabelas
	if err := db.AutoMigrate(&PatchModel{}, &WorldMetadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	s := &Store{db: db}

	// Salva metadados iniciais
	db.Save(&WorldMetadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})
	db.Save(&WorldMetadata{Key: "Seed", Value: fmt.Sprint(seed)})

	log.Printf("[Persistence] Banco de dados SQLite aberto: %s", path)
	return s, nil
}

func patchID(id icosphere.TileID, resolution int32) string {
	return fmt.Sprintf("%d_%d_%d_%d_%d", id.Face, id.X, id.Y, id.Depth, resolution)
}

// SavePatch salva a grade de um tile no banco de dados (upsert).
func (s *Store) SavePatch(id icosphere.TileID, resolution int32, samples []float64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(samples); err != nil {
		log.Printf("[Persistence] ERRO Crítico GOB: %v", err)
		return err
	}

	model := PatchModel{
		ID:         patchID(id, resolution),
		Face:       id.Face,
		X:          id.X,
		Y:          id.Y,
		Depth:      id.Depth,
		Resolution: resolution,
		Samples:    buf.Bytes(),
	}

	s.mu.Lock()
	err := s.db.Save(&model).Error
	s.mu.Unlock()
	if err != nil {
		log.Printf("[Persistence] ERRO ao salvar patch %s: %v", model.ID, err)
	}
	return err
}

// LoadPatch tenta carregar a grade de um tile do banco de dados. A grade
// retornada tem exatamente TileVertexCount(resolution) amostras.
func (s *Store) LoadPatch(id icosphere.TileID, resolution int32) ([]float64, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("banco de dados não inicializado")
	}

	var model PatchModel
	s.mu.Lock()
	err := s.db.First(&model, "id = ?", patchID(id, resolution)).Error
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var samples []float64
	if err := gob.NewDecoder(bytes.NewReader(model.Samples)).Decode(&samples); err != nil {
		return nil, err
	}
	if int32(len(samples)) != icosphere.TileVertexCount(resolution) {
		return nil, fmt.Errorf("patch %s corrompido: %d amostras", model.ID, len(samples))
	}
	return samples, nil
}

// Count retorna quantos patches estão persistidos.
func (s *Store) Count() (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("banco de dados não inicializado")
	}
	var n int64
	s.mu.Lock()
	err := s.db.Model(&PatchModel{}).Count(&n).Error
	s.mu.Unlock()
	return n, err
}
