package vectorstore

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/corekb/corekb/pkg/types"
)

// Artifact names inside an index directory.
const (
	vectorsFile  = "vectors.bin"
	chunksFile   = "chunks.db"
	metadataFile = "metadata.json"
	manifestFile = "manifest.json"
)

// manifest records what the artifacts should contain, checked on load.
type manifest struct {
	Dimension  int    `json:"dimension"`
	ChunkCount int    `json:"num_chunks"`
	IndexKind  string `json:"index_kind"`
}

// Save persists the store as four artifacts under dir.
func (s *Store) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index dir: %w", err)
	}

	if err := s.saveVectors(filepath.Join(dir, vectorsFile)); err != nil {
		return err
	}
	if err := s.saveChunks(filepath.Join(dir, chunksFile)); err != nil {
		return err
	}
	if err := s.saveMetadata(filepath.Join(dir, metadataFile)); err != nil {
		return err
	}
	return s.saveManifest(filepath.Join(dir, manifestFile))
}

// Load replaces the store contents with the artifacts under dir. On any
// failure the store is left exactly as it was.
func (s *Store) Load(dir string) error {
	man, err := loadManifest(filepath.Join(dir, manifestFile))
	if err != nil {
		return err
	}
	if man.IndexKind != IndexKind {
		return fmt.Errorf("unsupported index kind %q, want %q", man.IndexKind, IndexKind)
	}

	vectors, err := loadVectors(filepath.Join(dir, vectorsFile), man.Dimension, man.ChunkCount)
	if err != nil {
		return err
	}
	chunks, err := loadChunks(filepath.Join(dir, chunksFile))
	if err != nil {
		return err
	}
	metadata, err := loadMetadata(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}

	if len(chunks) != man.ChunkCount || len(metadata) != man.ChunkCount {
		return fmt.Errorf("artifact length mismatch: manifest=%d chunks=%d metadata=%d",
			man.ChunkCount, len(chunks), len(metadata))
	}

	// All artifacts loaded and consistent: apply in one step.
	s.dimension = man.Dimension
	s.vectors = vectors
	s.chunks = chunks
	s.metadata = metadata

	// Chunks rejoin their metadata by position.
	for i := range s.chunks {
		s.chunks[i].Metadata = s.metadata[i]
	}
	return nil
}

func (s *Store) saveVectors(path string) error {
	buf := make([]byte, 0, len(s.vectors)*s.dimension*4)
	scratch := make([]byte, 4)
	for _, v := range s.vectors {
		for _, f := range v {
			binary.LittleEndian.PutUint32(scratch, math.Float32bits(f))
			buf = append(buf, scratch...)
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write vectors: %w", err)
	}
	return nil
}

func loadVectors(path string, dimension, count int) ([][]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}
	want := dimension * count * 4
	if len(data) != want {
		return nil, fmt.Errorf("vector file is %d bytes, want %d", len(data), want)
	}

	vectors := make([][]float32, count)
	offset := 0
	for i := range vectors {
		row := make([]float32, dimension)
		for j := range row {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
			offset += 4
		}
		vectors[i] = row
	}
	return vectors, nil
}

func (s *Store) saveChunks(path string) error {
	// Rewrite from scratch so the artifact always mirrors the in-memory
	// list exactly.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace chunk store: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open chunk store: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`CREATE TABLE chunks (
		position INTEGER PRIMARY KEY,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create chunk table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin chunk write: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO chunks (position, chunk_index, content) VALUES (?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, c := range s.chunks {
		if _, err := stmt.Exec(i, c.ChunkIndex, c.Content); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk write: %w", err)
	}
	return nil
}

func loadChunks(path string) ([]types.Chunk, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("chunk store missing: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk store: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT chunk_index, content FROM chunks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk store: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chunks []types.Chunk
	for rows.Next() {
		var c types.Chunk
		if err := rows.Scan(&c.ChunkIndex, &c.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *Store) saveMetadata(path string) error {
	data, err := json.MarshalIndent(s.metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func loadMetadata(path string) ([]types.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var metadata []types.Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return metadata, nil
}

func (s *Store) saveManifest(path string) error {
	man := manifest{
		Dimension:  s.dimension,
		ChunkCount: len(s.chunks),
		IndexKind:  IndexKind,
	}
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if man.Dimension <= 0 || man.ChunkCount < 0 {
		return nil, fmt.Errorf("manifest is corrupt: dimension=%d count=%d", man.Dimension, man.ChunkCount)
	}
	return &man, nil
}
