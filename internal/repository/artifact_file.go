package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"StockX/internal/domain/models"
	"StockX/pkg/logger"
)

const artifactExt = ".model"

// FileArtifactStore keeps one artifact per symbol under a directory.
// Writes go to a temp file that is renamed into place, so a concurrent
// reader sees either the old or the new model.
type FileArtifactStore struct {
	dir    string
	logger *logger.Logger
}

func NewFileArtifactStore(dir string, lgr *logger.Logger) (*FileArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileArtifactStore{dir: dir, logger: lgr}, nil
}

func (s *FileArtifactStore) path(symbol string) (string, error) {
	if symbol == "" || strings.ContainsAny(symbol, `/\`) || strings.Contains(symbol, "..") {
		return "", models.InvalidArgument(fmt.Sprintf("invalid symbol %q", symbol))
	}
	return filepath.Join(s.dir, symbol+artifactExt), nil
}

func (s *FileArtifactStore) Put(_ context.Context, m *models.TrainedModel) error {
	p, err := s.path(m.Symbol)
	if err != nil {
		return err
	}
	data, err := EncodeArtifact(m)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+m.Symbol+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}

	s.logger.Info("artifact saved",
		logger.String("symbol", m.Symbol),
		logger.String("path", p),
		logger.Int("bytes", len(data)),
	)
	return nil
}

func (s *FileArtifactStore) Get(_ context.Context, symbol string) (*models.TrainedModel, error) {
	p, err := s.path(symbol)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ModelNotFound(symbol)
		}
		return nil, models.CorruptArtifact(symbol, err)
	}
	return DecodeArtifact(symbol, data)
}

func (s *FileArtifactStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, artifactExt) {
			continue
		}
		out = append(out, strings.TrimSuffix(name, artifactExt))
	}
	sort.Strings(out)
	return out, nil
}
