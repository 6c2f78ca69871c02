package manifest

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	BasicFileName = "llms.txt"
	FullFileName  = "llms-full.txt"
)

// Service writes the rendered manifests to the static directory so they
// can be served as plain files.
type Service struct {
	builder   *Builder
	staticDir string
	logger    *zap.Logger
}

func NewService(builder *Builder, staticDir string, logger *zap.Logger) *Service {
	return &Service{builder: builder, staticDir: staticDir, logger: logger.Named("manifest")}
}

// Preview renders a manifest without touching the filesystem.
func (s *Service) Preview(detail Detail) (string, error) {
	return s.builder.Build(detail)
}

// FilePath returns where a manifest file lives on disk.
func (s *Service) FilePath(detail Detail) string {
	name := BasicFileName
	if detail == DetailFull {
		name = FullFileName
	}
	return filepath.Join(s.staticDir, name)
}

// Regenerate rewrites both manifest files. A failed write is reported but
// the other file is still attempted.
func (s *Service) Regenerate() error {
	var firstErr error
	for _, detail := range []Detail{DetailBasic, DetailFull} {
		if err := s.writeOne(detail); err != nil {
			s.logger.Warn("manifest write failed",
				zap.String("file", s.FilePath(detail)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr == nil {
		s.logger.Info("manifests regenerated", zap.String("dir", s.staticDir))
	}
	return firstErr
}

func (s *Service) writeOne(detail Detail) error {
	content, err := s.builder.Build(detail)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.staticDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.FilePath(detail), []byte(content), 0o644)
}
