package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vvka-141/pg2duck/internal/duck"
	"github.com/vvka-141/pg2duck/internal/files/filesystem"
	"github.com/vvka-141/pg2duck/internal/files/layout"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

var _ pg2duck.Loader = (*LoadService)(nil)

// LoadService implements the Loader interface.
type LoadService struct {
	fsys        filesystem.FileSystem
	logger      pg2duck.Logger
	openSession sessionOpenFunc
}

// NewLoadService creates a LoadService. Panics on nil dependencies.
func NewLoadService(fsys filesystem.FileSystem, logger pg2duck.Logger) *LoadService {
	if fsys == nil {
		panic("fsys cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LoadService{fsys: fsys, logger: logger, openSession: duck.Open}
}

// Load replaces one table per <schema>.<table> directory under the input
// root. Directory names are all validated before the database is opened.
func (s *LoadService) Load(ctx context.Context, config pg2duck.LoadConfig) (*pg2duck.LoadReport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dirs, err := layout.ScanTableDirectories(s.fsys, config.InputDir)
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("Found %d table directories in %s", len(dirs), config.InputDir)

	if parent := filepath.Dir(config.DatabasePath); parent != "." {
		if err := s.fsys.MkdirAll(parent); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", parent, err)
		}
	}

	session, err := s.openSession(ctx, config.DatabasePath)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	report := &pg2duck.LoadReport{}
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, err := s.loadTable(ctx, session, dir)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, outcome)
	}

	s.logger.Info("Loaded %d tables (%d skipped) into %s",
		pg2duck.CountStatus(report.Tables, pg2duck.TableDone),
		pg2duck.CountStatus(report.Tables, pg2duck.TableSkipped),
		session.Path())
	return report, nil
}

func (s *LoadService) loadTable(ctx context.Context, session *duck.Session, dir layout.TableDir) (pg2duck.TableOutcome, error) {
	outcome := pg2duck.TableOutcome{Table: dir.Table, Status: pg2duck.TableSkipped}
	view := duck.RelationName("verify")

	s.logger.Verbose("Loading table %s from %s", dir.Table, dir.Path)
	err := s.replaceFromParquet(ctx, session, view, dir)
	if dropErr := session.DropView(ctx, view); dropErr != nil {
		if err == nil {
			return outcome, fmt.Errorf("failed to drop verification view for %s: %w", dir.Table, dropErr)
		}
		s.logger.Verbose("Failed to drop verification view for %s: %v", dir.Table, dropErr)
	}

	if err != nil {
		if !duck.IsLoadRecoverable(err) {
			return outcome, fmt.Errorf("%w: failed to load table %s: %w", pg2duck.ErrEngineFailed, dir.Table, err)
		}
		s.logger.Warn("Table %s could not be loaded: %v", dir.Table, err)
		outcome.Err = err
		return outcome, nil
	}

	s.logger.Verbose("Loading table %s [OK]", dir.Table)
	outcome.Status = pg2duck.TableDone
	return outcome, nil
}

func (s *LoadService) replaceFromParquet(ctx context.Context, session *duck.Session, view string, dir layout.TableDir) error {
	if err := session.CreateParquetView(ctx, view, dir.Path); err != nil {
		return err
	}
	return session.ReplaceTable(ctx, dir.Table, view)
}
