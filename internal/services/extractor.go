package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vvka-141/pg2duck/internal/catalog"
	"github.com/vvka-141/pg2duck/internal/db"
	"github.com/vvka-141/pg2duck/internal/duck"
	"github.com/vvka-141/pg2duck/internal/files/filesystem"
	"github.com/vvka-141/pg2duck/internal/files/layout"
	"github.com/vvka-141/pg2duck/internal/policy"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// sourceAlias is the name the source database is attached under in the
// extraction session.
const sourceAlias = "pg2duck_source"

// SourceCatalog is the read-only view of the source database the extractor
// works from.
type SourceCatalog interface {
	ListTables(ctx context.Context, query string) ([]pg2duck.TableRef, error)
	ListColumns(ctx context.Context, ref pg2duck.TableRef) ([]pg2duck.Column, error)
}

type catalogOpenFunc func(ctx context.Context, cfg *pg2duck.ConnectionConfig) (SourceCatalog, func(), error)

type sessionOpenFunc func(ctx context.Context, path string) (*duck.Session, error)

var _ pg2duck.Extractor = (*ExtractionService)(nil)

// ExtractionService implements the Extractor interface.
// Thread-Safety: NOT safe for concurrent Extract() calls on the same instance.
type ExtractionService struct {
	fsys        filesystem.FileSystem
	credentials pg2duck.CredentialProvider
	logger      pg2duck.Logger
	openCatalog catalogOpenFunc
	openSession sessionOpenFunc
	now         func() time.Time
}

// NewExtractionService creates an ExtractionService. The credential provider
// is asked for the source password once per run; the same secret is used by
// the catalog connection and by the engine's PostgreSQL scanner.
//
// Panics on nil dependencies.
func NewExtractionService(
	fsys filesystem.FileSystem,
	credentials pg2duck.CredentialProvider,
	logger pg2duck.Logger,
) *ExtractionService {
	if fsys == nil {
		panic("fsys cannot be nil")
	}
	if credentials == nil {
		panic("credentials cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	svc := &ExtractionService{
		fsys:        fsys,
		credentials: credentials,
		logger:      logger,
		openSession: duck.Open,
		now:         time.Now,
	}
	svc.openCatalog = svc.defaultOpenCatalog
	return svc
}

func (s *ExtractionService) defaultOpenCatalog(ctx context.Context, cfg *pg2duck.ConnectionConfig) (SourceCatalog, func(), error) {
	pool, err := db.NewConnector(cfg, s.credentials, s.logger).Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := catalog.Open(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := snapshot.Close(context.Background()); err != nil {
			s.logger.Verbose("Failed to close catalog transaction: %v", err)
		}
		pool.Close()
	}
	return snapshot, cleanup, nil
}

// Extract runs one extraction. The output directory is checked before any
// credential is requested or connection opened. The recorded duration starts
// once credentials are in hand.
func (s *ExtractionService) Extract(ctx context.Context, config pg2duck.ExtractionConfig) (*pg2duck.ExtractReport, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := layout.PrepareOutputDirectory(s.fsys, config.OutputDir); err != nil {
		return nil, err
	}

	password, _, err := s.credentials.Password(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain credentials from %s: %w", s.credentials, err)
	}
	start := s.now()

	source, closeCatalog, err := s.openCatalog(ctx, config.Connection)
	if err != nil {
		return nil, err
	}
	defer closeCatalog()

	tables, err := source.ListTables(ctx, config.CatalogQuery)
	if err != nil {
		return nil, err
	}
	s.logger.Verbose("Catalog query returned %d tables", len(tables))

	session, err := s.openSession(ctx, duck.InMemory)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := session.LoadExtension(ctx, duck.PostgresExtension); err != nil {
		return nil, err
	}
	if err := session.AttachPostgres(ctx, sourceAlias, config.Connection, password); err != nil {
		return nil, fmt.Errorf("%w: %w", pg2duck.ErrConnectionFailed, err)
	}

	tp := policy.New(config.CastToString, config.Exclude)
	report := &pg2duck.ExtractReport{}
	for _, ref := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, err := s.extractTable(ctx, session, source, tp, ref, config.OutputDir)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, outcome)
	}

	report.Duration = s.now().Sub(start)
	seconds := report.Duration.Seconds()
	s.logger.Info("Extracted %d tables (%d skipped), total time %.3f seconds",
		pg2duck.CountStatus(report.Tables, pg2duck.TableDone),
		pg2duck.CountStatus(report.Tables, pg2duck.TableSkipped),
		seconds)

	if config.ResultFile != "" {
		if err := layout.WriteResultFile(s.fsys, config.ResultFile, strconv.FormatFloat(seconds, 'f', -1, 64)); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// extractTable copies one table. A returned error aborts the run; tables
// failing with a recoverable engine error come back as skipped outcomes.
func (s *ExtractionService) extractTable(
	ctx context.Context,
	session *duck.Session,
	source SourceCatalog,
	tp policy.TypePolicy,
	ref pg2duck.TableRef,
	outputDir string,
) (pg2duck.TableOutcome, error) {
	outcome := pg2duck.TableOutcome{Table: ref, Status: pg2duck.TableSkipped}

	if _, err := layout.ParseTableDirName(layout.DirName(ref)); err != nil {
		s.logger.Warn("Table %s cannot be written as a table directory, skipping: %v", ref, err)
		outcome.Err = err
		return outcome, nil
	}

	columns, err := source.ListColumns(ctx, ref)
	if err != nil {
		return outcome, err
	}
	columns = tp.Apply(columns)
	proj := policy.Project(columns)
	if proj.Empty() {
		s.logger.Warn("Table %s has no columns left after applying the type policy, skipping", ref)
		return outcome, nil
	}

	counts := policy.Summary(columns)
	s.logger.Verbose("Table %s: %d included, %d cast to string, %d excluded", ref,
		counts[pg2duck.ActionInclude], counts[pg2duck.ActionCastToString], counts[pg2duck.ActionExclude])

	dir := layout.TablePath(outputDir, ref)
	if err := s.fsys.MkdirAll(dir); err != nil {
		return outcome, fmt.Errorf("failed to create table directory %s: %w", dir, err)
	}
	staging := duck.RelationName("extraction")

	s.logger.Verbose("Writing table %s to %s", ref, dir)
	err = s.copyTable(ctx, session, staging, proj, ref, dir)
	if dropErr := session.DropTable(ctx, staging); dropErr != nil {
		if err == nil {
			return outcome, fmt.Errorf("failed to drop staging table for %s: %w", ref, dropErr)
		}
		s.logger.Verbose("Failed to drop staging table for %s: %v", ref, dropErr)
	}

	if err != nil {
		if !duck.IsExtractRecoverable(err) {
			return outcome, fmt.Errorf("%w: failed to extract table %s: %w", pg2duck.ErrEngineFailed, ref, err)
		}
		s.logger.Warn("Table %s could not be extracted: %v", ref, err)
		if rmErr := s.fsys.RemoveAll(dir); rmErr != nil {
			return outcome, fmt.Errorf("failed to remove partial output %s: %w", dir, rmErr)
		}
		outcome.Err = err
		return outcome, nil
	}

	s.logger.Verbose("Writing table %s [OK]", ref)
	outcome.Status = pg2duck.TableDone
	outcome.Columns = len(proj.Output)
	return outcome, nil
}

func (s *ExtractionService) copyTable(
	ctx context.Context,
	session *duck.Session,
	staging string,
	proj policy.Projection,
	ref pg2duck.TableRef,
	dir string,
) error {
	from := duck.QuoteIdent(sourceAlias) + "." + duck.QualifiedName(ref)
	if err := session.CreateStagingTable(ctx, staging, proj.Staging, from); err != nil {
		return err
	}
	return session.CopyToParquet(ctx, proj.Output, staging, dir)
}
