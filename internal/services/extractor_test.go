package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/marcboeker/go-duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/pg2duck/internal/duck"
	"github.com/vvka-141/pg2duck/internal/files/filesystem"
	"github.com/vvka-141/pg2duck/internal/logging"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

const stagingPattern = `"extraction_[0-9a-f]{32}"`

var (
	eventsTable = pg2duck.TableRef{Schema: "public", Name: "events"}
	ordersTable = pg2duck.TableRef{Schema: "sales", Name: "orders"}
)

type extractFixture struct {
	svc      *ExtractionService
	fsys     *filesystem.MemoryFileSystem
	logger   *logging.RecordingLogger
	creds    *countingProvider
	catalog  *fakeCatalog
	mock     sqlmock.Sqlmock
	sessions int
}

func newExtractFixture(t *testing.T, cat *fakeCatalog) *extractFixture {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	f := &extractFixture{
		fsys:    filesystem.NewMemoryFileSystem("/work"),
		logger:  logging.NewRecordingLogger(),
		creds:   &countingProvider{password: "s3cret"},
		catalog: cat,
		mock:    mock,
	}
	f.svc = NewExtractionService(f.fsys, f.creds, f.logger)
	f.svc.now = stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2500*time.Millisecond)
	f.svc.openCatalog = func(ctx context.Context, _ *pg2duck.ConnectionConfig) (SourceCatalog, func(), error) {
		return cat, func() {}, nil
	}
	f.svc.openSession = func(ctx context.Context, path string) (*duck.Session, error) {
		f.sessions++
		return duck.NewSession(ctx, mockDB, path)
	}
	return f
}

func (f *extractFixture) expectAttach() {
	ok := sqlmock.NewResult(0, 0)
	f.mock.ExpectExec(`^INSTALL postgres$`).WillReturnResult(ok)
	f.mock.ExpectExec(`^LOAD postgres$`).WillReturnResult(ok)
	f.mock.ExpectExec(`^` + regexp.QuoteMeta(`CREATE OR REPLACE TEMPORARY SECRET "pg2duck_source" (TYPE postgres, HOST 'db.internal', PORT 5432, DATABASE 'shop', USER 'etl', PASSWORD 's3cret')`) + `$`).
		WillReturnResult(ok)
	f.mock.ExpectExec(`^` + regexp.QuoteMeta(`ATTACH 'sslmode=prefer' AS "pg2duck_source" (TYPE postgres, SECRET "pg2duck_source", READ_ONLY)`) + `$`).
		WillReturnResult(ok)
}

func (f *extractFixture) expectStaging(ref pg2duck.TableRef, selectList string) *sqlmock.ExpectedExec {
	return f.mock.ExpectExec(`^CREATE TEMP TABLE ` + stagingPattern + ` AS SELECT ` + regexp.QuoteMeta(selectList) +
		` FROM ` + regexp.QuoteMeta(`"pg2duck_source"."`+ref.Schema+`"."`+ref.Name+`"`) + `$`)
}

func (f *extractFixture) expectCopy(outputList, dir string) *sqlmock.ExpectedExec {
	return f.mock.ExpectExec(`^COPY \(SELECT ` + regexp.QuoteMeta(outputList) + ` FROM ` + stagingPattern + `\) TO ` +
		regexp.QuoteMeta(`'`+dir+`' (FORMAT PARQUET, PER_THREAD_OUTPUT TRUE, OVERWRITE_OR_IGNORE 1)`) + `$`)
}

func (f *extractFixture) expectDrop() {
	f.mock.ExpectExec(`^DROP TABLE IF EXISTS ` + stagingPattern + `$`).WillReturnResult(sqlmock.NewResult(0, 0))
}

func testExtractionConfig() pg2duck.ExtractionConfig {
	return pg2duck.ExtractionConfig{
		OutputDir:    "/work/out",
		CatalogQuery: "SELECT table_schema, table_name FROM information_schema.tables",
		Exclude:      []string{"interval"},
		ResultFile:   "/work/DuckDB/exec_time.txt",
		Connection: &pg2duck.ConnectionConfig{
			Host:     "db.internal",
			Port:     5432,
			Database: "shop",
			Username: "etl",
			SSLMode:  "prefer",
		},
	}
}

func eventsCatalog() *fakeCatalog {
	return &fakeCatalog{
		tables: []pg2duck.TableRef{eventsTable},
		columns: map[pg2duck.TableRef][]pg2duck.Column{
			eventsTable: {
				{Name: "id", DataType: "integer"},
				{Name: "name", DataType: "character varying"},
				{Name: "ts", DataType: "interval"},
			},
		},
	}
}

func TestExtract_ExcludedIntervalColumn(t *testing.T) {
	f := newExtractFixture(t, eventsCatalog())
	f.expectAttach()
	f.expectStaging(eventsTable, `"id", "name"`).WillReturnResult(sqlmock.NewResult(0, 3))
	f.expectCopy(`"id", "name"`, "/work/out/public.events").WillReturnResult(sqlmock.NewResult(0, 3))
	f.expectDrop()
	f.mock.ExpectClose()

	report, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	require.Len(t, report.Tables, 1)
	assert.Equal(t, pg2duck.TableDone, report.Tables[0].Status)
	assert.Equal(t, 2, report.Tables[0].Columns)
	assert.Equal(t, 2500*time.Millisecond, report.Duration)

	result, err := f.fsys.ReadFile("/work/DuckDB/exec_time.txt")
	require.NoError(t, err)
	assert.Equal(t, "2.5\n", string(result))

	assert.Equal(t, []string{testExtractionConfig().CatalogQuery}, f.catalog.queries)
	assert.Equal(t, 1, f.creds.Calls())
	assert.Equal(t, 1, f.sessions)
	infos := f.logger.Entries("info")
	require.Len(t, infos, 1)
	assert.Contains(t, infos[0], "Extracted 1 tables (0 skipped)")
}

func TestExtract_CastColumn(t *testing.T) {
	cat := &fakeCatalog{
		tables: []pg2duck.TableRef{ordersTable},
		columns: map[pg2duck.TableRef][]pg2duck.Column{
			ordersTable: {
				{Name: "id", DataType: "integer"},
				{Name: "placed_at", DataType: "timestamp with time zone"},
			},
		},
	}
	f := newExtractFixture(t, cat)
	f.expectAttach()
	f.expectStaging(ordersTable, `"id", CAST("placed_at" AS VARCHAR) AS "placed_at"`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectCopy(`"id", "placed_at"`, "/work/out/sales.orders").WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectDrop()
	f.mock.ExpectClose()

	config := testExtractionConfig()
	config.CastToString = []string{"timestamp with time zone"}
	report, err := f.svc.Extract(context.Background(), config)
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Equal(t, pg2duck.TableDone, report.Tables[0].Status)
}

func TestExtract_RecoverableErrorSkipsTable(t *testing.T) {
	cat := eventsCatalog()
	cat.tables = append(cat.tables, ordersTable)
	cat.columns[ordersTable] = []pg2duck.Column{{Name: "id", DataType: "integer"}}

	f := newExtractFixture(t, cat)
	conversion := &duckdb.Error{Type: duckdb.ErrorTypeConversion, Msg: "Conversion Error: timestamp field value out of range"}
	f.expectAttach()
	f.expectStaging(eventsTable, `"id", "name"`).WillReturnResult(sqlmock.NewResult(0, 3))
	f.expectCopy(`"id", "name"`, "/work/out/public.events").WillReturnError(conversion)
	f.expectDrop()
	f.expectStaging(ordersTable, `"id"`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectCopy(`"id"`, "/work/out/sales.orders").WillReturnResult(sqlmock.NewResult(0, 1))
	f.expectDrop()
	f.mock.ExpectClose()

	report, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	require.Len(t, report.Tables, 2)
	assert.Equal(t, pg2duck.TableSkipped, report.Tables[0].Status)
	assert.True(t, errors.Is(report.Tables[0].Err, conversion))
	assert.Equal(t, pg2duck.TableDone, report.Tables[1].Status)

	assert.False(t, f.fsys.Exists("/work/out/public.events"), "partial output must be removed")
	assert.True(t, f.fsys.Exists("/work/out/sales.orders"))

	warnings := f.logger.Entries("warn")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "public.events")
	assert.Contains(t, warnings[0], "timestamp field value out of range")
	assert.Contains(t, f.logger.Entries("info")[0], "Extracted 1 tables (1 skipped)")
}

func TestExtract_NonRecoverableErrorAborts(t *testing.T) {
	cat := eventsCatalog()
	cat.tables = append(cat.tables, ordersTable)

	f := newExtractFixture(t, cat)
	catalogErr := &duckdb.Error{Type: duckdb.ErrorTypeCatalog, Msg: "Catalog Error: Table with name events does not exist"}
	f.expectAttach()
	f.expectStaging(eventsTable, `"id", "name"`).WillReturnError(catalogErr)
	f.expectDrop()
	f.mock.ExpectClose()

	report, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, catalogErr))
	assert.Equal(t, pg2duck.ExitExecutionFailed, pg2duck.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "public.events")
	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.False(t, f.fsys.Exists("/work/DuckDB/exec_time.txt"))
}

func TestExtract_AllColumnsExcluded(t *testing.T) {
	cat := &fakeCatalog{
		tables: []pg2duck.TableRef{eventsTable},
		columns: map[pg2duck.TableRef][]pg2duck.Column{
			eventsTable: {{Name: "ts", DataType: "interval"}},
		},
	}
	f := newExtractFixture(t, cat)
	f.expectAttach()
	f.mock.ExpectClose()

	report, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Equal(t, pg2duck.TableSkipped, report.Tables[0].Status)
	assert.False(t, f.fsys.Exists("/work/out/public.events"))
	require.Len(t, f.logger.Entries("warn"), 1)
	assert.Contains(t, f.logger.Entries("warn")[0], "public.events")
}

func TestExtract_NonEmptyOutputFailsBeforeConnecting(t *testing.T) {
	f := newExtractFixture(t, eventsCatalog())
	f.fsys.AddFile("/work/out/public.events/data_0.parquet", "PAR1")
	f.svc.openCatalog = func(context.Context, *pg2duck.ConnectionConfig) (SourceCatalog, func(), error) {
		t.Fatal("catalog must not be opened")
		return nil, nil, nil
	}

	_, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, pg2duck.ErrOutputNotEmpty))
	assert.Equal(t, pg2duck.ExitOutputDirError, pg2duck.ExitCodeForError(err))
	assert.Equal(t, 0, f.creds.Calls())
	assert.Equal(t, 0, f.sessions)
}

func TestExtract_OutputIsFile(t *testing.T) {
	f := newExtractFixture(t, eventsCatalog())
	f.fsys.AddFile("/work/out", "not a directory")

	_, err := f.svc.Extract(context.Background(), testExtractionConfig())
	assert.True(t, errors.Is(err, pg2duck.ErrOutputNotDirectory))
	assert.Equal(t, 0, f.creds.Calls())
}

func TestExtract_CreatesMissingOutputDirectory(t *testing.T) {
	f := newExtractFixture(t, &fakeCatalog{})
	f.expectAttach()
	f.mock.ExpectClose()

	report, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.NoError(t, err)
	assert.Empty(t, report.Tables)
	assert.True(t, f.fsys.Exists("/work/out"))
}

func TestExtract_CredentialsUnavailable(t *testing.T) {
	f := newExtractFixture(t, eventsCatalog())
	f.creds.err = pg2duck.ErrCredentialsUnavailable

	_, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.Error(t, err)
	assert.Equal(t, pg2duck.ExitConnectionError, pg2duck.ExitCodeForError(err))
	assert.Equal(t, 0, f.sessions)
}

func TestExtract_CatalogQueryFailure(t *testing.T) {
	cat := &fakeCatalog{tablesErr: pg2duck.ErrCatalogQueryFailed}
	f := newExtractFixture(t, cat)

	_, err := f.svc.Extract(context.Background(), testExtractionConfig())
	assert.True(t, errors.Is(err, pg2duck.ErrCatalogQueryFailed))
	assert.Equal(t, 0, f.sessions)
}

func TestExtract_InvalidConfig(t *testing.T) {
	f := newExtractFixture(t, eventsCatalog())
	config := testExtractionConfig()
	config.CatalogQuery = "  "

	_, err := f.svc.Extract(context.Background(), config)
	assert.True(t, errors.Is(err, pg2duck.ErrInvalidConfig))
	assert.False(t, f.fsys.Exists("/work/out"))
}

func TestExtract_Cancelled(t *testing.T) {
	f := newExtractFixture(t, eventsCatalog())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.svc.Extract(ctx, testExtractionConfig())
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, f.fsys.Exists("/work/out/public.events"))
}

func TestNewExtractionService_PanicsOnNil(t *testing.T) {
	fsys := filesystem.NewMemoryFileSystem("/")
	creds := &countingProvider{}
	logger := logging.NewNullLogger()

	assert.Panics(t, func() { NewExtractionService(nil, creds, logger) })
	assert.Panics(t, func() { NewExtractionService(fsys, nil, logger) })
	assert.Panics(t, func() { NewExtractionService(fsys, creds, nil) })
}

func TestExtract_DurationExcludesCredentialPrompt(t *testing.T) {
	f := newExtractFixture(t, eventsCatalog())
	clock := &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	f.svc.credentials = &slowProvider{clock: clock, delay: 30 * time.Second, password: "s3cret"}
	f.svc.now = clock.Now

	f.expectAttach()
	f.expectStaging(eventsTable, `"id", "name"`).WillReturnResult(sqlmock.NewResult(0, 3))
	f.expectCopy(`"id", "name"`, "/work/out/public.events").WillReturnResult(sqlmock.NewResult(0, 3))
	f.expectDrop()
	f.mock.ExpectClose()

	report, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	assert.Equal(t, time.Duration(0), report.Duration)
	result, err := f.fsys.ReadFile("/work/DuckDB/exec_time.txt")
	require.NoError(t, err)
	assert.Equal(t, "0\n", string(result))
}

func TestExtract_DottedTableNameSkipped(t *testing.T) {
	dotted := pg2duck.TableRef{Schema: "sales", Name: "orders.2024"}
	cat := eventsCatalog()
	cat.tables = []pg2duck.TableRef{dotted, eventsTable}
	cat.columns[dotted] = []pg2duck.Column{{Name: "id", DataType: "integer"}}

	f := newExtractFixture(t, cat)
	f.expectAttach()
	f.expectStaging(eventsTable, `"id", "name"`).WillReturnResult(sqlmock.NewResult(0, 3))
	f.expectCopy(`"id", "name"`, "/work/out/public.events").WillReturnResult(sqlmock.NewResult(0, 3))
	f.expectDrop()
	f.mock.ExpectClose()

	report, err := f.svc.Extract(context.Background(), testExtractionConfig())
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	require.Len(t, report.Tables, 2)
	assert.Equal(t, pg2duck.TableSkipped, report.Tables[0].Status)
	assert.ErrorIs(t, report.Tables[0].Err, pg2duck.ErrInvalidTableDirectory)
	assert.Equal(t, pg2duck.TableDone, report.Tables[1].Status)
	assert.False(t, f.fsys.Exists("/work/out/sales.orders.2024"))

	warnings := f.logger.Entries("warn")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "sales.orders.2024")
}
