package backend

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"findash/internal/config"
	"findash/internal/export"
	"findash/internal/source"
	"findash/internal/source/google"
	"findash/internal/source/memory"
	"findash/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:                     backendType,
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		DataDirectory:            appConfig.DataDir,
	}, nil
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// A seed file on top of the migrated dataset is upserted on every start.
	seedPath := filepath.Join(dataDir(config), source.SeedFile)
	seed, err := source.ReadSeedFile(seedPath)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if len(seed) > 0 {
		if err := repo.ImportTransactions(ctx, seed); err != nil {
			repo.Close()
			return nil, fmt.Errorf("import seed file: %w", err)
		}
		f.logger.Info("Imported seed transactions", "path", seedPath, "count", len(seed))
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &BackendResult{
		Store: &sheetsStore{Client: cli, log: memory.New(nil, nil)},
		Sheet: cli,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dir := dataDir(config)
	store, err := memory.NewFromFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dir)

	return &BackendResult{
		Store: store,
	}, nil
}

func dataDir(config Config) string {
	if config.DataDirectory == "" {
		return "data"
	}
	return config.DataDirectory
}

// sheetsStore reads from the spreadsheet and keeps the export log in memory;
// the sheet itself has no place for audit rows.
type sheetsStore struct {
	*google.Client
	log *memory.Store
}

func (s *sheetsStore) RecordExport(ctx context.Context, rec export.Record) error {
	return s.log.RecordExport(ctx, rec)
}

func (s *sheetsStore) ListExports(ctx context.Context, limit int) ([]export.Record, error) {
	return s.log.ListExports(ctx, limit)
}

var _ source.Store = (*sheetsStore)(nil)
