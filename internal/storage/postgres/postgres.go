package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dane-04-code/Fusefun/internal/storage"
	"github.com/dane-04-code/Fusefun/internal/storage/models"
)

// gormLogger adapts zap to GORM's logger.Interface.
type gormLogger struct {
	zapLogger *zap.Logger
	logLevel  logger.LogLevel
}

func newGormLogger(zapLogger *zap.Logger) logger.Interface {
	return &gormLogger{
		zapLogger: zapLogger,
		logLevel:  logger.Warn,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	if err != nil {
		l.zapLogger.Error("trace", append(fields, zap.Error(err))...)
		return
	}

	if l.logLevel >= logger.Info {
		l.zapLogger.Info("trace", fields...)
	}
}

type postgresStorage struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStorage connects to postgres and returns a launchpad history store.
func NewStorage(dsn string, zapLogger *zap.Logger) (storage.Storage, error) {
	gormLogger := newGormLogger(zapLogger.Named("gorm"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &postgresStorage{
		db:     db,
		logger: zapLogger,
	}, nil
}

func (p *postgresStorage) RunMigrations() error {
	// Advisory lock so concurrent instances do not race the migration.
	var lockObtained bool
	err := p.db.Raw("SELECT pg_try_advisory_lock(101)").Scan(&lockObtained).Error
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return fmt.Errorf("another migration is in progress")
	}
	defer p.db.Exec("SELECT pg_advisory_unlock(101)")

	err = p.db.AutoMigrate(
		&models.Launch{},
		&models.Trade{},
		&models.Completion{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (p *postgresStorage) SaveLaunch(ctx context.Context, launch *models.Launch) error {
	return p.db.WithContext(ctx).Create(launch).Error
}

func (p *postgresStorage) GetLaunch(ctx context.Context, mint string) (*models.Launch, error) {
	var launch models.Launch
	err := p.db.WithContext(ctx).Where("mint = ?", mint).First(&launch).Error
	if err != nil {
		return nil, err
	}
	return &launch, nil
}

func (p *postgresStorage) ListLaunches(ctx context.Context, creator string, limit, offset int) ([]*models.Launch, error) {
	var launches []*models.Launch
	err := p.db.WithContext(ctx).
		Where("creator = ?", creator).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&launches).Error
	return launches, err
}

func (p *postgresStorage) SaveTrade(ctx context.Context, trade *models.Trade) error {
	return p.db.WithContext(ctx).Create(trade).Error
}

func (p *postgresStorage) ListTrades(ctx context.Context, mint string, limit, offset int) ([]*models.Trade, error) {
	var trades []*models.Trade
	err := p.db.WithContext(ctx).
		Where("mint = ?", mint).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&trades).Error
	return trades, err
}

func (p *postgresStorage) SaveCompletion(ctx context.Context, completion *models.Completion) error {
	return p.db.WithContext(ctx).Create(completion).Error
}

func (p *postgresStorage) GetCompletion(ctx context.Context, mint string) (*models.Completion, error) {
	var completion models.Completion
	err := p.db.WithContext(ctx).Where("mint = ?", mint).First(&completion).Error
	if err != nil {
		return nil, err
	}
	return &completion, nil
}

func (p *postgresStorage) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
