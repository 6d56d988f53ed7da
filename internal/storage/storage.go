// Package storage persists launchpad history: launches, trades and curve
// completions.
package storage

import (
	"context"

	"github.com/dane-04-code/Fusefun/internal/storage/models"
)

// Storage is the persistence interface for launchpad history.
type Storage interface {
	SaveLaunch(ctx context.Context, launch *models.Launch) error
	GetLaunch(ctx context.Context, mint string) (*models.Launch, error)
	ListLaunches(ctx context.Context, creator string, limit, offset int) ([]*models.Launch, error)

	SaveTrade(ctx context.Context, trade *models.Trade) error
	ListTrades(ctx context.Context, mint string, limit, offset int) ([]*models.Trade, error)

	SaveCompletion(ctx context.Context, completion *models.Completion) error
	GetCompletion(ctx context.Context, mint string) (*models.Completion, error)

	RunMigrations() error
	Close() error
}
