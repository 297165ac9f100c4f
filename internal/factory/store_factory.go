package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quickemail/email-triage/internal/adapters/mongodb"
	"github.com/quickemail/email-triage/internal/config"
	"github.com/quickemail/email-triage/internal/core"
)

// StoreFactory creates the audit store based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEmailStore connects to MongoDB when auditing is enabled. A disabled
// store yields nil and classifications are not recorded.
func (f *StoreFactory) CreateEmailStore() (core.EmailStore, error) {
	mongoCfg := f.cfg.GetMongo()
	if !mongoCfg.Enabled {
		f.logger.Info("Email audit store is disabled")
		return nil, nil
	}

	store, err := mongodb.NewStore(mongoCfg.URI, mongoCfg.Database, mongoCfg.Collection, mongoCfg.Timeout, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return store, nil
}
