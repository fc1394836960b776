// Package sqlite provides the SQLite storage adapter for plugin
// descriptors.
package sqlite

import (
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/storage/sqldb"
)

// Provider implements ports.StorageProvider using SQLite.
// It wraps the sqldb implementation.
type Provider struct {
	*sqldb.Store
}

// NewProvider creates a new SQLite storage provider.
func NewProvider(path string) (*Provider, error) {
	store, err := sqldb.NewSQLite(path)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Store: store,
	}, nil
}

// Ensure Provider implements the storage ports at compile time.
var (
	_ ports.StorageProvider  = (*Provider)(nil)
	_ ports.DescriptorSource = (*Provider)(nil)
)
