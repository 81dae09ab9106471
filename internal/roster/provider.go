package roster

import (
	"context"
	"fmt"

	"github.com/roach88/statuslog/internal/store"
)

// Provider supplies the current set of subjects.
type Provider interface {
	// List returns unique subjects in a stable order.
	List(ctx context.Context) ([]string, error)
}

// Static is a fixed roster.
type Static []string

// List implements Provider.
func (s Static) List(context.Context) ([]string, error) {
	return []string(s), nil
}

// StoreProvider reads the roster file from a storage adapter.
type StoreProvider struct {
	store store.Adapter
	path  string
}

// NewStoreProvider returns a provider reading path from adapter.
func NewStoreProvider(adapter store.Adapter, path string) *StoreProvider {
	return &StoreProvider{store: adapter, path: path}
}

// Load returns the parsed roster file and its version. A missing file
// yields an empty table and the empty version.
func (p *StoreProvider) Load(ctx context.Context) (*Table, store.Version, error) {
	blob, err := p.store.Get(ctx, p.path)
	if store.IsNotFound(err) {
		return &Table{}, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load roster %s: %w", p.path, err)
	}
	return ParseTable(blob.Content), blob.Version, nil
}

// List implements Provider.
func (p *StoreProvider) List(ctx context.Context) ([]string, error) {
	t, _, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	return t.Subjects(), nil
}

// Config returns the configuration object from the roster file.
func (p *StoreProvider) Config(ctx context.Context) (Config, error) {
	t, _, err := p.Load(ctx)
	if err != nil {
		return Config{}, err
	}
	return t.Config(), nil
}
