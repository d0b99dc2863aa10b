package datasource

import (
	"context"
	"fmt"

	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/model"
)

// TreeFetcher is the API call the live source needs.
type TreeFetcher interface {
	GetLocationsTree(ctx context.Context, withItems bool) ([]model.TreeNode, error)
}

// LoadTree loads the tree from source. API sources go through client;
// snapshot sources are read from disk and ignore it.
func LoadTree(ctx context.Context, source DataSource, client TreeFetcher, withItems bool) ([]model.TreeNode, error) {
	switch source.Type {
	case SourceTypeAPI:
		if client == nil {
			return nil, fmt.Errorf("no client for %s", source.Path)
		}
		return client.GetLocationsTree(ctx, withItems)

	case SourceTypeSnapshot:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot %s: %w", source.Path, err)
		}
		defer reader.Close()
		nodes, err := reader.LoadTree(withItems)
		if err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", source.Path, err)
		}
		return nodes, nil

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// LoadLatestSnapshot loads the tree from the newest valid snapshot in dir.
func LoadLatestSnapshot(dir string, withItems bool) ([]model.TreeNode, DataSource, error) {
	sources, err := DiscoverSnapshots(DiscoveryOptions{
		Dir:                    dir,
		ValidateAfterDiscovery: true,
		Logger:                 func(msg string) { debug.Log("datasource: %s", msg) },
	})
	if err != nil {
		return nil, DataSource{}, err
	}
	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, DataSource{}, err
	}
	nodes, err := LoadTree(context.Background(), best, nil, withItems)
	if err != nil {
		return nil, best, err
	}
	return nodes, best, nil
}
