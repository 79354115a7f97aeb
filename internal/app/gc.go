package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brencon/clipsy/internal/artifact"
	"github.com/brencon/clipsy/internal/database"
)

// GCResult contains the outcome of an artifact sweep.
type GCResult struct {
	Scanned    int
	Referenced int
	Deleted    int
}

// GarbageCollect removes artifact files not referenced by any image
// entry. Orphans appear when the process dies between the artifact write
// and the row commit; the sweep is safe to run at any time because rows
// only ever reference artifacts written before them.
func GarbageCollect(ctx context.Context, repository *database.Repository, artifacts *artifact.Store, logger *slog.Logger) (*GCResult, error) {
	result := &GCResult{}

	referenced, err := repository.ImageHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("get referenced hashes: %w", err)
	}
	result.Referenced = len(referenced)

	hashes, err := artifacts.List()
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	result.Scanned = len(hashes)

	for _, hash := range hashes {
		if referenced[hash] {
			continue
		}
		if err := artifacts.Delete(hash); err != nil {
			logger.Warn("gc: failed to delete artifact", "hash", hash, "error", err)
			continue
		}
		result.Deleted++
	}

	logger.Info("gc complete",
		"scanned", result.Scanned,
		"referenced", result.Referenced,
		"deleted", result.Deleted,
	)

	return result, nil
}
