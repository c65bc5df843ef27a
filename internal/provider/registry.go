package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osintlab/personscan/internal/model"
)

// Registry matches the subject against the structured identity
// registries. Matching is by normalized name; the voter and criminal
// registries additionally honor the query's location hint, since those
// record sets are address-keyed and a bare common name would flood the
// report with strangers.
type Registry struct {
	db     *RegistryDB
	logger *slog.Logger
}

// NewRegistry creates the registry provider. A nil db disables the
// provider; it then returns empty payloads.
func NewRegistry(db *RegistryDB, logger *slog.Logger) *Registry {
	return &Registry{db: db, logger: logger}
}

// Name implements Provider.
func (r *Registry) Name() string {
	return "registry"
}

// Search implements Provider.
func (r *Registry) Search(ctx context.Context, query model.Query) (Payload, error) {
	if r.db == nil {
		r.logger.DebugContext(ctx, "registry database not configured, skipping")
		return RegistryPayload{}, nil
	}

	var data model.RegistryRecords
	var err error

	if data.Voter, err = r.db.matchVoter(ctx, query.Name, query.Location); err != nil {
		return nil, fmt.Errorf("voter registry: %w", err)
	}
	if data.Pan, err = r.db.matchPan(ctx, query.Name); err != nil {
		return nil, fmt.Errorf("pan registry: %w", err)
	}
	if data.Aadhar, err = r.db.matchAadhar(ctx, query.Name); err != nil {
		return nil, fmt.Errorf("aadhar registry: %w", err)
	}
	if data.Criminal, err = r.db.matchCriminal(ctx, query.Name, query.Location); err != nil {
		return nil, fmt.Errorf("criminal registry: %w", err)
	}

	r.logger.DebugContext(ctx, "registry match complete",
		slog.Int("voter", len(data.Voter)),
		slog.Int("pan", len(data.Pan)),
		slog.Int("aadhar", len(data.Aadhar)),
		slog.Int("criminal", len(data.Criminal)))

	return RegistryPayload{Data: data}, nil
}
