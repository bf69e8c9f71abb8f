// Package registry checks and records issued activation codes.
package registry

import (
	"context"

	"github.com/sirupsen/logrus"

	"aesthetic_doctor_bot/internal/domain"
	"aesthetic_doctor_bot/internal/instrument"
	"aesthetic_doctor_bot/internal/logging"
)

// Backend is a code store.
type Backend interface {
	// Existing returns the subset of codes already stored.
	Existing(ctx context.Context, codes []string) ([]string, error)
	// Insert stores every record.
	Insert(ctx context.Context, records []domain.ActivationCode) error
}

// Registry wraps a Backend and never fails its callers: lookups that error
// report no conflicts and failed writes are only logged. A store outage can
// therefore hand out a code that already exists.
type Registry struct {
	backend Backend
	logger  *logrus.Entry
}

// New builds a Registry. A nil logger discards output.
func New(backend Backend, logger *logrus.Entry) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Registry{backend: backend, logger: logger}
}

// Conflicts returns which codes are already taken.
func (r *Registry) Conflicts(ctx context.Context, codes []string) []string {
	existing, err := r.backend.Existing(ctx, codes)
	if err != nil {
		instrument.UpstreamFailures.WithLabelValues(instrument.ServiceRegistry).Inc()
		r.logger.WithError(err).WithField("codes", codes).Warn("code lookup failed, assuming no conflicts")
		return nil
	}
	return existing
}

// Persist records the codes.
func (r *Registry) Persist(ctx context.Context, records []domain.ActivationCode) {
	if len(records) == 0 {
		return
	}

	if err := r.backend.Insert(ctx, records); err != nil {
		instrument.UpstreamFailures.WithLabelValues(instrument.ServiceRegistry).Inc()
		r.logger.WithError(err).WithField("count", len(records)).Error("failed to persist activation codes")
		return
	}

	r.logger.WithField("count", len(records)).Info("activation codes persisted")
}
