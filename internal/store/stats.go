package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type countCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// CodeStats summarizes the activation code collection.
type CodeStats struct {
	Total  int64
	Active int64
}

// StatsProvider counts activation codes for diagnostics without leaking
// MongoDB internals to callers.
type StatsProvider struct {
	codes countCollection
}

// NewStatsProvider constructs a StatsProvider backed by the codes collection.
func NewStatsProvider(codes countCollection) *StatsProvider {
	return &StatsProvider{codes: codes}
}

// CountCodes returns how many codes exist and how many expire after now.
func (p *StatsProvider) CountCodes(ctx context.Context, now time.Time) (CodeStats, error) {
	if ctx == nil {
		return CodeStats{}, errors.New("context is required")
	}
	if p == nil || p.codes == nil {
		return CodeStats{}, errors.New("stats provider is not initialized")
	}

	total, err := p.codes.CountDocuments(ctx, bson.D{})
	if err != nil {
		return CodeStats{}, fmt.Errorf("count codes: %w", err)
	}

	active, err := p.codes.CountDocuments(ctx, bson.D{{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: now.UTC()}}}})
	if err != nil {
		return CodeStats{}, fmt.Errorf("count active codes: %w", err)
	}

	return CodeStats{Total: total, Active: active}, nil
}
