// Package runstore persists search run records.
//
// A Run records one rearrangement search: the starting network, the best
// network found, its score, and counters for the moves tried along the way.
// The Store interface has implementations for different backends:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI applications
//   - mongo: MongoDB-backed storage for the server
//
// # Usage
//
// Create a store:
//
//	// Development
//	store := runstore.NewMemoryStore()
//
//	// CLI
//	store, err := runstore.NewFileStore("")  // Uses ~/.config/reticula/runs/
//
//	// Server
//	store, err := runstore.NewMongoStore(ctx, "mongodb://localhost:27017", "reticula")
//
// Record runs:
//
//	run := runstore.New(startNewick)
//	// ... search ...
//	run.Finish(bestNewick, score, steps, applied, rejected)
//	store.Save(ctx, run)
package runstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Run records one rearrangement search.
type Run struct {
	ID          string    `bson:"_id" json:"id"`
	InputNewick string    `bson:"input_newick" json:"input_newick"`
	BestNewick  string    `bson:"best_newick" json:"best_newick"`
	Score       float64   `bson:"score" json:"score"`
	Steps       int       `bson:"steps" json:"steps"`
	Applied     int       `bson:"applied" json:"applied"`
	Rejected    int       `bson:"rejected" json:"rejected"`
	StartedAt   time.Time `bson:"started_at" json:"started_at"`
	FinishedAt  time.Time `bson:"finished_at" json:"finished_at"`
}

// New creates a run record for a search starting from the given network.
func New(inputNewick string) *Run {
	return &Run{
		ID:          uuid.NewString(),
		InputNewick: inputNewick,
		StartedAt:   time.Now().UTC(),
	}
}

// Finish records the search outcome on the run.
func (r *Run) Finish(bestNewick string, score float64, steps, applied, rejected int) {
	r.BestNewick = bestNewick
	r.Score = score
	r.Steps = steps
	r.Applied = applied
	r.Rejected = rejected
	r.FinishedAt = time.Now().UTC()
}

// Duration returns how long the search ran, or zero if it never finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store is the interface for run storage backends.
type Store interface {
	// Save stores a run, overwriting any run with the same id.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by id. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns all runs, most recently started first.
	List(ctx context.Context) ([]*Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
