// Package remotesync mirrors locally persisted records to a per-user remote.
// Sync is best effort: the local store stays authoritative and remote
// failures never reach the caller.
package remotesync

import (
	"context"
	"strings"

	"worldsmith/internal/logger"
)

// Remote accepts one JSON record for a user.
type Remote interface {
	Push(ctx context.Context, userID, kind, id string, payload []byte) error
}

type Syncer struct {
	enabled bool
	userID  string
	remote  Remote
	log     *logger.Logger
}

// NewSyncer returns a syncer that pushes only when enabled is set and both
// userID and remote are present.
func NewSyncer(enabled bool, userID string, remote Remote, log *logger.Logger) *Syncer {
	return &Syncer{
		enabled: enabled,
		userID:  strings.TrimSpace(userID),
		remote:  remote,
		log:     log.With("service", "RemoteSync"),
	}
}

func (s *Syncer) Enabled() bool {
	return s != nil && s.enabled && s.userID != "" && s.remote != nil
}

// Push sends the record and reports whether it reached the remote.
func (s *Syncer) Push(ctx context.Context, kind, id string, payload []byte) bool {
	if !s.Enabled() {
		return false
	}
	if err := s.remote.Push(ctx, s.userID, kind, id, payload); err != nil {
		s.log.Warn("remote sync failed", "kind", kind, "id", id, "error", err)
		return false
	}
	s.log.Debug("remote sync", "kind", kind, "id", id)
	return true
}
