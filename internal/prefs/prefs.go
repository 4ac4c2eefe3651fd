// Package prefs stores the user's export preferences.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"worldsmith/internal/remotesync"
	"worldsmith/internal/store"
	"worldsmith/internal/transfer"
)

const (
	Key        = "exportPreferences"
	remoteKind = "preferences"
	remoteID   = "export"
)

type ExportPreferences struct {
	DefaultFormat     transfer.Format `json:"defaultFormat"`
	PrettyJSON        bool            `json:"prettyJson"`
	UploadAfterExport bool            `json:"uploadAfterExport"`
}

func Defaults() ExportPreferences {
	return ExportPreferences{DefaultFormat: transfer.FormatJSON, PrettyJSON: true}
}

type Service struct {
	store store.Store
	sync  *remotesync.Syncer
}

// NewService returns a preference service. sync may be nil.
func NewService(s store.Store, sync *remotesync.Syncer) *Service {
	return &Service{store: s, sync: sync}
}

// Load returns the stored preferences, or Defaults when none are saved.
func (s *Service) Load(ctx context.Context) (ExportPreferences, error) {
	raw, err := s.store.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return ExportPreferences{}, fmt.Errorf("load preferences: %w", err)
	}
	p := Defaults()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ExportPreferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}

// Save persists p locally, then pushes it to the remote when sync is on.
func (s *Service) Save(ctx context.Context, p ExportPreferences) error {
	format, err := transfer.ParseFormat(string(p.DefaultFormat))
	if err != nil {
		return err
	}
	p.DefaultFormat = format
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	s.sync.Push(ctx, remoteKind, remoteID, data)
	return nil
}
