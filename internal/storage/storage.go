package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pfrederiksen/liga-scores/internal/match"
)

// Storage handles persistence of match result snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// getSnapshotPath returns the path to the snapshot file. Club-filtered checks
// keep their own baseline so that filtered and unfiltered runs do not hide
// results from each other.
func (s *Storage) getSnapshotPath(club string) string {
	slug := clubSlug(club)
	if slug == "" {
		return filepath.Join(s.dataDir, "snapshot.json")
	}
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", slug))
}

// clubSlug turns a club filter into a filename-safe token
func clubSlug(club string) string {
	club = strings.TrimSpace(club)
	if club == "" || strings.EqualFold(club, "all") {
		return ""
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(club) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// LoadSnapshot loads a snapshot from disk
func (s *Storage) LoadSnapshot(club string) (*match.Snapshot, error) {
	path := s.getSnapshotPath(club)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No previous snapshot, return empty one
			return match.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot match.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	// Ensure Matches map is initialized
	if snapshot.Matches == nil {
		snapshot.Matches = make(map[string]*match.Match)
	}

	return &snapshot, nil
}

// SaveSnapshot saves a snapshot to disk
func (s *Storage) SaveSnapshot(snapshot *match.Snapshot, club string) error {
	path := s.getSnapshotPath(club)

	// Set updated timestamp
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// CreateSnapshotFromMatches creates and saves a snapshot from a list of
// matches, carrying the changes detected against the previous snapshot.
// The saved snapshot is returned so callers can inspect the change log.
func (s *Storage) CreateSnapshotFromMatches(matches []*match.Match, previous *match.Snapshot, club string) (*match.Snapshot, error) {
	snapshot := match.CreateSnapshot(matches, time.Now().UTC().Format(time.RFC3339))
	if previous != nil {
		snapshot.ChangeLog = match.CompareSnapshots(previous.Matches, snapshot.Matches)
	}
	if err := s.SaveSnapshot(snapshot, club); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetMatchByID retrieves a match by ID from the combined snapshot
func (s *Storage) GetMatchByID(matchID string) (*match.Match, error) {
	snapshot, err := s.LoadSnapshot("")
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if m, exists := snapshot.Matches[matchID]; exists {
		return m, nil
	}

	return nil, fmt.Errorf("match not found: %s", matchID)
}
