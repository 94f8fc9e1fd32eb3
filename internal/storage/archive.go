package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"meal-planner/internal/planner"
)

// PlanArchive keeps a file-based history of generated plans, one JSON file
// per generation, next to the database. The database row for a day is
// overwritten on regeneration; the archive is what lets a household answer
// "what did last week's plan look like before we changed it".
type PlanArchive struct {
	basePath string
}

// NewPlanArchive creates a new PlanArchive and ensures the base directory exists.
func NewPlanArchive(basePath string) (*PlanArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", basePath, err)
	}
	return &PlanArchive{basePath: basePath}, nil
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	return strings.ReplaceAll(ts, ":", "-")
}

// archivePath returns the file path for one user's generation at a moment.
func (a *PlanArchive) archivePath(userID, generatedAt string) string {
	filename := fmt.Sprintf("%s_%s.json", userID, sanitizeTimestamp(generatedAt))
	return filepath.Join(a.basePath, filename)
}

// Save archives a generated plan for a user under the generation timestamp.
func (a *PlanArchive) Save(userID, generatedAt string, result planner.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	filePath := a.archivePath(userID, generatedAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan archive file: %w", err)
	}
	return nil
}

// Load retrieves one archived generation.
func (a *PlanArchive) Load(userID, generatedAt string) (*planner.Result, error) {
	filePath := a.archivePath(userID, generatedAt)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan archive file: %w", err)
	}

	var result planner.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archived plan: %w", err)
	}
	return &result, nil
}

// Exists checks whether a specific generation is archived.
func (a *PlanArchive) Exists(userID, generatedAt string) bool {
	_, err := os.Stat(a.archivePath(userID, generatedAt))
	return !os.IsNotExist(err)
}

// ListVersions returns a user's archived generation timestamps in
// chronological order.
func (a *PlanArchive) ListVersions(userID string) ([]string, error) {
	pattern := filepath.Join(a.basePath, fmt.Sprintf("%s_*.json", userID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob archive files: %w", err)
	}

	prefix := userID + "_"
	var versions []string
	for _, match := range matches {
		name := strings.TrimSuffix(filepath.Base(match), ".json")
		versions = append(versions, strings.TrimPrefix(name, prefix))
	}
	sort.Strings(versions)
	return versions, nil
}

// Prune removes a user's oldest archived generations, keeping the newest
// keep files. Returns how many were removed.
func (a *PlanArchive) Prune(userID string, keep int) (int, error) {
	versions, err := a.ListVersions(userID)
	if err != nil {
		return 0, err
	}
	if len(versions) <= keep {
		return 0, nil
	}

	removed := 0
	for _, version := range versions[:len(versions)-keep] {
		if err := os.Remove(filepath.Join(a.basePath, fmt.Sprintf("%s_%s.json", userID, version))); err != nil {
			return removed, fmt.Errorf("failed to remove archived plan: %w", err)
		}
		removed++
	}
	return removed, nil
}
