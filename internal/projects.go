package internal

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Project describes one discoverable conversation source.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	FileCount int    `json:"file_count"`
}

// ListProjects enumerates the conversations directory and returns every
// subdirectory that holds at least one log file, sorted by display name.
// Hidden directories are skipped.
func ListProjects(projectsDir string) ([]Project, error) {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil, &SourceError{Path: projectsDir, Op: "read", Err: err}
	}

	var projects []Project
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		dir := filepath.Join(projectsDir, entry.Name())
		files, err := ListLogFiles(dir)
		if err != nil || len(files) == 0 {
			continue
		}

		projects = append(projects, Project{
			ID:        entry.Name(),
			Name:      projectDisplayName(entry.Name()),
			Path:      dir,
			FileCount: len(files),
		})
	}

	sort.Slice(projects, func(i, j int) bool {
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})

	LogInfo("Found %d projects", len(projects))
	return projects, nil
}

// FindProject resolves a project id to its directory under projectsDir.
func FindProject(projectsDir, projectID string) (Project, error) {
	dir := filepath.Join(projectsDir, projectID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = os.ErrNotExist
		}
		return Project{}, &SourceError{Path: dir, Op: "stat", Err: err}
	}

	files, _ := ListLogFiles(dir)
	return Project{
		ID:        projectID,
		Name:      projectDisplayName(projectID),
		Path:      dir,
		FileCount: len(files),
	}, nil
}

// projectDisplayName recovers a readable name from the path-encoded directory
// name, e.g. "-Users-reed-dev-my-project" becomes "my-project". Names that
// do not follow the encoding are returned as-is.
func projectDisplayName(encoded string) string {
	parts := strings.Split(encoded, "-")
	for i, part := range parts {
		if part == "dev" && i+1 < len(parts) {
			if name := strings.Join(parts[i+1:], "-"); name != "" {
				return name
			}
		}
	}
	return encoded
}
