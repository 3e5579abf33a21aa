package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/shoptrends-cli/internal/analysis"
	"github.com/KaramelBytes/shoptrends-cli/internal/utils"
)

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

// Artifact kinds.
const (
	KindFigure = "figure"
	KindReport = "report"
	KindExport = "export"
)

// Artifact is one file produced by a run, relative to the output directory.
type Artifact struct {
	Kind     string              `json:"kind"`
	Path     string              `json:"path"`
	Question analysis.QuestionID `json:"question,omitempty"`
}

// Manifest records what a single analysis run read and produced.
type Manifest struct {
	RunID      string             `json:"run_id"`
	Input      string             `json:"input"`
	Rows       int                `json:"rows"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Artifacts  []Artifact         `json:"artifacts"`
	Skipped    []analysis.Skipped `json:"skipped,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`

	// Not serialized: directory holding manifest.json and the artifacts.
	rootDir string `json:"-"`
}

// New starts a manifest for a run writing into rootDir.
func New(input, rootDir string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Input:     input,
		StartedAt: time.Now().UTC(),
		rootDir:   rootDir,
	}
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the output directory of the run.
func (m *Manifest) RootDir() string { return m.rootDir }

// Record copies row count, skipped questions and warnings from res.
func (m *Manifest) Record(res *analysis.Results) {
	m.Rows = res.Rows
	m.Skipped = append([]analysis.Skipped(nil), res.Skipped...)
	m.Warnings = append([]string(nil), res.Warnings...)
}

// AddArtifact registers a produced file. Absolute paths under the root
// directory are stored relative to it.
func (m *Manifest) AddArtifact(kind, path string, q analysis.QuestionID) {
	if rel, err := filepath.Rel(m.rootDir, path); err == nil && filepath.IsAbs(path) == filepath.IsAbs(m.rootDir) {
		path = rel
	}
	m.Artifacts = append(m.Artifacts, Artifact{Kind: kind, Path: filepath.ToSlash(path), Question: q})
}

// Save stamps FinishedAt and writes manifest.json atomically.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest root directory not set")
	}
	m.FinishedAt = time.Now().UTC()
	sort.SliceStable(m.Artifacts, func(i, j int) bool {
		return m.Artifacts[i].Path < m.Artifacts[j].Path
	})
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.rootDir, FileName), data)
}
