package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

var ErrInvalidVersion = errors.New("invalid snapshot version")

// Snapshot represents a generated catalog snapshot entry in the manifest.
type Snapshot struct {
	Name     string `yaml:"name" json:"name"`
	Version  string `yaml:"version" json:"version"`
	File     string `yaml:"file" json:"file"`
	Digest   string `yaml:"digest,omitempty" json:"digest,omitempty"`
	Controls int    `yaml:"controls,omitempty" json:"controls,omitempty"`
}

// Manifest tracks the lifecycle of generated catalog snapshots.
type Manifest struct {
	CurrentVersion  string     `yaml:"current_version" json:"current_version"`
	PreviousVersion string     `yaml:"previous_version" json:"previous_version"`
	Snapshots       []Snapshot `yaml:"snapshots" json:"snapshots"`
}

// Load reads a manifest from the provided path. If the file does not exist,
// an empty manifest is returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal manifest")
	}

	return &m, nil
}

// Save writes the manifest to the provided path, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create manifest directory")
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write manifest")
	}

	return nil
}

// CanonicalVersion accepts "1.2.3" or "v1.2.3" and returns the semver form.
func CanonicalVersion(v string) (string, error) {
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", errors.Wrapf(ErrInvalidVersion, "%q", v)
	}
	return semver.Canonical(v), nil
}

// AddSnapshot records a snapshot, updating version pointers and de-duplicating
// existing entries that share the same name and version. Snapshots stay
// ordered by version.
func (m *Manifest) AddSnapshot(s Snapshot) error {
	v, err := CanonicalVersion(s.Version)
	if err != nil {
		return err
	}
	s.Version = v

	if m.CurrentVersion != "" && m.CurrentVersion != v {
		m.PreviousVersion = m.CurrentVersion
	}
	m.CurrentVersion = v

	replaced := false
	for i := range m.Snapshots {
		if m.Snapshots[i].Name == s.Name && m.Snapshots[i].Version == s.Version {
			m.Snapshots[i] = s
			replaced = true
			break
		}
	}
	if !replaced {
		m.Snapshots = append(m.Snapshots, s)
	}

	sort.SliceStable(m.Snapshots, func(i, j int) bool {
		return semver.Compare(m.Snapshots[i].Version, m.Snapshots[j].Version) < 0
	})
	return nil
}

// SnapshotFile returns the path associated with the provided version, if present.
func (m *Manifest) SnapshotFile(version string) string {
	for _, s := range m.Snapshots {
		if s.Version == version {
			return s.File
		}
	}
	return ""
}

// Digest returns the hex sha256 of generated content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
