package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/cmmoran/controlapigen/pkg/action/generate"
	"github.com/cmmoran/controlapigen/pkg/apigen"
	"github.com/cmmoran/controlapigen/pkg/manifest"
)

// Record generates the catalog of inFile into dir as <name>-<version>.<ext>
// and records it in the manifest. It returns the written file.
func Record(ctx context.Context, opts *apigen.Options, inFile, manifestPath, dir, name, version string) (string, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return "", err
	}
	v, err := manifest.CanonicalVersion(version)
	if err != nil {
		return "", err
	}

	g := apigen.NewWithOpts(opts)
	cat, err := g.CatalogFile(ctx, inFile)
	if err != nil {
		return "", err
	}
	out, err := g.Render(cat)
	if err != nil {
		return "", err
	}

	ext := ".js"
	if g.Opts.Format == apigen.FormatGo {
		ext = ".go"
	}
	outFile := filepath.Clean(filepath.Join(dir, name+"-"+strings.TrimPrefix(v, "v")+ext))
	if err = generate.WriteFile(outFile, []byte(out)); err != nil {
		return "", err
	}

	err = m.AddSnapshot(manifest.Snapshot{
		Name:     name,
		Version:  v,
		File:     outFile,
		Digest:   manifest.Digest([]byte(out)),
		Controls: len(cat),
	})
	if err != nil {
		return "", err
	}
	if err = m.Save(manifestPath); err != nil {
		return "", err
	}

	return outFile, nil
}

// List returns all snapshots recorded in the manifest.
func List(manifestPath string) (*manifest.Manifest, error) {
	return manifest.Load(manifestPath)
}

// DiffCurrentWithPrevious loads the manifest, locates the current and previous
// snapshot files, and returns a textual diff of their contents.
func DiffCurrentWithPrevious(manifestPath string) (string, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return "", err
	}

	if m.CurrentVersion == "" || m.PreviousVersion == "" {
		return "", errors.New("no current/previous snapshots recorded")
	}

	currentPath := m.SnapshotFile(m.CurrentVersion)
	previousPath := m.SnapshotFile(m.PreviousVersion)

	if currentPath == "" || previousPath == "" {
		return "", errors.New("snapshot files not found in manifest")
	}

	current, err := os.ReadFile(currentPath)
	if err != nil {
		return "", errors.Wrap(err, "read current snapshot")
	}

	previous, err := os.ReadFile(previousPath)
	if err != nil {
		return "", errors.Wrap(err, "read previous snapshot")
	}

	return cmp.Diff(string(previous), string(current)), nil
}
