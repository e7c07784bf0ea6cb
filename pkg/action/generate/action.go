package generate

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/cmmoran/controlapigen/pkg/apigen"
)

// Generate renders the catalog of the declaration file at inFile. The text is
// written to outFile when set, otherwise to w. Nothing is written unless
// generation succeeded as a whole.
func Generate(ctx context.Context, opts *apigen.Options, inFile, outFile string, w io.Writer) error {
	out, err := apigen.NewWithOpts(opts).GenerateFile(ctx, inFile)
	if err != nil {
		return err
	}
	if outFile == "" {
		_, err = io.WriteString(w, out)
		return err
	}
	return WriteFile(outFile, []byte(out))
}

// WriteFile replaces path with content. Where the platform allows, the
// content goes through a temporary file in the same directory, so readers
// never observe a partially written catalog.
func WriteFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	return errors.Wrapf(replaceFile(path, content), "write %s", path)
}
