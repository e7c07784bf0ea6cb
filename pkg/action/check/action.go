package check

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/cmmoran/controlapigen/pkg/apigen"
)

var ErrDrift = errors.New("generated catalog is out of date")

// Check regenerates the catalog of inFile and compares it with the committed
// output in generatedFile. It returns ErrDrift with a diff when they differ.
func Check(ctx context.Context, opts *apigen.Options, inFile, generatedFile string) error {
	want, err := apigen.NewWithOpts(opts).GenerateFile(ctx, inFile)
	if err != nil {
		return err
	}
	got, err := os.ReadFile(generatedFile)
	if err != nil {
		return errors.Wrap(err, "read generated file")
	}
	if diff := cmp.Diff(string(got), want); diff != "" {
		err = errors.Newf("%s differs from a fresh generation (-committed +generated):\n%s", generatedFile, diff)
		return errors.WithHint(errors.Mark(err, ErrDrift), "regenerate and commit the output")
	}
	return nil
}
