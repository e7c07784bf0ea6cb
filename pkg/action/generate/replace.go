//go:build !windows

package generate

import "github.com/google/renameio/v2"

func replaceFile(path string, content []byte) error {
	return renameio.WriteFile(path, content, 0o644)
}
