package generate

import "os"

// renameio does not support windows; the write is not atomic there.
func replaceFile(path string, content []byte) error {
	return os.WriteFile(path, content, 0o644)
}
