package vision

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// imageExtensions are the file types the analyzer considers.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// FindUnanalyzed walks root for image files not present in analyzed,
// skipping dot-directories (the embeddings database itself lives in one).
// With max > 0 the scan stops as soon as that many candidates are found;
// max 0 means unbounded.
func FindUnanalyzed(root string, analyzed map[string]struct{}, max int) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if _, ok := imageExtensions[ext]; !ok {
			return nil
		}
		if _, ok := analyzed[path]; ok {
			return nil
		}
		out = append(out, path)
		if max > 0 && len(out) >= max {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
