package idl

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/yonagi/bridgen/logger"
)

// Load parses every .proto file directly under dir. The primary file is
// parsed first and must exist; any other file that cannot be read is
// skipped with a warning so one broken schema does not sink the rest.
func Load(dir, primary string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema directory '%s'", dir)
	}

	src, err := os.ReadFile(filepath.Join(dir, primary))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read primary schema '%s'", primary)
	}
	files := []*File{Parse(primary, src)}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == primary || !strings.HasSuffix(name, ".proto") {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warnf("skipping schema '%s': %s", name, err)
			continue
		}
		files = append(files, Parse(name, src))
	}

	for _, f := range files {
		for _, s := range f.Skipped {
			logger.Warnf("%s", s)
		}
	}
	return files, nil
}
