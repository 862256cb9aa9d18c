package chart

import (
	"errors"
	"fmt"
	"os"
)

// DefaultFormats are the vector formats every chart is exported to.
var DefaultFormats = []string{"svg", "eps"}

// Export writes fig to <prefix>.<format> for each format (DefaultFormats when
// none are given) and then releases fig. The release happens exactly once,
// also when writing fails. Every format is attempted; the errors are joined.
// It returns the paths that were written.
func Export(fig *Figure, prefix string, formats ...string) ([]string, error) {
	defer fig.Close()

	if len(formats) == 0 {
		formats = DefaultFormats
	}
	var (
		written []string
		errs    []error
	)
	for _, ext := range formats {
		path := prefix + "." + ext
		if err := writeFile(fig, path, ext); err != nil {
			errs = append(errs, err)
			continue
		}
		written = append(written, path)
	}
	return written, errors.Join(errs...)
}

func writeFile(fig *Figure, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if _, err := fig.Render(f, format); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("could not render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}
