package app

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// flags defines available command line flags.
type flags struct {
	common struct {
		dir     string
		primary string
		out     string
		pkg     string
		tag     string
		runtime string
	}

	describe struct {
		format string
	}

	meta struct {
		verbose bool
		version bool
		help    bool
	}
}

// validate defines invalid conditions and validates whether f has invalid conditions.
func (f *flags) validate() error {
	var result error
	invalidCases := []struct {
		name string
		cond bool
	}{
		{"--tag must not contain ':' or whitespace", strings.ContainsAny(f.common.tag, ": \t")},
		{`--format must be "table" or "json"`, f.describe.format != "table" && f.describe.format != "json"},
	}
	for _, c := range invalidCases {
		if c.cond {
			result = multierror.Append(result, errors.New(c.name))
		}
	}
	return result
}
