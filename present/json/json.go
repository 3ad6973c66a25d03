// Package json provides a JSON presenter.
package json

import (
	gojson "encoding/json"

	"github.com/pkg/errors"
)

// Presenter is a presenter that formats v into a JSON string.
type Presenter struct {
	indent string
}

func NewPresenter() *Presenter {
	return &Presenter{indent: "  "}
}

// Format formats v into an indented JSON string.
func (p *Presenter) Format(v interface{}) (string, error) {
	b, err := gojson.MarshalIndent(v, "", p.indent)
	if err != nil {
		return "", errors.Wrap(err, "failed to format v into JSON string")
	}
	return string(b), nil
}
