// Package table provides a table like formatting.
package table

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
)

// Presenter formats a view struct as a text table. Each exported field is
// one column, named by its "table" tag. Slice fields are zipped by index
// into rows; scalar fields repeat on every row.
type Presenter struct{}

func NewPresenter() *Presenter {
	return &Presenter{}
}

func indirect(rv reflect.Value) reflect.Value {
	if rv.Type().Kind() != reflect.Ptr {
		return rv
	}
	return indirect(reflect.Indirect(rv))
}

func (p *Presenter) Format(v interface{}) (string, error) {
	rv := indirect(reflect.ValueOf(v))
	rt := rv.Type()
	if rt.Kind() != reflect.Struct {
		return "", errors.New("v should be a struct type")
	}

	keys := structKeys(rt)
	vals := structValues(rv)

	var w bytes.Buffer
	table := tablewriter.NewWriter(&w)
	table.SetHeader(keys)
	table.AppendBulk(vals)
	table.Render()
	return w.String(), nil
}

func structKeys(rt reflect.Type) []string {
	keys := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		key := sf.Tag.Get("table")
		if key == "-" {
			continue
		}
		if key == "" {
			key = strings.ToLower(sf.Name)
		}
		keys = append(keys, key)
	}
	return keys
}

func structValues(rv reflect.Value) [][]string {
	maxLen := 1
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.Slice && f.Len() > maxLen {
			maxLen = f.Len()
		}
	}

	var vals [][]string
	for i := 0; i < maxLen; i++ {
		row := make([]string, rv.NumField())
		for j := 0; j < rv.NumField(); j++ {
			f := rv.Field(j)
			if f.Kind() == reflect.Slice {
				if f.Len() > i {
					row[j] = fmt.Sprint(f.Index(i).Interface())
				}
			} else {
				row[j] = fmt.Sprint(f.Interface())
			}
		}
		vals = append(vals, row)
	}
	return vals
}
