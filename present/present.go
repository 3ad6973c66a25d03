// Package present defines presenters for formatting command output.
package present

// Presenter formats a view value for displaying it.
type Presenter interface {
	// Format receives a view v and returns the formatted output as string.
	Format(v interface{}) (string, error)
}
