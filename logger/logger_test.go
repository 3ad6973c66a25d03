package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yonagi/bridgen/logger"
)

func TestSetOutput(t *testing.T) {
	t.Run("logger must write debug lines to w after SetOutput", func(t *testing.T) {
		defer logger.Reset()
		w := new(bytes.Buffer)
		logger.SetOutput(w)
		logger.Printf("loaded %d schemas", 3)
		assert.Contains(t, w.String(), "loaded 3 schemas")
	})

	t.Run("logger must write warnings to w after SetOutput", func(t *testing.T) {
		defer logger.Reset()
		w := new(bytes.Buffer)
		logger.SetOutput(w)
		logger.Warnf("duplicate message name %q", "Project")
		assert.Contains(t, w.String(), `duplicate message name "Project"`)
	})

	t.Run("logger must not write debug lines before SetOutput", func(t *testing.T) {
		defer logger.Reset()
		w := new(bytes.Buffer)
		logger.Printf("this line is suppressed")
		assert.Empty(t, w.String())
	})
}
