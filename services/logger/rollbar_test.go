package logsvc

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joesive47/skillnexus-lms-sub005/core"
)

func TestRollbarLogger_fatalPrintsContextBeforeExit(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), core.Conf)
	logger.Enable(false)

	var exitCode int
	exitFunc = func(code int) { exitCode = code }
	defer func() { exitFunc = os.Exit }()

	logger.Fatal("database unreachable", map[string]interface{}{"host": "db.local"})

	out := buf.String()
	assert.Contains(t, out, "database unreachable")
	assert.Contains(t, out, "db.local", "fatal context args must reach the std logger")
	assert.Equal(t, 1, exitCode)
}
