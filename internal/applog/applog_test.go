package applog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/ralex1975/shadowbackup/internal/console"
)

func TestLoggerRoutesThroughConsole(t *testing.T) {
	var buf bytes.Buffer
	con := console.New(&buf, 0)

	log := New(logrus.InfoLevel, false, con)
	log.Infof("shadow created for %s", "docs/report.txt")
	con.Close()

	assert.Contains(t, buf.String(), "shadow created for docs/report.txt")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	con := console.New(&buf, 0)

	log := New(logrus.WarnLevel, false, con)
	log.Debugf("should not appear")
	log.Warnf("should appear")
	con.Close()

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	con := console.New(&buf, 0)

	log := New(logrus.InfoLevel, true, con)
	log.WithPath("a/b.txt").Info("backuped")
	con.Close()

	out := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(out, "{"), "json-log output must be a JSON object: %q", out)
	assert.Contains(t, out, `"path":"a/b.txt"`)
}

func TestColorForLevels(t *testing.T) {
	assert.Equal(t, console.Red, colorFor(logrus.ErrorLevel))
	assert.Equal(t, console.Yellow, colorFor(logrus.WarnLevel))
	assert.Equal(t, console.Green, colorFor(logrus.InfoLevel))
	assert.Equal(t, console.Default, colorFor(logrus.DebugLevel))
}

func TestWithPathAddsField(t *testing.T) {
	var buf bytes.Buffer
	con := console.New(&buf, 0)
	log := New(logrus.InfoLevel, true, con)

	log.WithPath("x.txt").Info("event")
	con.Close()

	assert.Contains(t, buf.String(), `"path":"x.txt"`)
}
