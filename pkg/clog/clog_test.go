package clog

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/require"
)

func TestHandlerSortsFields(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)
	h.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }

	logger := &log.Logger{Handler: h, Level: log.DebugLevel}
	logger.WithFields(log.Fields{"part_code": "P-100", "rows": 3}).Info("lot computed")

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "INFO 2026-10-19 08:30:00 lot computed"))
	require.True(t, strings.HasSuffix(line, "part_code=P-100 rows=3"))
}

func TestContextLoggerRoutesByContext(t *testing.T) {
	var global, lot bytes.Buffer
	l := NewContextLogger(&global)
	l.AddLoggingContext("lot", &lot)

	l.UsingCtx("lot").Info("from lot")
	l.UsingCtx("api").Info("from api")

	require.Contains(t, lot.String(), "from lot")
	require.Contains(t, lot.String(), "ctx=lot")
	require.Contains(t, global.String(), "from api")
	require.NotContains(t, global.String(), "from lot")

	require.NoError(t, l.SetLevelFromString("lot", "error"))
	l.UsingCtx("lot").Info("suppressed")
	require.NotContains(t, lot.String(), "suppressed")

	l.RemoveLoggingContext("lot")
	l.UsingCtx("lot").Info("back to global")
	require.Contains(t, global.String(), "back to global")

	require.Error(t, l.SetLevelFromString(GlobalLoggerCtx, "loud"))
}

func TestContextLoggerSetOutput(t *testing.T) {
	var first, second, api bytes.Buffer
	l := NewContextLogger(&first)

	l.SetOutput(GlobalLoggerCtx, &second)
	l.Global().Info("moved")
	require.Empty(t, first.String())
	require.Contains(t, second.String(), "moved")

	l.SetOutput("api", &api)
	l.SetLevel("api", log.WarnLevel)
	require.Equal(t, log.WarnLevel, l.Level("api"))
	require.Equal(t, log.InfoLevel, l.Level("lot"))
}

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { _ = Setup(os.Stdout, "info") })

	require.Error(t, Setup(&buf, "bogus"))

	require.NoError(t, Setup(&buf, "warn"))
	require.Equal(t, log.WarnLevel, Level(GlobalLoggerCtx))

	Global().Info("hidden")
	Global().Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}
