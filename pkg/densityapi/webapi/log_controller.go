package webapi

import (
	"io"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/materials-commons/partdensity/pkg/apperr"
	"github.com/materials-commons/partdensity/pkg/clog"
	"github.com/pkg/errors"
)

// LogController changes the level and destination of the daemon's logging
// contexts at runtime.
type LogController struct {
	mu      sync.Mutex
	outputs map[string]string
}

type LoggingState struct {
	Context string `json:"context"`
	Level   string `json:"level"`
	Output  string `json:"output"`
}

func NewLogController() *LogController {
	return &LogController{outputs: map[string]string{clog.GlobalLoggerCtx: "stdout"}}
}

func (c *LogController) SetLogging(ctx echo.Context) error {
	var req LoggingState

	if err := ctx.Bind(&req); err != nil {
		return err
	}

	if req.Context == "" {
		req.Context = clog.GlobalLoggerCtx
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Output != "" {
		if err := c.setOutput(req.Context, req.Output); err != nil {
			return err
		}
	}

	if req.Level != "" {
		if _, known := c.outputs[req.Context]; !known {
			return apperr.Validationf("logging context %s has no output of its own, set one first", req.Context)
		}

		if err := clog.SetLevelFromString(req.Context, req.Level); err != nil {
			return apperr.Validationf("invalid log level %s", req.Level)
		}
	}

	return ctx.JSON(http.StatusOK, c.state(req.Context))
}

func (c *LogController) setOutput(logCtx, output string) error {
	var w io.Writer
	switch output {
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrapf(err, "Failed to open log output %s", output)
		}
		w = f
	}

	clog.SetOutput(logCtx, w)
	c.outputs[logCtx] = output
	return nil
}

func (c *LogController) state(logCtx string) LoggingState {
	return LoggingState{Context: logCtx, Level: clog.Level(logCtx).String(), Output: c.outputs[logCtx]}
}

func (c *LogController) ShowLogging(ctx echo.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	contexts := make([]string, 0, len(c.outputs))
	for logCtx := range c.outputs {
		contexts = append(contexts, logCtx)
	}
	sort.Strings(contexts)

	states := make([]LoggingState, 0, len(contexts))
	for _, logCtx := range contexts {
		states = append(states, c.state(logCtx))
	}

	return ctx.JSON(http.StatusOK, states)
}
