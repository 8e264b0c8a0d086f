package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithOperation(logger, "refresh_token").Info("refreshing")

	out := buf.String()
	assert.Contains(t, out, "operation=refresh_token")
	assert.Contains(t, out, "refreshing")
}

func TestWithTool(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	WithTool(logger, "ticktick_get_task").Info("invoked")

	assert.Contains(t, buf.String(), "tool=ticktick_get_task")
}

func TestErr(t *testing.T) {
	t.Run("nil error omitted", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		logger.Info("done", Err(nil))

		assert.NotContains(t, buf.String(), "error=")
	})

	t.Run("non-nil error included", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		logger.Info("done", Err(assert.AnError))

		assert.Contains(t, buf.String(), "error=")
	})
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty", "", "<empty>"},
		{"short", "abc", "[token:3 chars]"},
		{"long", strings.Repeat("x", 128), "[token:128 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.token)
			assert.Equal(t, tt.want, got)
			// The raw token must never leak into the sanitized form.
			if tt.token != "" {
				assert.NotContains(t, got, tt.token)
			}
		})
	}
}

func TestAttributeHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("api call",
		Operation("get_project"),
		Region("china"),
		Status(StatusSuccess),
		Project("p1"),
		Task("t1"),
	)

	out := buf.String()
	assert.Contains(t, out, "operation=get_project")
	assert.Contains(t, out, "region=china")
	assert.Contains(t, out, "status=success")
	assert.Contains(t, out, "project_id=p1")
	assert.Contains(t, out, "task_id=t1")
}
