// Package combine assembles a prompt from intro rules, selected files and a task.
package combine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eazypaste/pkg/filter"
	"eazypaste/pkg/tree"

	"go.uber.org/zap"
)

// Assemble reads the requested files and returns the prompt text: the intro rules,
// an optional structure section, one section per file in request order, and the
// task. Empty parts are omitted. Unreadable files yield an empty section.
func Assemble(ctx context.Context, req Request, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	startTime := time.Now()
	logger.Debug("Starting prompt assembly", zap.String("root", req.Root), zap.Int("files", len(req.Files)))

	reader := req.Reader
	if reader == nil {
		reader = filter.DiskReader{MaxBytes: req.MaxFileBytes}
	}

	contents, err := ProcessFilesConcurrently(ctx, req.Files, req.MaxWorkers, req.Root, reader, logger)
	if err != nil {
		return "", fmt.Errorf("failed to process files: %w", err)
	}

	var out strings.Builder
	if intro := strings.TrimRight(req.IntroRules, "\n"); intro != "" {
		out.WriteString(intro)
		out.WriteString("\n")
	}

	if req.IncludeTree && len(req.Files) > 0 {
		label := BaseName(req.Root)
		if req.Root == "" {
			label = "."
		}
		out.WriteString(sectionHeader("Structure"))
		out.WriteString(tree.RenderString(label, SelectionTree(req.Root, req.Files)))
	}

	for _, c := range contents {
		out.WriteString(c.Content)
	}

	if task := strings.TrimRight(req.UserTask, "\n"); task != "" {
		out.WriteString(sectionHeader("Task"))
		out.WriteString(task)
		out.WriteString("\n")
	}

	logger.Info("Assembled prompt",
		zap.Int("files", len(contents)),
		zap.Int("bytes", out.Len()),
		zap.Duration("elapsed", time.Since(startTime)))
	return strings.TrimLeft(out.String(), "\n"), nil
}
