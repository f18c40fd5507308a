package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"eazypaste/pkg/combine"
	"eazypaste/pkg/settings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrNoFiles is returned when neither arguments nor settings name any file.
var ErrNoFiles = errors.New("no files given and no selected files in settings")

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

type combineOptions struct {
	root     string
	output   string
	toClip   bool
	task     string
	intro    string
	withTree bool
	save     bool
}

// newCombineCommand creates the 'eazypaste combine' command, which assembles intro
// rules, file contents and the task into one prompt.
func newCombineCommand(a *app) *cobra.Command {
	var opts combineOptions

	cmd := &cobra.Command{
		Use:   "combine [files...]",
		Short: "Assemble a prompt from intro rules, selected files and a task",
		Long: `Assemble a prompt from the intro rules, the contents of the given files (or the
saved selection) and the task. The prompt is printed unless --output or
--clipboard is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCombine(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.root, "root", "", "Folder file paths are shown relative to (default is the last folder)")
	f.StringVarP(&opts.output, "output", "o", "", "Write the prompt to this file")
	f.BoolVarP(&opts.toClip, "clipboard", "c", false, "Copy the prompt to the clipboard")
	f.StringVar(&opts.task, "task", "", "Task text (default is the saved task)")
	f.StringVar(&opts.intro, "intro", "", "Intro rules text (default is the saved rules)")
	f.BoolVar(&opts.withTree, "tree", false, "Include a structure section listing the files")
	f.BoolVar(&opts.save, "save", false, "Save the files and task as the current selection")
	return cmd
}

func (a *app) runCombine(cmd *cobra.Command, args []string, opts combineOptions) error {
	store, st, err := a.load()
	if err != nil {
		return err
	}

	files := st.SelectedFiles
	if len(args) > 0 {
		files = make([]string, 0, len(args))
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", arg, err)
			}
			files = append(files, abs)
		}
	}

	req := combine.Request{
		Root:         st.LastFolderPath,
		Files:        files,
		IntroRules:   st.IntroRules,
		UserTask:     st.UserTask,
		IncludeTree:  opts.withTree,
		MaxWorkers:   st.MaxWorkers,
		MaxFileBytes: st.FilterConfig().MaxSearchFileBytes,
	}
	if opts.root != "" {
		if req.Root, err = filepath.Abs(opts.root); err != nil {
			return fmt.Errorf("failed to resolve root: %w", err)
		}
	}
	if cmd.Flags().Changed("intro") {
		req.IntroRules = opts.intro
	}
	if cmd.Flags().Changed("task") {
		req.UserTask = opts.task
	}
	if len(req.Files) == 0 && req.UserTask == "" {
		return ErrNoFiles
	}

	if opts.save {
		_, err := store.Update(func(s *settings.Settings) {
			s.SelectedFiles = req.Files
			s.UserTask = req.UserTask
		})
		if err != nil {
			a.logger.Warn("Failed to save selection", zap.Error(err))
		}
	}

	prompt, err := combine.Assemble(cmd.Context(), req, a.logger)
	if err != nil {
		return err
	}

	written := false
	if opts.output != "" {
		if err := combine.WriteCombinedFile(opts.output, prompt, a.logger); err != nil {
			return err
		}
		written = true
	}
	if opts.toClip {
		if err := copyToClipboard(prompt); err != nil {
			return fmt.Errorf("failed to copy prompt to clipboard: %w", err)
		}
		written = true
	}
	if !written {
		printf(cmd.OutOrStdout(), "%s", prompt)
	}
	return nil
}
