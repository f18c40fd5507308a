package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"eazypaste/pkg/combine"
	"eazypaste/pkg/reconcile"
	"eazypaste/pkg/tree"
	"eazypaste/pkg/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newWatchCommand creates the 'eazypaste watch' command, which prints the tree and
// then every change to it until interrupted.
func newWatchCommand(a *app) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "watch [folder]",
		Short: "Print the filtered tree and follow changes to it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, st, err := a.load()
			if err != nil {
				return err
			}
			folder, err := a.resolveFolder(store, st, args)
			if err != nil {
				return err
			}
			cfg := filters.apply(cmd, st.FilterConfig())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			rec := reconcile.New(folder, cfg, a.logger, reconcile.WithBuilder(a.newBuilder(st)))
			return a.follow(ctx, cmd, folder, rec, cfg.HiddenList)
		},
	}

	filters.register(cmd)
	return cmd
}

// follow renders the tree, then prints each change applied by rec until ctx ends.
// The watch starts before the initial build so changes made while building are
// replayed onto the new tree.
func (a *app) follow(ctx context.Context, cmd *cobra.Command, folder string, rec *reconcile.Reconciler, hidden []string) error {
	session := watch.NewSession(a.logger)
	events, err := session.Start(folder, hidden)
	if err != nil {
		// A missing or unreadable folder reports the typed build error.
		if buildErr := rec.Rebuild(ctx); buildErr != nil {
			return buildErr
		}
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			a.logger.Warn("Failed to stop watch session", zap.Error(err))
		}
	}()

	if err := rec.Rebuild(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := tree.RenderOptions{Color: colorEnabled(out)}
	if err := tree.Render(out, folder, rec.Snapshot(), opts); err != nil {
		return err
	}

	changes := rec.Subscribe()
	defer rec.Unsubscribe(changes)

	runErr := make(chan error, 1)
	go func() { runErr <- rec.Run(ctx, events) }()

	for {
		select {
		case err := <-runErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case c := <-changes:
			switch c.Op {
			case reconcile.Added:
				printf(out, "+ %s\n", displayPath(folder, c))
			case reconcile.Removed:
				printf(out, "- %s\n", displayPath(folder, c))
			case reconcile.Replaced:
				if err := tree.Render(out, folder, rec.Snapshot(), opts); err != nil {
					return err
				}
			}
		}
	}
}

func displayPath(folder string, c reconcile.Change) string {
	p := combine.RelativePath(folder, c.Path)
	if c.IsDirectory {
		p += "/"
	}
	return p
}
