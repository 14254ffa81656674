package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/userdesk/internal/core"
	"github.com/target/userdesk/internal/service"
)

type clearSessionsOptions struct {
	Session string
	All     bool
	DryRun  bool
}

func withStateStore(cc *commandContext, fn func(core.StateStore) error) (err error) {
	store, closeFn, err := cc.newStateStore(cc)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer func() {
			if cerr := closeFn(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close state store: %w", cerr))
			}
		}()
	}
	return fn(store)
}

func runListSessions(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(cc.Err)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withStateStore(cc, func(store core.StateStore) error {
		sessions, err := store.List(cc.Ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		w := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
		if err := writeln(w, "Session\tUsers\tEditing\tExpires"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, s := range sessions {
			expires := "-"
			if !s.ExpiresAt.IsZero() {
				expires = s.ExpiresAt.UTC().Format(time.RFC3339)
			}
			if err := writef(w, "%s\t%d\t%t\t%s\n", s.ID, s.Users, s.Editing, expires); err != nil {
				return fmt.Errorf("write session %s: %w", s.ID, err)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
		return writef(cc.Out, "%d session(s)\n", len(sessions))
	})
}

func runClearSessions(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("clear-sessions", flag.ContinueOnError)
	fs.SetOutput(cc.Err)

	var opts clearSessionsOptions
	fs.StringVar(&opts.Session, "session", "", "Session ID to clear")
	fs.BoolVar(&opts.All, "all", false, "Clear every stored session")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be cleared")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts.Session = strings.TrimSpace(opts.Session)
	if opts.All == (opts.Session != "") {
		return errors.New("exactly one of -session or -all is required")
	}

	return withStateStore(cc, func(store core.StateStore) error {
		targets := []string{opts.Session}
		if opts.All {
			sessions, err := store.List(cc.Ctx)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			targets = targets[:0]
			for _, s := range sessions {
				targets = append(targets, s.ID)
			}
		}

		api, err := cc.newUsersAPI(cc)
		if err != nil {
			return fmt.Errorf("create users api client: %w", err)
		}
		svc := service.NewUserListService(service.UserListServiceOptions{
			API:    api,
			Store:  store,
			Config: service.UserListConfig{Logger: cc.Logger},
		})

		verb := "cleared"
		if opts.DryRun {
			verb = "would clear"
		}
		for _, id := range targets {
			if !opts.DryRun {
				if err := svc.Reset(cc.Ctx, id); err != nil {
					return fmt.Errorf("clear session %s: %w", id, err)
				}
			}
			if err := writef(cc.Out, "%s %s\n", verb, id); err != nil {
				return err
			}
		}
		return writef(cc.Out, "%s %d session(s)\n", verb, len(targets))
	})
}
