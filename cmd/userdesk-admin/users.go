package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/target/userdesk/internal/domain/model"
)

const deleteConcurrency = 4

type listUsersOptions struct {
	JSON bool
}

type userFormOptions struct {
	ID       int64
	Username string
	Email    string
}

type deleteUsersOptions struct {
	IDs []int64
	Yes bool
}

func runListUsers(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	fs.SetOutput(cc.Err)

	var opts listUsersOptions
	fs.BoolVar(&opts.JSON, "json", false, "Print the list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	api, err := cc.newUsersAPI(cc)
	if err != nil {
		return err
	}
	users, err := api.List(cc.Ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if opts.JSON {
		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}
	return printUsers(cc, users)
}

func printUsers(cc *commandContext, users []model.User) error {
	w := tabwriter.NewWriter(cc.Out, 0, 4, 2, ' ', 0)
	if err := writeln(w, "ID\tUsername\tEmail"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, u := range users {
		if err := writef(w, "%s\t%s\t%s\n", u.DisplayID(), u.Username, u.Email); err != nil {
			return fmt.Errorf("write user %d: %w", u.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return writef(cc.Out, "%d Users\n", len(users))
}

func parseUserForm(cc *commandContext, name string, args []string, wantID bool) (userFormOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cc.Err)

	var opts userFormOptions
	if wantID {
		fs.Int64Var(&opts.ID, "id", 0, "User ID (required)")
	}
	fs.StringVar(&opts.Username, "username", "", "Username")
	fs.StringVar(&opts.Email, "email", "", "Email address")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if wantID && opts.ID <= 0 {
		return opts, errors.New("-id must be a positive integer")
	}
	return opts, nil
}

func runCreateUser(cc *commandContext, args []string) error {
	opts, err := parseUserForm(cc, "create-user", args, false)
	if err != nil {
		return err
	}
	api, err := cc.newUsersAPI(cc)
	if err != nil {
		return err
	}
	u, err := api.Create(cc.Ctx, model.NewUserInput(opts.Username, opts.Email))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return writef(cc.Out, "created %s %s <%s>\n", u.DisplayID(), u.Username, u.Email)
}

func runUpdateUser(cc *commandContext, args []string) error {
	opts, err := parseUserForm(cc, "update-user", args, true)
	if err != nil {
		return err
	}
	api, err := cc.newUsersAPI(cc)
	if err != nil {
		return err
	}
	u, err := api.Update(cc.Ctx, opts.ID, model.NewUserInput(opts.Username, opts.Email))
	if err != nil {
		return fmt.Errorf("update user %d: %w", opts.ID, err)
	}
	return writef(cc.Out, "updated %s %s <%s>\n", u.DisplayID(), u.Username, u.Email)
}

func runDeleteUser(cc *commandContext, args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ContinueOnError)
	fs.SetOutput(cc.Err)

	var (
		opts   deleteUsersOptions
		rawIDs string
	)
	fs.StringVar(&rawIDs, "id", "", "Comma-separated user IDs (required)")
	fs.BoolVar(&opts.Yes, "yes", false, "Confirm the deletion")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ids, err := parseIDs(rawIDs)
	if err != nil {
		return err
	}
	opts.IDs = ids
	if !opts.Yes {
		return fmt.Errorf("refusing to delete %d user(s) without -yes", len(opts.IDs))
	}

	api, err := cc.newUsersAPI(cc)
	if err != nil {
		return err
	}

	results := make([]error, len(opts.IDs))
	g, ctx := errgroup.WithContext(cc.Ctx)
	g.SetLimit(deleteConcurrency)
	for i, id := range opts.IDs {
		g.Go(func() error {
			results[i] = api.Delete(ctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs []error
	for i, id := range opts.IDs {
		if results[i] != nil {
			errs = append(errs, fmt.Errorf("delete user %d: %w", id, results[i]))
			continue
		}
		if err := writef(cc.Out, "deleted #%d\n", id); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]bool)
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(part, "#"), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid user id %q", part)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("-id is required")
	}
	return ids, nil
}
