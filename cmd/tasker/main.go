package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pbaille/tasker/internal/config"
	"github.com/pbaille/tasker/internal/domain"
	"github.com/pbaille/tasker/internal/logger"
	"github.com/pbaille/tasker/internal/store"
	"github.com/pbaille/tasker/internal/tasks"
	"github.com/spf13/cobra"
)

// set with -ldflags at build time
var (
	version = "dev"
	commit  = "none"
)

const dateLayout = "2006-01-02"

func main() {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrMissingDatabaseFile) {
		home, _ := os.UserHomeDir()
		fmt.Fprint(os.Stderr, config.Remediation(home))
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	a := &app{cfg: cfg, log: log.With(logger.String("db", cfg.DatabaseFile))}

	rootCmd := &cobra.Command{
		Use:           "tasker",
		Short:         "Personal task tracker",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(a.addCmd())
	rootCmd.AddCommand(a.listCmd())
	rootCmd.AddCommand(a.showCmd())
	rootCmd.AddCommand(a.tagsCmd())
	rootCmd.AddCommand(a.statusCmd())
	rootCmd.AddCommand(a.retagCmd())
	rootCmd.AddCommand(a.deleteCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", logger.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		log.Sync()
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config
	log logger.Logger
}

// open connects to the database and builds the task service on top of it.
// The returned gateway must be closed by the caller.
func (a *app) open(ctx context.Context) (*store.Gateway, *tasks.Service, error) {
	seeds := make([]domain.Tag, len(a.cfg.SeedTags))
	for i, s := range a.cfg.SeedTags {
		seeds[i] = domain.Tag{Title: domain.TagTitle(s.Title), IsDefault: s.Default}
	}

	gw, err := store.Open(ctx, a.cfg.DatabaseFile, store.WithSeedTags(seeds), store.WithLogger(a.log))
	if err != nil {
		return nil, nil, err
	}

	tags := store.NewTags(gw)
	entries := store.NewTaskEntries(gw, tags, store.NewLinks(gw))
	return gw, tasks.New(entries, tags, tasks.WithLogger(a.log)), nil
}

func (a *app) addCmd() *cobra.Command {
	var (
		notes string
		tags  []string
		links []string
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task for today",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gw, svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			res, err := svc.CreateTask(ctx, tasks.NewTask{
				Title: strings.Join(args, " "),
				Notes: notes,
				Tags:  tags,
				Links: links,
			})
			if err != nil {
				return err
			}

			if res.Duplicate {
				fmt.Fprintln(cmd.OutOrStdout(), "Task already exists for today:")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Added task:")
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntry(res.Entry))
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
	cmd.Flags().StringSliceVarP(&tags, "tags", "g", nil, "tags, comma or space separated (default tag when empty)")
	cmd.Flags().StringArrayVarP(&links, "link", "l", nil, "link to attach, repeatable")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var (
		from, to string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks created in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(from)
			if err != nil {
				return err
			}
			end, err := parseDate(to)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			gw, svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			entries, err := svc.ListTasks(ctx, start, end, tags)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found. Use 'tasker add' to create one.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntries(entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "first day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&to, "to", "t", "", "last day, YYYY-MM-DD (default open ended)")
	cmd.Flags().StringSliceVarP(&tags, "tags", "g", nil, "only tasks with any of these tags")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its tags and links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gw, svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			entry, err := svc.GetTask(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntry(entry))
			return nil
		},
	}
}

func (a *app) tagsCmd() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gw, svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			tags, err := svc.ListTags(ctx, page, size)
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags on this page.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTags(tags))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&size, "size", 0, "page size (0 lists every tag)")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the status of a task (created, started, delayed, rejected, completed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			gw, svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			entry, err := svc.SetStatus(ctx, args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntry(entry))
			return nil
		},
	}
}

func (a *app) retagCmd() *cobra.Command {
	var (
		tags       []string
		narrowTags bool
	)

	cmd := &cobra.Command{
		Use:   "retag <id>",
		Short: "Replace the tags of a task, or narrow them to a subset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy := store.TagsReplace
			if narrowTags {
				policy = store.TagsNarrow
			}

			ctx := cmd.Context()
			gw, svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			entry, err := svc.RetagTask(ctx, args[0], tags, policy)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntry(entry))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tags", "g", nil, "new tags (default tag when empty)")
	cmd.Flags().BoolVar(&narrowTags, "narrow", false, "keep only the given tags the task already has")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and its links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			gw, svc, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer gw.Close()

			if err := svc.DeleteTask(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// parseDate reads a YYYY-MM-DD day in local time. Empty means unset.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}
