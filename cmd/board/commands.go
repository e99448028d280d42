package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"taskmanager/internal/board"
	"taskmanager/internal/client"
	"taskmanager/internal/logging"
)

type options struct {
	apiURL   string
	email    string
	password string
	token    string
	timeout  time.Duration
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// NewRootCommand creates the board command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "board",
		Short:         "Kanban view of your tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", envOr("TASKMANAGER_API_URL", "http://localhost:8080"), "task manager API base URL")
	flags.StringVarP(&opts.email, "email", "e", os.Getenv("TASKMANAGER_EMAIL"), "login email")
	flags.StringVarP(&opts.password, "password", "p", os.Getenv("TASKMANAGER_PASSWORD"), "login password")
	flags.StringVar(&opts.token, "token", os.Getenv("TASKMANAGER_TOKEN"), "bearer token; skips login when set")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall request timeout")

	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	return cmd
}

// NewShowCommand prints the board.
func NewShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show tasks grouped into todo, inProgress and done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			b, err := loadBoard(ctx, opts)
			if err != nil {
				return err
			}
			render(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

// NewMoveCommand moves one task to a column slot.
func NewMoveCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move <taskId> <column> <index>",
		Short: "Move a task to a position in a column",
		Long:  "Move a task to a position in a column. Moving to another column changes the task status on the server.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			column, err := board.ParseColumn(args[1])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[2])
			if err != nil || index < 0 {
				return fmt.Errorf("invalid index %q", args[2])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			b, err := loadBoard(ctx, opts)
			if err != nil {
				return err
			}
			src, ok := b.Find(id)
			if !ok {
				return fmt.Errorf("task %s is not on the board", id)
			}

			moved, err := b.Move(ctx, board.DropResult{
				TaskID:      id,
				Source:      src,
				Destination: &board.Location{Column: column, Index: index},
			})
			if err != nil {
				return err
			}
			b.Wait()

			if !moved {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to move")
			}
			render(cmd.OutOrStdout(), b)
			return nil
		},
	}
}

func loadBoard(ctx context.Context, opts *options) (*board.Board, error) {
	log := logging.New(envOr("LOG_LEVEL", "warn"), envOr("LOG_FORMAT", "text"))

	api := client.New(opts.apiURL, client.WithToken(opts.token))
	if api.Token() == "" {
		if opts.email == "" || opts.password == "" {
			return nil, fmt.Errorf("--email and --password (or --token) are required")
		}
		if _, err := api.Login(ctx, opts.email, opts.password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}

	tasks, err := api.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	log.WithFields(logrus.Fields{"count": len(tasks)}).Debug("loaded tasks")
	return board.New(tasks, api, log), nil
}

func render(w io.Writer, b *board.Board) {
	for _, c := range board.Columns {
		tasks := b.Column(c)
		fmt.Fprintf(w, "%s (%d)\n", c, len(tasks))
		for i, t := range tasks {
			fmt.Fprintf(w, "  %d. %s  %s  [%s]\n", i, t.ID, t.Title, t.Priority)
		}
	}
}
