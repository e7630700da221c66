package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/spf13/cobra"
	"github.com/swarmnode-ai/swarmnode-go/pkg/resources"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmcli"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
	"gopkg.in/yaml.v3"
)

// ErrUnknownKind is returned for a resource name the CLI does not know
var ErrUnknownKind = errors.New("unknown resource kind")

// ErrInvalidPayload is returned when --payload is not valid JSON
var ErrInvalidPayload = errors.New("payload is not valid JSON")

// ErrInvalidOutput is returned for an unsupported --output format
var ErrInvalidOutput = errors.New("invalid output format")

var kindNames = []string{
	"agents",
	"agent-builder-jobs",
	"agent-executor-jobs",
	"agent-executor-cron-jobs",
	"builds",
	"stores",
	"executions",
}

type listFlags struct {
	page     int
	pageSize int
	agentID  string
	jobID    string
	all      bool
}

func (f listFlags) pageOptions() swarmnode.PageOptions {
	return swarmnode.PageOptions{Page: f.page, PageSize: f.pageSize}
}

func newListCmd(a *app) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:       "list <kind>",
		Short:     "List resources",
		Long:      "List resources of one kind. Kinds: " + strings.Join(kindNames, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			return listKind(cmd.Context(), client, args[0], flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&flags.page, "page", swarmnode.DefaultPage, "Page number")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", swarmnode.DefaultPageSize, "Page size")
	cmd.Flags().StringVar(&flags.agentID, "agent-id", "", "Only resources of this agent")
	cmd.Flags().StringVar(&flags.jobID, "job-id", "", "Only resources of this agent executor job")
	cmd.Flags().BoolVar(&flags.all, "all", false, "Follow next links until the last page")

	return cmd
}

func listKind(ctx context.Context, c *resources.Client, kind string, f listFlags, out io.Writer) error {
	switch kind {
	case "agents":
		page, err := c.Agents.List(ctx, f.pageOptions())
		return writePage(ctx, out, page, err, f.all)
	case "agent-builder-jobs":
		page, err := c.AgentBuilderJobs.List(ctx, f.agentID, f.pageOptions())
		return writePage(ctx, out, page, err, f.all)
	case "agent-executor-jobs":
		cursor, err := c.AgentExecutorJobs.List(ctx, f.agentID)
		return writeCursor(ctx, out, cursor, err, f.all)
	case "agent-executor-cron-jobs":
		page, err := c.AgentExecutorCronJobs.List(ctx, f.agentID, f.pageOptions())
		return writePage(ctx, out, page, err, f.all)
	case "builds":
		page, err := c.Builds.List(ctx, f.jobID, f.pageOptions())
		return writePage(ctx, out, page, err, f.all)
	case "stores":
		page, err := c.Stores.List(ctx, f.agentID, f.pageOptions())
		return writePage(ctx, out, page, err, f.all)
	case "executions":
		cursor, err := c.Executions.List(ctx, resources.ExecutionFilter{
			AgentID:            f.agentID,
			AgentExecutorJobID: f.jobID,
		})
		return writeCursor(ctx, out, cursor, err, f.all)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func writePage[T any](ctx context.Context, out io.Writer, page *swarmcli.Page[T], err error, all bool) error {
	if err != nil {
		return err
	}
	if !all {
		return writeItems(out, page.Results())
	}
	return writeSeq(out, page.All(ctx))
}

func writeCursor[T any](ctx context.Context, out io.Writer, cursor *swarmcli.Cursor[T], err error, all bool) error {
	if err != nil {
		return err
	}
	if !all {
		return writeItems(out, cursor.Results())
	}
	return writeSeq(out, cursor.All(ctx))
}

func writeItems[T any](out io.Writer, items []T) error {
	enc := json.NewEncoder(out)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func writeSeq[T any](out io.Writer, seq iter.Seq2[T, error]) error {
	enc := json.NewEncoder(out)
	for item, err := range seq {
		if err != nil {
			return err
		}
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func newGetCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "get <kind> <id>",
		Short:     "Show one resource",
		Args:      cobra.ExactArgs(2),
		ValidArgs: kindNames,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return validateOutput(output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			item, err := retrieveKind(cmd.Context(), client, args[0], args[1])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, item)
		},
	}

	addOutputFlag(cmd, &output)

	return cmd
}

func retrieveKind(ctx context.Context, c *resources.Client, kind, id string) (any, error) {
	switch kind {
	case "agents":
		return c.Agents.Retrieve(ctx, id)
	case "agent-builder-jobs":
		return c.AgentBuilderJobs.Retrieve(ctx, id)
	case "agent-executor-jobs":
		return c.AgentExecutorJobs.Retrieve(ctx, id)
	case "agent-executor-cron-jobs":
		return c.AgentExecutorCronJobs.Retrieve(ctx, id)
	case "builds":
		return c.Builds.Retrieve(ctx, id)
	case "stores":
		return c.Stores.Retrieve(ctx, id)
	case "executions":
		return c.Executions.Retrieve(ctx, id)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

func newRunCmd(a *app) *cobra.Command {
	var payload, output string

	cmd := &cobra.Command{
		Use:   "run <agent-id>",
		Short: "Execute an agent and wait for its result",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return validateOutput(output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if payload != "" {
				if !json.Valid([]byte(payload)) {
					return ErrInvalidPayload
				}
				body = json.RawMessage(payload)
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			execution, err := client.Run(cmd.Context(), args[0], body)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, execution)
		},
	}

	cmd.Flags().StringVar(&payload, "payload", "", "JSON payload passed to the agent")
	addOutputFlag(cmd, &output)

	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch <address>",
		Short: "Print execution frames as they arrive",
		Long: `Print the frames of an execution stream, one per line, until the server
closes it. With --once, wait for the single result frame of an execution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if once {
				frame, err := client.Executions.Listen(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, frame)
				return err
			}

			for frame, err := range client.Executions.Stream(cmd.Context(), args[0]) {
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(out, frame); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Wait for a single result frame")

	return cmd
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", "json", "Output format: json|yaml")
	_ = cmd.RegisterFlagCompletionFunc(
		"output",
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
		},
	)
}

// validateOutput rejects an unsupported format before any request is made
func validateOutput(format string) error {
	switch format {
	case "", "json", "yaml":
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidOutput, format)
}

// writeOutput prints one record. YAML goes through the JSON form so field
// names match the API.
func writeOutput(out io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOutput, format)
	}
}
