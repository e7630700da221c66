package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmcli"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
)

// Client groups the resource services over one transport
type Client struct {
	Agents                *Agents
	AgentBuilderJobs      *AgentBuilderJobs
	AgentExecutorJobs     *AgentExecutorJobs
	AgentExecutorCronJobs *AgentExecutorCronJobs
	Builds                *Builds
	Stores                *Stores
	Executions            *Executions
}

// New creates a Client backed by an HTTP transport reading cfg on every call
func New(cfg *swarmnode.Config, options ...swarmcli.Option) (*Client, error) {
	transport, err := swarmcli.NewHTTPClient(cfg, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	return NewWithTransport(transport), nil
}

// NewWithTransport creates a Client over an existing transport
func NewWithTransport(t Transport) *Client {
	return &Client{
		Agents:                &Agents{Mutable[swarmnode.Agent]{NewResource[swarmnode.Agent](t, agentMeta)}},
		AgentBuilderJobs:      &AgentBuilderJobs{NewResource[swarmnode.AgentBuilderJob](t, agentBuilderJobMeta)},
		AgentExecutorJobs:     &AgentExecutorJobs{NewResource[swarmnode.AgentExecutorJob](t, agentExecutorJobMeta)},
		AgentExecutorCronJobs: &AgentExecutorCronJobs{Mutable[swarmnode.AgentExecutorCronJob]{NewResource[swarmnode.AgentExecutorCronJob](t, agentExecutorCronJobMeta)}, t},
		Builds:                &Builds{NewResource[swarmnode.Build](t, buildMeta)},
		Stores:                &Stores{Mutable[swarmnode.Store]{NewResource[swarmnode.Store](t, storeMeta)}},
		Executions:            &Executions{NewResource[swarmnode.Execution](t, executionMeta), t},
	}
}

// Run creates an executor job for the agent and waits for its execution result
func (c *Client) Run(ctx context.Context, agentID string, payload any) (*swarmnode.Execution, error) {
	job, err := c.AgentExecutorJobs.Create(ctx, agentID, payload)
	if err != nil {
		return nil, err
	}

	slog.Debug("Agent executor job created", "id", job.ID, "address", job.ExecutionAddress)

	frame, err := c.Executions.Listen(ctx, job.ExecutionAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to receive execution result for job %s: %w", job.ID, err)
	}

	var execution swarmnode.Execution
	if err := json.Unmarshal([]byte(frame), &execution); err != nil {
		return nil, &swarmnode.Error{Kind: swarmnode.ErrDecode, Err: fmt.Errorf("failed to decode execution result: %w", err)}
	}
	return &execution, nil
}
