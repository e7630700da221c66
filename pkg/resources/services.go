package resources

import (
	"context"
	"iter"

	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmcli"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmnode"
)

var (
	agentMeta                = Meta{Kind: swarmnode.KindAgent, Path: "agents"}
	agentBuilderJobMeta      = Meta{Kind: swarmnode.KindAgentBuilderJob, Path: "agent-builder-jobs"}
	agentExecutorJobMeta     = Meta{Kind: swarmnode.KindAgentExecutorJob, Path: "agent-executor-jobs"}
	agentExecutorCronJobMeta = Meta{Kind: swarmnode.KindAgentExecutorCronJob, Path: "agent-executor-cron-jobs"}
	buildMeta                = Meta{Kind: swarmnode.KindBuild, Path: "builds"}
	storeMeta                = Meta{Kind: swarmnode.KindStore, Path: "stores"}
	executionMeta            = Meta{Kind: swarmnode.KindExecution, Path: "executions"}
)

// Agents manages agents
type Agents struct {
	Mutable[swarmnode.Agent]
}

// AgentCreateParams are the fields of a new agent
type AgentCreateParams struct {
	Name          string `json:"name"`
	Script        string `json:"script"`
	PythonVersion string `json:"python_version"`
	StoreID       string `json:"store_id"`
	Requirements  string `json:"requirements,omitempty"`
	EnvVars       string `json:"env_vars,omitempty"`
}

// List returns a page of agents
func (s *Agents) List(ctx context.Context, opts swarmnode.PageOptions) (*swarmcli.Page[swarmnode.Agent], error) {
	return s.listPage(ctx, opts, nil)
}

// Create creates an agent
func (s *Agents) Create(ctx context.Context, params AgentCreateParams) (*swarmnode.Agent, error) {
	if err := required(
		"name", params.Name,
		"script", params.Script,
		"python_version", params.PythonVersion,
		"store_id", params.StoreID,
	); err != nil {
		return nil, err
	}
	return s.create(ctx, params)
}

// AgentBuilderJobs reads agent builder jobs
type AgentBuilderJobs struct {
	*Resource[swarmnode.AgentBuilderJob]
}

// List returns a page of builder jobs, optionally for one agent
func (s *AgentBuilderJobs) List(ctx context.Context, agentID string, opts swarmnode.PageOptions) (*swarmcli.Page[swarmnode.AgentBuilderJob], error) {
	return s.listPage(ctx, opts, map[string]string{"agent_id": agentID})
}

// AgentExecutorJobs manages on-demand executions of agents
type AgentExecutorJobs struct {
	*Resource[swarmnode.AgentExecutorJob]
}

type agentExecutorJobCreate struct {
	AgentID string `json:"agent_id"`
	Payload any    `json:"payload,omitempty"`
}

// List returns the first cursor page of executor jobs, optionally for one agent
func (s *AgentExecutorJobs) List(ctx context.Context, agentID string) (*swarmcli.Cursor[swarmnode.AgentExecutorJob], error) {
	return s.listCursor(ctx, map[string]string{"agent_id": agentID})
}

// Create starts an execution of the agent. The payload is sent as a JSON value.
func (s *AgentExecutorJobs) Create(ctx context.Context, agentID string, payload any) (*swarmnode.AgentExecutorJob, error) {
	if err := required("agent_id", agentID); err != nil {
		return nil, err
	}
	return s.create(ctx, agentExecutorJobCreate{AgentID: agentID, Payload: payload})
}

// AgentExecutorCronJobs manages scheduled executions of agents
type AgentExecutorCronJobs struct {
	Mutable[swarmnode.AgentExecutorCronJob]
	live LiveChannels
}

// CronJobCreateParams are the fields of a new cron job
type CronJobCreateParams struct {
	AgentID    string `json:"agent_id"`
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// List returns a page of cron jobs, optionally for one agent
func (s *AgentExecutorCronJobs) List(ctx context.Context, agentID string, opts swarmnode.PageOptions) (*swarmcli.Page[swarmnode.AgentExecutorCronJob], error) {
	return s.listPage(ctx, opts, map[string]string{"agent_id": agentID})
}

// Create schedules an agent
func (s *AgentExecutorCronJobs) Create(ctx context.Context, params CronJobCreateParams) (*swarmnode.AgentExecutorCronJob, error) {
	if err := required(
		"agent_id", params.AgentID,
		"name", params.Name,
		"expression", params.Expression,
	); err != nil {
		return nil, err
	}
	return s.create(ctx, params)
}

// Stream yields the frames of every execution the cron job triggers
func (s *AgentExecutorCronJobs) Stream(ctx context.Context, job *swarmnode.AgentExecutorCronJob) iter.Seq2[string, error] {
	return s.live.StreamExecution(ctx, job.ExecutionAddress)
}

// Builds reads agent builds
type Builds struct {
	*Resource[swarmnode.Build]
}

// List returns a page of builds, optionally for one executor job
func (s *Builds) List(ctx context.Context, agentExecutorJobID string, opts swarmnode.PageOptions) (*swarmcli.Page[swarmnode.Build], error) {
	return s.listPage(ctx, opts, map[string]string{"agent_executor_job_id": agentExecutorJobID})
}

// Stores manages stores
type Stores struct {
	Mutable[swarmnode.Store]
}

type storeCreate struct {
	Name string `json:"name"`
}

// List returns a page of stores, optionally for one agent
func (s *Stores) List(ctx context.Context, agentID string, opts swarmnode.PageOptions) (*swarmcli.Page[swarmnode.Store], error) {
	return s.listPage(ctx, opts, map[string]string{"agent_id": agentID})
}

// Create creates a store
func (s *Stores) Create(ctx context.Context, name string) (*swarmnode.Store, error) {
	if err := required("name", name); err != nil {
		return nil, err
	}
	return s.create(ctx, storeCreate{Name: name})
}

// Executions reads executions and watches running ones
type Executions struct {
	*Resource[swarmnode.Execution]
	live LiveChannels
}

// ExecutionFilter narrows an execution listing. Empty fields are not sent.
type ExecutionFilter struct {
	AgentID                string
	AgentExecutorJobID     string
	AgentExecutorCronJobID string
}

// List returns the first cursor page of executions
func (s *Executions) List(ctx context.Context, filter ExecutionFilter) (*swarmcli.Cursor[swarmnode.Execution], error) {
	return s.listCursor(ctx, map[string]string{
		"agent_id":                   filter.AgentID,
		"agent_executor_job_id":      filter.AgentExecutorJobID,
		"agent_executor_cron_job_id": filter.AgentExecutorCronJobID,
	})
}

// Listen waits for the single result frame of the execution at address
func (s *Executions) Listen(ctx context.Context, address string) (string, error) {
	return s.live.ListenExecution(ctx, address)
}

// Stream yields every frame of the execution at address
func (s *Executions) Stream(ctx context.Context, address string) iter.Seq2[string, error] {
	return s.live.StreamExecution(ctx, address)
}

// required checks name/value pairs and reports the first empty value
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return swarmnode.MissingFieldError(pairs[i])
		}
	}
	return nil
}
