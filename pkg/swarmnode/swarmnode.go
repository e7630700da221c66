package swarmnode

import "encoding/json"

// Resource kind tags carried by paginated results
const (
	KindAgent                = "Agent"
	KindAgentBuilderJob      = "AgentBuilderJob"
	KindAgentExecutorJob     = "AgentExecutorJob"
	KindAgentExecutorCronJob = "AgentExecutorCronJob"
	KindBuild                = "Build"
	KindStore                = "Store"
	KindExecution            = "Execution"
)

// ExecutionStatus represents the status of an execution
type ExecutionStatus string

const (
	ExecutionStatusInProgress  ExecutionStatus = "in_progress"
	ExecutionStatusSuccess     ExecutionStatus = "success"
	ExecutionStatusFailure     ExecutionStatus = "failure"
	ExecutionStatusTermination ExecutionStatus = "termination"
)

// BuildStatus represents the status of an agent build
type BuildStatus string

const (
	BuildStatusInProgress BuildStatus = "in_progress"
	BuildStatusSuccess    BuildStatus = "success"
	BuildStatusFailure    BuildStatus = "failure"
)

// Timestamps are kept as the strings the API sends so one unexpected format
// never fails the decode of a whole page.

// Agent is a deployed script that can be executed on demand or on a schedule
type Agent struct {
	ID               string  `json:"id"`
	AgentID          string  `json:"agent_id,omitempty"`
	ExecutionAddress string  `json:"execution_address,omitempty"`
	Name             string  `json:"name,omitempty"`
	Script           string  `json:"script,omitempty"`
	Requirements     string  `json:"requirements,omitempty"`
	EnvVars          string  `json:"env_vars,omitempty"`
	PythonVersion    string  `json:"python_version,omitempty"`
	StoreID          *string `json:"store_id,omitempty"`
	Created          string  `json:"created"`
}

// AgentBuilderJob is the job that builds an agent's runtime
type AgentBuilderJob struct {
	ID               string `json:"id"`
	AgentID          string `json:"agent_id"`
	ExecutionAddress string `json:"execution_address"`
	BuildAddress     string `json:"build_address,omitempty"`
	Created          string `json:"created"`
}

// AgentExecutorJob triggers a single execution of an agent
type AgentExecutorJob struct {
	ID               string `json:"id"`
	AgentID          string `json:"agent_id"`
	ExecutionAddress string `json:"execution_address"`
	Created          string `json:"created"`
}

// AgentExecutorCronJob triggers executions of an agent on a cron expression.
// ExecutionAddress is the stream every triggered execution reports to.
type AgentExecutorCronJob struct {
	ID               string `json:"id"`
	AgentID          string `json:"agent_id"`
	ExecutionAddress string `json:"execution_address"`
	Name             string `json:"name,omitempty"`
	Expression       string `json:"expression,omitempty"`
	Created          string `json:"created"`
}

// Build is the result of an agent builder job
type Build struct {
	ID           string      `json:"id"`
	AgentID      string      `json:"agent_id"`
	BuildAddress string      `json:"build_address"`
	Status       BuildStatus `json:"status,omitempty"`
	Logs         string      `json:"logs,omitempty"`
	Created      string      `json:"created"`
}

// Store is a key-value store shared by agents
type Store struct {
	ID           string                     `json:"id"`
	AgentID      string                     `json:"agent_id"`
	StoreAddress string                     `json:"store_address"`
	Name         string                     `json:"name,omitempty"`
	Data         map[string]json.RawMessage `json:"data,omitempty"`
	Created      string                     `json:"created"`
}

// ExecutionLog is one line of output captured during an execution
type ExecutionLog struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Execution is one run of an agent
type Execution struct {
	ID                     string          `json:"id"`
	AgentID                string          `json:"agent_id"`
	ExecutionAddress       string          `json:"execution_address"`
	Created                string          `json:"created"`
	AgentExecutorJobID     *string         `json:"agent_executor_job_id,omitempty"`
	AgentExecutorCronJobID *string         `json:"agent_executor_cron_job_id,omitempty"`
	Status                 ExecutionStatus `json:"status,omitempty"`
	Start                  *string         `json:"start,omitempty"`
	Finish                 *string         `json:"finish,omitempty"`
	Logs                   []ExecutionLog  `json:"logs,omitempty"`
	ReturnValue            json.RawMessage `json:"return_value,omitempty"`
}

// PageOptions represents options for page-paginated list requests
type PageOptions struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// Default page options applied when the caller leaves them unset
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// PageResponse is the wire envelope of a page-paginated list
type PageResponse[T any] struct {
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	Results     []T     `json:"results"`
	TotalCount  uint32  `json:"total_count"`
	CurrentPage uint32  `json:"current_page"`
}

// CursorResponse is the wire envelope of a cursor-paginated list
type CursorResponse[T any] struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Fields is a partial update: only the supplied fields are sent, each keeping
// its JSON type.
type Fields map[string]any

// Set returns f with name set to value, allocating f if needed
func (f Fields) Set(name string, value any) Fields {
	if f == nil {
		f = Fields{}
	}
	f[name] = value
	return f
}

// DecodeReturnValue decodes the return value of an execution into R
func DecodeReturnValue[R any](e *Execution) (*R, error) {
	if len(e.ReturnValue) == 0 || string(e.ReturnValue) == "null" {
		return nil, nil
	}
	var value R
	if err := json.Unmarshal(e.ReturnValue, &value); err != nil {
		return nil, err
	}
	return &value, nil
}
