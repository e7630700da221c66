package resources

import (
	"context"
	"encoding/json"
	"iter"

	"github.com/stretchr/testify/mock"
	"github.com/swarmnode-ai/swarmnode-go/pkg/swarmcli"
)

// MockTransport is a testify mock of Transport in the mockery expecter style
type MockTransport struct {
	mock.Mock
}

type MockTransport_Expecter struct {
	mock *mock.Mock
}

func (_m *MockTransport) EXPECT() *MockTransport_Expecter {
	return &MockTransport_Expecter{mock: &_m.Mock}
}

// NewMockTransport creates a MockTransport whose expectations are asserted at cleanup
func NewMockTransport(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransport {
	m := &MockTransport{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Do provides a mock function with given fields: ctx, req, out
func (_m *MockTransport) Do(ctx context.Context, req swarmcli.Request, out any) error {
	ret := _m.Called(ctx, req, out)
	return ret.Error(0)
}

type MockTransport_Do_Call struct {
	*mock.Call
}

func (_e *MockTransport_Expecter) Do(ctx any, req any, out any) *MockTransport_Do_Call {
	return &MockTransport_Do_Call{Call: _e.mock.On("Do", ctx, req, out)}
}

func (_c *MockTransport_Do_Call) Return(err error) *MockTransport_Do_Call {
	_c.Call.Return(err)
	return _c
}

// RespondJSON decodes body into the out argument and returns nil
func (_c *MockTransport_Do_Call) RespondJSON(body string) *MockTransport_Do_Call {
	_c.Call.Run(func(args mock.Arguments) {
		if out := args.Get(2); out != nil {
			if err := json.Unmarshal([]byte(body), out); err != nil {
				panic(err)
			}
		}
	}).Return(nil)
	return _c
}

// ListenExecution provides a mock function with given fields: ctx, address
func (_m *MockTransport) ListenExecution(ctx context.Context, address string) (string, error) {
	ret := _m.Called(ctx, address)
	return ret.String(0), ret.Error(1)
}

type MockTransport_ListenExecution_Call struct {
	*mock.Call
}

func (_e *MockTransport_Expecter) ListenExecution(ctx any, address any) *MockTransport_ListenExecution_Call {
	return &MockTransport_ListenExecution_Call{Call: _e.mock.On("ListenExecution", ctx, address)}
}

func (_c *MockTransport_ListenExecution_Call) Return(frame string, err error) *MockTransport_ListenExecution_Call {
	_c.Call.Return(frame, err)
	return _c
}

// StreamExecution provides a mock function with given fields: ctx, address
func (_m *MockTransport) StreamExecution(ctx context.Context, address string) iter.Seq2[string, error] {
	ret := _m.Called(ctx, address)
	seq, _ := ret.Get(0).(iter.Seq2[string, error])
	return seq
}

type MockTransport_StreamExecution_Call struct {
	*mock.Call
}

func (_e *MockTransport_Expecter) StreamExecution(ctx any, address any) *MockTransport_StreamExecution_Call {
	return &MockTransport_StreamExecution_Call{Call: _e.mock.On("StreamExecution", ctx, address)}
}

// ReturnFrames makes the stream yield frames and then end
func (_c *MockTransport_StreamExecution_Call) ReturnFrames(frames ...string) *MockTransport_StreamExecution_Call {
	var seq iter.Seq2[string, error] = func(yield func(string, error) bool) {
		for _, frame := range frames {
			if !yield(frame, nil) {
				return
			}
		}
	}
	_c.Call.Return(seq)
	return _c
}
