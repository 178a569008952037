package ai

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubGateway struct{}

func (stubGateway) Complete(context.Context, []Message, []ToolDescriptor) (*ChatResponse, error) {
	return &ChatResponse{}, nil
}

func (stubGateway) CompleteStream(context.Context, []Message) (<-chan string, <-chan error) {
	tokenCh := make(chan string)
	errCh := make(chan error, 1)
	close(tokenCh)
	errCh <- nil
	close(errCh)
	return tokenCh, errCh
}

func TestHolderBuildsOnce(t *testing.T) {
	var builds atomic.Int32
	holder := NewHolderFunc(func() (Gateway, error) {
		builds.Add(1)
		return stubGateway{}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gateway, err := holder.Get()
			require.NoError(t, err)
			require.NotNil(t, gateway)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), builds.Load())
}

func TestHolderStickyError(t *testing.T) {
	var builds atomic.Int32
	holder := NewHolderFunc(func() (Gateway, error) {
		builds.Add(1)
		return nil, errors.New("no credentials")
	})

	_, err := holder.Get()
	require.Error(t, err)
	_, err = holder.Get()
	require.Error(t, err)
	require.Equal(t, int32(1), builds.Load())
}

func TestNewGatewayRequiresKeyAndModel(t *testing.T) {
	_, err := NewGateway(Config{Model: "gpt-4o-mini"})
	require.Error(t, err)

	_, err = NewGateway(Config{APIKey: "sk-test"})
	require.Error(t, err)

	gateway, err := NewGateway(Config{APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	require.NotNil(t, gateway)
}

func TestGatewayErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &GatewayError{Message: "chat completion failed", Cause: cause}
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "chat completion failed")
}
