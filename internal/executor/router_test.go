package executor

import (
	"context"
	"testing"

	"github.com/nutsdb/nutsquery/internal/access"
	"github.com/nutsdb/nutsquery/internal/envelope"
	"github.com/nutsdb/nutsquery/internal/keyrange"
	"github.com/stretchr/testify/assert"
)

func TestExecutor_PanicsOnMismatchedPath(t *testing.T) {
	env := envelope.Envelope{Range: keyrange.All()}
	paths := []access.Path{
		access.PKPoint{}, access.PKRange{}, access.IndexPoint{}, access.IndexRange{},
		access.IndexPrefix{}, access.Composite{}, access.FullScan{},
	}

	for _, exec := range DefaultExecutors() {
		for _, path := range paths {
			if path.Kind() == exec.Kind() {
				continue
			}
			assert.Panics(t, func() {
				_, _ = exec.Open(nil, path, env, nil, 1)
			}, "%s executor accepted %s", exec.Kind(), path.Kind())
		}
	}
}

func TestExecutor_PanicsOnUnresolvedEnvelope(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = PKRangeExecutor{}.Open(nil, access.PKRange{}, envelope.Envelope{}, nil, 1)
	})
	assert.Panics(t, func() {
		_, _ = CompositeExecutor{}.Open(nil, access.Composite{}, envelope.Envelope{}, nil, 1)
	})
	assert.Panics(t, func() {
		env := envelope.Envelope{Range: keyrange.All(), Direction: keyrange.Direction(7)}
		_, _ = IndexRangeExecutor{}.Open(nil, access.IndexRange{}, env, nil, 1)
	})
}

func TestRouter_PanicsWithoutExecutor(t *testing.T) {
	r := NewRouter(PKPointExecutor{})
	plan := &access.Plan{Path: access.FullScan{}, Boundary: keyrange.All(), Limit: 1}
	assert.Panics(t, func() {
		_, _ = r.Execute(context.Background(), nil, plan, nil)
	})
}

func TestRouter_DefaultsCoverEveryKind(t *testing.T) {
	r := NewRouter()
	for _, kind := range access.Kinds() {
		exec, ok := r.executors[kind]
		if assert.True(t, ok, kind.String()) {
			assert.Equal(t, kind, exec.Kind())
		}
	}
}

func TestExecutor_ZeroBudget(t *testing.T) {
	it, err := CompositeExecutor{}.Open(nil, access.Composite{Branches: []access.Branch{{}}}, envelope.Envelope{Range: keyrange.All()}, nil, 0)
	assert.NoError(t, err)
	assert.False(t, it.Next())
	assert.Zero(t, it.Scanned())
}
