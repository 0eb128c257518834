package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStep struct {
	BaseStep
	run      func(ctx context.Context, state *OperationState) error
	validate func(state *OperationState) error
	calls    int
}

func newFakeStep(id string, deps ...string) *fakeStep {
	return &fakeStep{BaseStep: NewBaseStep(id, "Step "+id, deps...)}
}

func (f *fakeStep) Execute(ctx context.Context, state *OperationState) error {
	f.calls++
	if f.run == nil {
		return nil
	}
	return f.run(ctx, state)
}

func (f *fakeStep) Validate(state *OperationState) error {
	if f.validate == nil {
		return nil
	}
	return f.validate(state)
}

func stepIDs(steps []Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	return ids
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFakeStep("a")))
	assert.Error(t, r.Register(newFakeStep("a")), "duplicate id")
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(newFakeStep("")))

	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("b"))
	assert.Equal(t, 1, r.Count())

	_, err := r.Get("b")
	assert.Error(t, err)
}

func TestRegistryPlan(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFakeStep("ingest")))
	require.NoError(t, r.Register(newFakeStep("calendar")))
	require.NoError(t, r.Register(newFakeStep("mapfiles", "ingest")))
	require.NoError(t, r.Register(newFakeStep("factorfiles", "ingest")))
	require.NoError(t, r.Register(newFakeStep("bars", "ingest", "calendar")))
	require.NoError(t, r.Register(newFakeStep("export", "mapfiles", "factorfiles", "bars")))

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{"all", nil, []string{"ingest", "calendar", "mapfiles", "factorfiles", "bars", "export"}},
		{"single", []string{"calendar"}, []string{"calendar"}},
		{"transitive", []string{"export"}, []string{"ingest", "calendar", "mapfiles", "factorfiles", "bars", "export"}},
		{"partial", []string{"mapfiles"}, []string{"ingest", "mapfiles"}},
		{"bars", []string{"bars"}, []string{"ingest", "calendar", "bars"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := r.Plan(tt.ids)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stepIDs(plan))
		})
	}
}

func TestRegistryPlanErrors(t *testing.T) {
	t.Run("unknown step", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(newFakeStep("a")))
		_, err := r.Plan([]string{"missing"})
		require.Error(t, err)
		assert.Equal(t, ErrorTypeNotFound, GetErrorType(err))
	})

	t.Run("unregistered dependency", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(newFakeStep("a", "ghost")))
		_, err := r.Plan(nil)
		require.Error(t, err)
		assert.Equal(t, ErrorTypeDependency, GetErrorType(err))
	})

	t.Run("cycle", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(newFakeStep("a", "b")))
		require.NoError(t, r.Register(newFakeStep("b", "a")))
		_, err := r.Plan(nil)
		require.Error(t, err)
		assert.True(t, IsFatal(err))
	})
}
