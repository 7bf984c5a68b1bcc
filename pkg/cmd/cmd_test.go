package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct{ name string }

func (e *echo) Name() string        { return e.name }
func (e *echo) Description() string { return "echoes" }
func (e *echo) Run(ctx context.Context, inv *Invocation) error {
	*inv.Data.(*[]string) = append(*inv.Data.(*[]string), e.name)
	return nil
}

func tag(label string) Middleware {
	return func(c Command) Command {
		return Wrap(c, func(ctx context.Context, inv *Invocation) error {
			*inv.Data.(*[]string) = append(*inv.Data.(*[]string), label)
			return c.Run(ctx, inv)
		})
	}
}

func TestApplyOrder(t *testing.T) {
	var trail []string
	c := Apply(&echo{name: "kick"}, tag("outer"), tag("inner"))

	require.NoError(t, c.Run(context.Background(), &Invocation{Data: &trail}))
	assert.Equal(t, []string{"outer", "inner", "kick"}, trail)
	assert.Equal(t, "kick", c.Name())

	root, ok := Root(c).(*echo)
	require.True(t, ok)
	assert.Equal(t, "kick", root.name)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&echo{name: "Warn"}, &echo{name: "ban"})

	assert.True(t, r.Has("warn"))
	assert.NotNil(t, r.Get("WARN"))
	assert.Nil(t, r.Get("kick"))

	all := r.GetAll()
	require.Len(t, all, 2)
	// byte order puts upper case first
	assert.Equal(t, "Warn", all[0].Name())
	assert.Equal(t, "ban", all[1].Name())
}
