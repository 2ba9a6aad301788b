package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Groups(t *testing.T) {
	app, out := newTestApp(t, "Travel\n")
	root := NewRootCommand(app)

	root.SetArgs([]string{"groups", "add", "Food"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	root.SetArgs([]string{"groups", "add"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	out.Reset()
	root.SetArgs([]string{"groups"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "Food\nTravel\n", out.String())
}

func TestRootCommand_ShareArgs(t *testing.T) {
	app, _ := newTestApp(t, "")
	root := NewRootCommand(app)

	root.SetArgs([]string{"share", "abc"})
	assert.Error(t, root.ExecuteContext(context.Background()))

	root.SetArgs([]string{"share"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}

func TestRootCommand_List(t *testing.T) {
	app, out := newTestApp(t, "")
	saveCard(t, app, "Coffee", "111", nil)
	root := NewRootCommand(app)

	root.SetArgs([]string{"list"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Coffee")
}
