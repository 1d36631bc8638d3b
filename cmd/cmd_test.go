package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/config"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

func newStrategyCmd() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addStrategyFlag(c.Flags())
	return c
}

func TestResolveStrategy_Precedence(t *testing.T) {
	t.Setenv(envStrategy, "")
	cfg := config.NewDefault("test")
	cfg.Defaults.Strategy = "high_impact"
	batch := &task.Batch{Strategy: "deadline_driven"}

	c := newStrategyCmd()
	assert.Equal(t, "high_impact", resolveStrategy(c, nil, cfg))
	assert.Equal(t, "deadline_driven", resolveStrategy(c, batch, cfg))

	t.Setenv(envStrategy, "fastest_wins")
	assert.Equal(t, "deadline_driven", resolveStrategy(c, batch, cfg), "batch document beats the environment")
	assert.Equal(t, "fastest_wins", resolveStrategy(c, &task.Batch{}, cfg))

	require.NoError(t, c.Flags().Set("strategy", "smart_balance"))
	assert.Equal(t, "smart_balance", resolveStrategy(c, batch, cfg))
}

func TestResolveStrategy_NoWorkspace(t *testing.T) {
	t.Setenv(envStrategy, "")
	assert.Empty(t, resolveStrategy(newStrategyCmd(), nil, nil))
}

func TestStrategyFlag_ModeAlias(t *testing.T) {
	c := newStrategyCmd()
	require.NoError(t, c.Flags().Parse([]string{"--mode", "high_impact"}))
	v, err := c.Flags().GetString("strategy")
	require.NoError(t, err)
	assert.Equal(t, "high_impact", v)
}

func newAddTestCmd() *cobra.Command {
	c := &cobra.Command{Use: "add"}
	c.Flags().String("title", "", "")
	c.Flags().String("due", "", "")
	c.Flags().Float64("hours", 0, "")
	c.Flags().Int("importance", 0, "")
	c.Flags().IntSlice("depends-on", nil, "")
	c.Flags().String("body", "", "")
	return c
}

func TestResolveAddTitle(t *testing.T) {
	c := newAddTestCmd()
	title, err := resolveAddTitle(c, []string{"Write docs"})
	require.NoError(t, err)
	assert.Equal(t, "Write docs", title)

	_, err = resolveAddTitle(c, nil)
	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.TitleRequired, ce.Code)

	require.NoError(t, c.Flags().Set("title", "From flag"))
	title, err = resolveAddTitle(c, nil)
	require.NoError(t, err)
	assert.Equal(t, "From flag", title)

	_, err = resolveAddTitle(c, []string{"both"})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.InvalidInput, ce.Code)
}

func TestApplyAddFlags(t *testing.T) {
	c := newAddTestCmd()
	require.NoError(t, c.Flags().Parse([]string{
		"--due", "2025-03-14", "--hours", "2.5", "--importance", "8", "--depends-on", "1,3",
	}))

	var in task.Input
	require.NoError(t, applyAddFlags(c, &in))
	require.NotNil(t, in.DueDate)
	assert.Equal(t, "2025-03-14", in.DueDate.String())
	require.NotNil(t, in.EstimatedHours)
	assert.InDelta(t, 2.5, *in.EstimatedHours, 1e-9)
	require.NotNil(t, in.Importance)
	assert.Equal(t, 8, *in.Importance)
	assert.Equal(t, []int{1, 3}, in.Dependencies)
}

func TestApplyAddFlags_OmittedFieldsStayNil(t *testing.T) {
	var in task.Input
	require.NoError(t, applyAddFlags(newAddTestCmd(), &in))
	assert.Nil(t, in.DueDate)
	assert.Nil(t, in.EstimatedHours)
	assert.Nil(t, in.Importance)
}

func TestApplyAddFlags_InvalidDate(t *testing.T) {
	c := newAddTestCmd()
	require.NoError(t, c.Flags().Set("due", "14/03/2025"))

	var in task.Input
	err := applyAddFlags(c, &in)
	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.InvalidDate, ce.Code)
}

func TestServerOptions(t *testing.T) {
	opts, engOpts := serverOptions(nil)
	assert.Empty(t, opts.Addr)
	assert.Nil(t, engOpts)

	cfg := config.NewDefault("test")
	cfg.Server.Addr = "0.0.0.0:9000"
	cfg.Server.ReadTimeout = "3s"
	opts, engOpts = serverOptions(cfg)
	assert.Equal(t, "0.0.0.0:9000", opts.Addr)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
	assert.Equal(t, 5*time.Second, opts.ShutdownTimeout)
	assert.Equal(t, int64(config.DefaultMaxBodyBytes), opts.MaxBodyBytes)
	assert.Len(t, engOpts, 2)
}

func TestWatchTarget(t *testing.T) {
	got, err := watchTarget(nil, []string{"batch.json"})
	require.NoError(t, err)
	assert.Equal(t, "batch.json", got)

	_, err = watchTarget(nil, []string{"-"})
	require.Error(t, err)

	_, err = watchTarget(nil, nil)
	var ce *clierr.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, clierr.WorkspaceNotFound, ce.Code)
}
