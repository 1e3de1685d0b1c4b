package orchestrator

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/balaji-balu/lizzy-client/internal/agent"
	"github.com/balaji-balu/lizzy-client/internal/console"
	"github.com/balaji-balu/lizzy-client/internal/stackref"
	"github.com/balaji-balu/lizzy-client/pkg/model"
)

var titles = map[string]string{
	"creation_time": "Created",
	"version":       "Ver.",
}

const clearScreen = "\033[H\033[2J"

type ListOptions struct {
	// References are stack names or ids, all stacks when empty.
	References []string
	Region     string
	// All includes removed stacks.
	All    bool
	Output string
	// Watch redraws the list at this interval until ctx is done.
	Watch time.Duration
}

// List prints the stacks matching the references.
func (o *Orchestrator) List(ctx context.Context, opts ListOptions) error {
	for {
		stacks, err := o.agent.ListStacks(ctx, opts.References, opts.Region)
		if err != nil {
			return err
		}
		if err := stackTable(stacks, opts.All).Render(o.out, opts.Output, o.now()); err != nil {
			return err
		}

		if opts.Watch <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(opts.Watch):
		}
		fmt.Fprint(o.out, clearScreen)
	}
}

func stackTable(stacks []model.Stack, all bool) console.Table {
	if !all {
		stacks = slices.DeleteFunc(slices.Clone(stacks), func(s model.Stack) bool {
			return s.Status == model.StatusDeleteComplete
		})
	}
	slices.SortFunc(stacks, func(a, b model.Stack) int {
		return cmp.Or(cmp.Compare(a.StackName, b.StackName), cmp.Compare(a.Version, b.Version))
	})

	rows := make([]map[string]any, 0, len(stacks))
	for _, s := range stacks {
		rows = append(rows, map[string]any{
			"stack_name":    s.StackName,
			"version":       s.Version,
			"status":        s.Status,
			"creation_time": s.CreationTime.Time,
			"description":   s.Description,
		})
	}
	return console.Table{
		Columns: []string{"stack_name", "version", "status", "creation_time", "description"},
		Titles:  titles,
		Rows:    rows,
	}
}

// TrafficInfo prints the traffic weight of every live version of a stack.
func (o *Orchestrator) TrafficInfo(ctx context.Context, stackName, region, output string) error {
	action := console.StartAction(o.out, "Requesting traffic info..")
	stacks, err := o.agent.ListStacks(ctx, []string{stackName}, region)
	if err != nil {
		action.Fail("ERROR")
		return err
	}

	var rows []map[string]any
	for _, s := range stacks {
		if s.Status != model.StatusCreateComplete && s.Status != model.StatusUpdateComplete {
			continue
		}
		traffic, err := o.agent.GetTraffic(ctx, s.ID(), region)
		if err != nil {
			action.Fail("ERROR")
			return err
		}
		action.Progress()
		rows = append(rows, map[string]any{
			"stack_name": stackName,
			"version":    s.Version,
			"identifier": s.ID(),
			"weight%":    traffic.Weight,
		})
	}
	action.OK()

	slices.SortFunc(rows, func(a, b map[string]any) int {
		return cmp.Compare(a["identifier"].(string), b["identifier"].(string))
	})
	table := console.Table{
		Columns: []string{"stack_name", "version", "identifier", "weight%"},
		Titles:  titles,
		Rows:    rows,
	}
	return table.Render(o.out, output, o.now())
}

// SetTraffic routes percent of the traffic, clamped to [0,100], to the stack.
func (o *Orchestrator) SetTraffic(ctx context.Context, stackName, version string, percent int, region string) error {
	action := console.StartAction(o.out, "Requesting traffic change..")
	if err := o.agent.SetTraffic(ctx, model.StackID(stackName, version), agent.ClampPercent(percent), region); err != nil {
		action.Fail("ERROR")
		return err
	}
	action.OK()
	return nil
}

// Scale sets the instance count, clamped to [0,999].
func (o *Orchestrator) Scale(ctx context.Context, stackName, version string, count int, region string) error {
	action := console.StartAction(o.out, "Requesting rescale..")
	output, err := o.agent.SetScale(ctx, model.StackID(stackName, version), agent.ClampScale(count), region)
	if err != nil {
		action.Fail("ERROR")
		return err
	}
	action.OK()
	if output != "" {
		fmt.Fprintln(o.out, output)
	}
	return nil
}

type DeleteOptions struct {
	Region string
	DryRun bool
	// Force allows references without a version, which may match several
	// stacks.
	Force bool
}

// Delete removes every referenced stack. Each deletion is independent; the
// failures are reported together at the end.
func (o *Orchestrator) Delete(ctx context.Context, refs []stackref.Reference, opts DeleteOptions) error {
	if !stackref.AllVersioned(refs) && !opts.DryRun && !opts.Force {
		return fatal(fmt.Sprintf("Error: %d matching stacks found. "+
			`Please use the "--force" flag if you really want to delete multiple stacks.`, len(refs)), nil)
	}

	var errs []error
	for _, ref := range refs {
		stackID := ref.ID()
		action := console.StartAction(o.out, "Requesting stack '%s' deletion..", stackID)
		output, err := o.agent.DeleteStack(ctx, stackID, opts.Region, opts.DryRun)
		if err != nil {
			action.Fail("ERROR")
			o.printError(err)
			o.log.Warn("stack deletion failed", zap.String("stack", stackID), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", stackID, err))
			continue
		}
		action.OK()
		if output != "" {
			fmt.Fprintln(o.out, output)
		}
	}

	if len(errs) > 0 {
		return fatal(fmt.Sprintf("Failed to delete %d of %d stacks", len(errs), len(refs)), errors.Join(errs...))
	}
	return nil
}
