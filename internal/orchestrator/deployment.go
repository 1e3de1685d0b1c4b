package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/balaji-balu/lizzy-client/internal/agent"
	"github.com/balaji-balu/lizzy-client/internal/console"
	"github.com/balaji-balu/lizzy-client/pkg/model"
)

const (
	msgRollback   = "Stack was rollback after deployment. Check your application log for possible reasons."
	msgArtifacts  = "WARNING: Artifact checking is still not supported by lizzy-client."
	msgDryRun     = "Post deployment steps skipped"
	msgSuccessful = "Deployment Successful"
)

// CreateOptions describe one deployment.
type CreateOptions struct {
	SenzaYAML       string
	Version         string
	Parameters      []string
	Tags            []string
	Region          string
	DisableRollback bool
	DryRun          bool
	// Force skips the artifact warning.
	Force bool
	// KeepStacks, when set, deletes all but the KeepStacks newest older
	// versions after a successful deployment.
	KeepStacks *int
	// Traffic, when set, switches that percentage to the new stack.
	Traffic *int
	// CleanupTimeout bounds the wait for old stacks to become deletable.
	CleanupTimeout time.Duration
	// MaxWait bounds the wait for the deployment. Zero waits as long as the
	// agent answers.
	MaxWait time.Duration
}

func (c CreateOptions) request() model.DeploymentRequest {
	req := model.DeploymentRequest{
		SenzaYAML:       c.SenzaYAML,
		StackVersion:    c.Version,
		DisableRollback: c.DisableRollback,
		DryRun:          c.DryRun,
		KeepStacks:      c.KeepStacks,
		Parameters:      c.Parameters,
		Tags:            c.Tags,
		Region:          c.Region,
	}
	if c.Traffic != nil {
		percent := agent.ClampPercent(*c.Traffic)
		req.NewTraffic = &percent
	}
	return req
}

// Create deploys a new stack version and, unless it is a dry run, waits for
// it and runs the post deployment steps.
func (o *Orchestrator) Create(ctx context.Context, opts CreateOptions) error {
	if !opts.Force {
		fmt.Fprintln(o.out, msgArtifacts)
	}

	action := console.StartAction(o.out, "Requesting new stack..")
	stack, output, err := o.agent.CreateStack(ctx, opts.request())
	if err != nil {
		action.Fail("ERROR")
		return err
	}
	action.OK()

	if output != "" {
		fmt.Fprintln(o.out, output)
	}
	stackID := stack.ID()
	fmt.Fprintf(o.out, "Stack ID: %s\n", stackID)
	o.log.Info("stack requested", zap.String("stack", stackID), zap.Bool("dry_run", opts.DryRun))

	if opts.DryRun {
		fmt.Fprintln(o.out, msgDryRun)
		return nil
	}

	if err := o.waitForDeployment(ctx, stackID, opts.Region, opts.MaxWait); err != nil {
		return err
	}
	fmt.Fprintln(o.out, msgSuccessful)

	if opts.Traffic != nil {
		o.switchTraffic(ctx, stackID, agent.ClampPercent(*opts.Traffic), opts.Region)
	}

	if opts.KeepStacks != nil {
		return o.deleteOldStacks(ctx, stack.StackName, opts.Region, *opts.KeepStacks, opts.CleanupTimeout)
	}
	return nil
}

func (o *Orchestrator) waitForDeployment(ctx context.Context, stackID, region string, maxWait time.Duration) error {
	if maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxWait)
		defer cancel()
	}

	action := console.StartAction(o.out, "Waiting for new stack...")
	if o.verbose {
		action.Println()
	}

	poller := agent.NewPoller(o.agent, stackID, region, o.pollInterval)
	var last string
	for obs := range poller.Observations(ctx) {
		state := obs.String()
		if o.verbose && state != last {
			action.Println(" " + state)
		} else {
			action.Progress()
		}
		last = state
		o.log.Debug("deployment state", zap.String("stack", stackID), zap.String("state", state),
			zap.String("poller", poller.State()))
	}

	if err := poller.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			action.Fail("TIMEOUT")
			return fatal(fmt.Sprintf("Deployment failed: gave up waiting for %s after %s", stackID, maxWait), err)
		}
		action.Fail("ABORTED")
		return err
	}

	final := poller.Last()
	switch {
	case final.Failed():
		action.Fail("ERROR")
		return fatal("Deployment failed: "+final.String(), final.Err)
	case agent.IsRollback(final.Status):
		action.Fail("ERROR")
		return fatal(msgRollback, nil)
	case agent.Classify(final.Status) != agent.Success:
		action.Fail("ERROR")
		return fatal("Deployment failed: "+final.String(), nil)
	}
	action.OK()
	return nil
}

// switchTraffic reports failures without failing the deployment.
func (o *Orchestrator) switchTraffic(ctx context.Context, stackID string, percent int, region string) {
	action := console.StartAction(o.out, "Requesting traffic change..")
	if err := o.agent.SetTraffic(ctx, stackID, percent, region); err != nil {
		action.Fail("ERROR")
		o.printError(err)
		o.log.Warn("traffic change failed", zap.String("stack", stackID), zap.Error(err))
		return
	}
	action.OK()
}

func (o *Orchestrator) printError(err error) {
	for _, line := range ErrorLines(err) {
		fmt.Fprintln(o.out, line)
	}
}
