package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/avast/retry-go/v5"
	"go.uber.org/zap"

	"github.com/balaji-balu/lizzy-client/internal/console"
	"github.com/balaji-balu/lizzy-client/pkg/model"
)

const (
	DefaultCleanupTimeout = 120 * time.Second

	msgFetchOldStacks = "Failed to fetch old stacks. Old stacks WILL NOT BE DELETED"
	msgCleanupTimeout = "Timeout waiting for related stacks to be ready."
)

// errStacksPending makes the cleanup try again.
var errStacksPending = errors.New("old stacks are not ready for deletion")

// deleteOldStacks keeps the keep+1 newest stacks of stackName, the new one
// included, and deletes the rest. Stacks that are not in a complete state
// are retried until timeout. The timeout is only checked between rounds;
// requests of a running round use ctx.
func (o *Orchestrator) deleteOldStacks(ctx context.Context, stackName, region string, keep int, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultCleanupTimeout
	}
	cleanupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := retry.New(
		retry.Context(cleanupCtx),
		retry.Attempts(0),
		retry.Delay(o.cleanupDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errStacksPending)
		}),
	)

	err := r.Do(func() error {
		return o.cleanupRound(ctx, stackName, region, keep+1)
	})

	var fatalErr *FatalError
	switch {
	case errors.As(err, &fatalErr):
		return fatalErr
	case ctx.Err() != nil:
		return ctx.Err()
	case cleanupCtx.Err() != nil:
		fmt.Fprintln(o.out, msgCleanupTimeout)
		return nil
	case err != nil && !errors.Is(err, errStacksPending):
		return err
	}
	return nil
}

func (o *Orchestrator) cleanupRound(ctx context.Context, stackName, region string, versionsToKeep int) error {
	stacks, err := o.agent.ListStacks(ctx, []string{stackName}, region)
	if err != nil {
		o.printError(err)
		return fatal(msgFetchOldStacks, err)
	}

	stacks = slices.DeleteFunc(stacks, func(s model.Stack) bool {
		return s.Status == model.StatusDeleteComplete
	})
	slices.SortStableFunc(stacks, func(a, b model.Stack) int {
		return a.CreationTime.Compare(b.CreationTime.Time)
	})
	if len(stacks) <= versionsToKeep {
		return nil
	}
	toRemove := stacks[:len(stacks)-versionsToKeep]

	pending := len(toRemove)
	action := console.StartAction(o.out, "Deleting old stacks..")
	action.Println()
	for _, old := range toRemove {
		oldID := old.ID()
		if !slices.Contains(model.CompleteStatuses, old.Status) {
			fmt.Fprintf(o.out, " > %s current status is %s trying again later\n", oldID, old.Status)
			continue
		}
		fmt.Fprintf(o.out, " %s\n", oldID)
		if _, err := o.agent.DeleteStack(ctx, oldID, region, false); err != nil {
			o.printError(err)
			o.log.Warn("failed to delete old stack", zap.String("stack", oldID), zap.Error(err))
			continue
		}
		pending--
	}
	action.OK()

	if pending > 0 {
		return errStacksPending
	}
	return nil
}
