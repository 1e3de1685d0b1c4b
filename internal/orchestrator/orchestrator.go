// Package orchestrator runs the command flows on top of the agent client:
// deploying and waiting for a stack, cleaning up old versions, listing,
// traffic, scaling and deletion.
package orchestrator

import (
	"context"
	"io"
	"time"

	"github.com/balaji-balu/lizzy-client/internal/agent"
	"github.com/balaji-balu/lizzy-client/internal/logger"
	"github.com/balaji-balu/lizzy-client/pkg/model"
)

// Agent is the set of agent operations the flows use. *agent.Client
// implements it.
type Agent interface {
	agent.StackGetter
	CreateStack(ctx context.Context, req model.DeploymentRequest) (*model.Stack, string, error)
	ListStacks(ctx context.Context, references []string, region string) ([]model.Stack, error)
	SetTraffic(ctx context.Context, stackID string, percent int, region string) error
	GetTraffic(ctx context.Context, stackID, region string) (*model.Traffic, error)
	SetScale(ctx context.Context, stackID string, count int, region string) (string, error)
	DeleteStack(ctx context.Context, stackID, region string, dryRun bool) (string, error)
}

const defaultCleanupDelay = 5 * time.Second

type Orchestrator struct {
	agent        Agent
	out          io.Writer
	log          *logger.Logger
	verbose      bool
	pollInterval time.Duration
	cleanupDelay time.Duration
	now          func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithVerbose prints every distinct deployment state instead of dots.
func WithVerbose(verbose bool) Option {
	return func(o *Orchestrator) { o.verbose = verbose }
}

func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.pollInterval = d }
}

// WithCleanupDelay sets the pause between old-stack cleanup rounds.
func WithCleanupDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.cleanupDelay = d }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator printing command output to out.
func New(a Agent, out io.Writer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		agent:        a,
		out:          out,
		log:          logger.Nop(),
		pollInterval: agent.DefaultInterval,
		cleanupDelay: defaultCleanupDelay,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
