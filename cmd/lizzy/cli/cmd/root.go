package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/balaji-balu/lizzy-client/internal/agent"
	"github.com/balaji-balu/lizzy-client/internal/config"
	"github.com/balaji-balu/lizzy-client/internal/console"
	"github.com/balaji-balu/lizzy-client/internal/logger"
	"github.com/balaji-balu/lizzy-client/internal/metrics"
	"github.com/balaji-balu/lizzy-client/internal/orchestrator"
	"github.com/balaji-balu/lizzy-client/internal/telemetry"
	"github.com/balaji-balu/lizzy-client/internal/token"
)

// TokenSource fetches the access token for the agent.
type TokenSource interface {
	Token(ctx context.Context, tokenURL string, scopes []string, credentialsDir string) (string, error)
}

// app is the state of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool

	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	tokens  TokenSource

	shutdownTracer func(context.Context) error
}

func newApp() *app {
	return &app{
		v:       viper.New(),
		log:     logger.Nop(),
		metrics: metrics.New(""),
		tokens:  token.New(),
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lizzy",
		Short:         "Deploy and manage stacks through a Lizzy agent",
		Long:          `Lizzy client creates, lists, scales and deletes Cloud Formation stacks through a remote Lizzy deployment agent.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/lizzy/config.yaml or ./lizzy.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "print every deployment state and debug logs")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newListCmd(a),
		newTrafficCmd(a),
		newScaleCmd(a),
		newDeleteCmd(a),
		newVersionCmd(),
		newTroubleshootingCmd(a),
		newLoginCmd(a),
	)
	return rootCmd
}

// setup loads the configuration and starts logging, tracing and metrics.
// Flags of the running command take precedence over the environment.
func (a *app) setup(cmd *cobra.Command) error {
	for key, flag := range map[string]string{"region": "region", "lizzy_url": "remote"} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Log.Level, a.verbose)
	if err != nil {
		return err
	}
	a.log = log
	if cfg.File != "" {
		a.log.Debug("using config file", zap.String("file", cfg.File))
	}

	a.metrics = metrics.New(cfg.Metrics.PushgatewayURL)

	shutdown, err := telemetry.InitTracer(cmd.Context(), telemetry.Config{
		Exporter: cfg.Trace.Exporter,
		Endpoint: cfg.Trace.Endpoint,
		Writer:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.shutdownTracer = shutdown
	return nil
}

// client fetches a token and connects to the agent.
func (a *app) client(cmd *cobra.Command) (*agent.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, &orchestrator.FatalError{Message: err.Error(), Err: err}
	}

	action := console.StartAction(cmd.OutOrStdout(), "Fetching authentication token..")
	accessToken, err := a.tokens.Token(cmd.Context(), a.cfg.TokenURL, a.cfg.Scopes, a.cfg.CredentialsDir)
	if err != nil {
		action.Fail("ERROR")
		return nil, err
	}
	action.Progress()
	action.OK()

	return agent.New(a.cfg.LizzyURL, accessToken,
		agent.WithTLSVerify(a.cfg.TLSVerify),
		agent.WithLogger(a.log.Zap()),
		agent.WithObserver(a.metrics),
	)
}

func (a *app) orchestrator(cmd *cobra.Command, c *agent.Client) *orchestrator.Orchestrator {
	return orchestrator.New(c, cmd.OutOrStdout(),
		orchestrator.WithLogger(a.log),
		orchestrator.WithVerbose(a.verbose),
		orchestrator.WithPollInterval(a.cfg.Poll.Interval),
	)
}

// finish flushes telemetry and pushes the run metrics. Failures here never
// change the exit code.
func (a *app) finish(runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.metrics.RecordRun(runErr)
	if err := a.metrics.Push(ctx); err != nil {
		a.log.Warn("failed to report metrics", zap.Error(err))
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			a.log.Warn("failed to flush traces", zap.Error(err))
		}
	}
	a.log.Sync()
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, newApp(), args, stdout, stderr)
}

func run(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	a.finish(err)
	if err == nil {
		return 0
	}

	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "Aborted")
		return 1
	}
	for _, line := range orchestrator.ErrorLines(err) {
		fmt.Fprintln(stderr, line)
	}
	return 1
}
