package mech

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/internal/httpclient"
	"github.com/teranos/mechrelay/logger"
)

const installHint = "install the mech client (pip install mech-client) or set mech.command"

// CLIOptions configures a CLIInteractor
type CLIOptions struct {
	// Command is the client invocation prefix, split with shell quoting
	// rules (e.g. "mechx" or "poetry run mechx").
	Command string
	// Timeout bounds one interaction; 0 waits as long as the caller's context.
	Timeout time.Duration
	// Gateway fetches delivery documents. Defaults to an SSRF-safe client.
	Gateway *httpclient.SaferClient
	Logger  *zap.SugaredLogger
}

// CLIInteractor runs `mechx interact` for each request
type CLIInteractor struct {
	command []string
	timeout time.Duration
	gateway *httpclient.SaferClient
	logger  *zap.SugaredLogger
}

// NewCLIInteractor parses the command prefix and prepares the delivery client
func NewCLIInteractor(opts CLIOptions) (*CLIInteractor, error) {
	words, err := shellquote.Split(opts.Command)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "mech.command %q", opts.Command), errors.ErrInvalidConfig)
	}
	if len(words) == 0 {
		return nil, errors.NewConfigError("mech.command cannot be empty")
	}

	gateway := opts.Gateway
	if gateway == nil {
		gateway = httpclient.NewSaferClient(60 * time.Second)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &CLIInteractor{
		command: words,
		timeout: opts.Timeout,
		gateway: gateway,
		logger:  log.Named("mechx"),
	}, nil
}

// Command returns the parsed command prefix
func (c *CLIInteractor) Command() []string {
	return append([]string(nil), c.command...)
}

// Args builds the full argv for one interaction. Options come first and
// "--" ends them, so a prompt starting with "-" is never read as a flag.
func (c *CLIInteractor) Args(req Request) []string {
	args := append(c.Command(),
		"interact",
		"--key", req.PrivateKeyPath,
		"--tool", req.Tool,
		"--chain-config", req.ChainConfig,
		"--confirm", req.ConfirmationType.Flag(),
		"--",
		req.Prompt,
		strconv.Itoa(req.AgentID),
	)
	return args
}

// Interact runs the client and turns its output into a Result
func (c *CLIInteractor) Interact(ctx context.Context, req Request) (Result, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	stdout, err := c.run(ctx, c.Args(req)...)
	if err != nil {
		return Result{}, err
	}

	out := parseClientOutput(stdout)
	result := Result{RequestID: out.RequestID, DeliveryURL: out.DeliveryURL, TxURL: out.TxURL}

	if out.DeliveryURL != "" {
		var doc any
		fetchErr := c.gateway.GetJSON(ctx, out.DeliveryURL, &doc)
		if fetchErr == nil {
			result.Value = doc
			return result, nil
		}
		if out.AgentData == "" {
			return Result{}, errors.Mark(errors.Wrapf(fetchErr, "fetch delivery %s", out.DeliveryURL), errors.ErrDeliveryFetch)
		}
		logger.FromContext(ctx, c.logger).Warnw("Delivery fetch failed, using client output",
			logger.FieldDeliveryURL, out.DeliveryURL,
			logger.FieldError, fetchErr)
	}

	switch {
	case out.AgentData != "":
		result.Value = decodeValue(out.AgentData)
	case out.Raw != "":
		result.Value = out.Raw
	default:
		return Result{}, errors.WithHint(errors.ErrNoResult, "the mech client exited cleanly but printed nothing")
	}
	return result, nil
}

// run executes the client and returns stdout. Failures carry the last stderr
// line as their message so callers see the client's own words.
func (c *CLIInteractor) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Don't hang on grandchildren still holding the output pipes after a kill
	cmd.WaitDelay = 5 * time.Second

	log := logger.FromContext(ctx, c.logger)
	log.Debugw("Running mech client", "argv0", args[0], "subcommand", args[len(c.command)])

	start := time.Now()
	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return "", errors.WithHint(errors.Mark(errors.Wrapf(err, "mech client %q", args[0]), errors.ErrClientNotFound), installHint)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", errors.Wrap(ctxErr, timeoutMessage(ctx, c.timeout, start))
		}
		return "", errors.Wrap(ctxErr, "mech interaction cancelled")
	}

	msg := lastLine(stderr.String())
	if msg == "" {
		msg = lastLine(stdout.String())
	}
	if msg == "" {
		msg = err.Error()
	}
	log.Debugw("Mech client failed", logger.FieldError, err, "stderr", stderr.String())
	return "", errors.Mark(errors.New(msg), errors.ErrClientFailed)
}

// timeoutMessage reports the deadline that actually expired, which may be the
// caller's rather than the configured timeout.
func timeoutMessage(ctx context.Context, configured time.Duration, start time.Time) string {
	if deadline, ok := ctx.Deadline(); ok {
		return fmt.Sprintf("mech interaction timed out after %s", deadline.Sub(start).Round(10*time.Millisecond))
	}
	if configured > 0 {
		return fmt.Sprintf("mech interaction timed out after %s", configured)
	}
	return "mech interaction timed out"
}
