package mech

import (
	"context"
	"os/exec"
	"time"

	"github.com/teranos/mechrelay/errors"
)

// Check is the outcome of one preflight step
type Check struct {
	Name   string
	Detail string // what was found, e.g. the client path or sender address
	Err    error
}

// OK reports whether the check passed
func (c Check) OK() bool { return c.Err == nil }

// PreflightOptions selects what Preflight inspects
type PreflightOptions struct {
	Client           *CLIInteractor
	Config           Config
	MinClientVersion string
	VersionTimeout   time.Duration // default 10s
}

// Preflight verifies the local prerequisites of an interaction: the client
// is installed, new enough, and the key file yields a sender address.
// It never contacts the chain.
func Preflight(ctx context.Context, opts PreflightOptions) []Check {
	checks := make([]Check, 0, 4)

	checks = append(checks, checkConfig(opts.Config))

	client := checkClientInstalled(opts.Client)
	checks = append(checks, client)
	if client.OK() {
		checks = append(checks, checkClientVersion(ctx, opts))
	}

	checks = append(checks, checkKeyFile(opts.Config.PrivateKeyPath))
	return checks
}

// FirstFailure returns the first failed check's error, or nil
func FirstFailure(checks []Check) error {
	for _, c := range checks {
		if !c.OK() {
			return errors.Wrap(c.Err, c.Name)
		}
	}
	return nil
}

func checkConfig(cfg Config) Check {
	return Check{
		Name:   "config",
		Detail: cfg.Tool + " on " + cfg.ChainConfig,
		Err:    cfg.Validate(),
	}
}

func checkClientInstalled(client *CLIInteractor) Check {
	check := Check{Name: "client"}
	if client == nil {
		check.Err = errors.New("no mech client configured")
		return check
	}
	path, err := exec.LookPath(client.command[0])
	if err != nil {
		check.Err = errors.WithHint(errors.Mark(errors.Wrapf(err, "mech client %q", client.command[0]), errors.ErrClientNotFound), installHint)
		return check
	}
	check.Detail = path
	return check
}

func checkClientVersion(ctx context.Context, opts PreflightOptions) Check {
	check := Check{Name: "client version"}

	timeout := opts.VersionTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := opts.Client.Version(ctx)
	if err != nil {
		check.Err = err
		return check
	}
	check.Detail = v.String()
	check.Err = CheckClientVersion(v, opts.MinClientVersion)
	return check
}

func checkKeyFile(path string) Check {
	check := Check{Name: "key file"}
	sender, err := LoadSender(path)
	if err != nil {
		check.Err = err
		return check
	}
	check.Detail = sender.Hex()
	return check
}
