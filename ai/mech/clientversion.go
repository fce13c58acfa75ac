package mech

import (
	"context"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/mechrelay/errors"
)

// "mechx, version 0.2.16" (click's default --version format)
var clientVersionPattern = regexp.MustCompile(`(?i)version\s+v?(\d+\.\d+(?:\.\d+)?(?:[-+][0-9A-Za-z.\-+]*)?)`)

// ParseClientVersion extracts the semantic version from `mechx --version` output
func ParseClientVersion(output string) (*semver.Version, error) {
	m := clientVersionPattern.FindStringSubmatch(output)
	if m == nil {
		return nil, errors.Newf("no version in client output %q", lastLine(output))
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil, errors.Wrapf(err, "parse client version %q", m[1])
	}
	return v, nil
}

// CheckClientVersion reports whether v satisfies constraint. An empty
// constraint accepts any version.
func CheckClientVersion(v *semver.Version, constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.NewConfigError("mech.min_client_version %q: %v", constraint, err)
	}
	if ok, reasons := c.Validate(v); !ok {
		msg := "version check failed"
		if len(reasons) > 0 {
			msg = reasons[0].Error()
		}
		return errors.WithHintf(
			errors.Mark(errors.Newf("mech client %s does not satisfy %q: %s", v, constraint, msg), errors.ErrClientFailed),
			"upgrade with: pip install --upgrade mech-client")
	}
	return nil
}

// Version runs `<command> --version` and parses the result
func (c *CLIInteractor) Version(ctx context.Context) (*semver.Version, error) {
	out, err := c.run(ctx, append(c.Command(), "--version")...)
	if err != nil {
		return nil, err
	}
	return ParseClientVersion(out)
}
