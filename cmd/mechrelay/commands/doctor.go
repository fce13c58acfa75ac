package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/mechrelay/ai/mech"
	"github.com/teranos/mechrelay/am"
	"github.com/teranos/mechrelay/errors"
)

// DoctorCmd checks the local prerequisites of an interaction
var DoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the mech client, its version and the key file",
	Long: `Verify everything a prompt needs locally: the configuration is valid, the
mech client is installed and new enough, and the private key file yields a
sender address. Nothing is sent to the chain.`,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	checks := []mech.Check{{Name: "am.toml", Detail: "valid", Err: cfg.Validate()}}

	client, err := newClient(cfg)
	if err != nil {
		checks = append(checks, mech.Check{Name: "client", Err: err})
	} else {
		checks = append(checks, mech.Preflight(cmd.Context(), mech.PreflightOptions{
			Client:           client,
			Config:           cfg.MechSettings(),
			MinClientVersion: cfg.Mech.MinClientVersion,
		})...)
	}

	for _, c := range checks {
		if c.OK() {
			pterm.Success.Printf("%-15s %s\n", c.Name, c.Detail)
			continue
		}
		pterm.Error.Printf("%-15s %v\n", c.Name, c.Err)
		for _, hint := range errors.GetAllHints(c.Err) {
			pterm.Println("                " + hint)
		}
	}

	if err := mech.FirstFailure(checks); err != nil {
		return errors.Wrap(err, "doctor found problems")
	}
	return nil
}
