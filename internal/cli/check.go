package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// CheckCmd creates the check command.
func CheckCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe generation-service connectivity",
		Long: `Send one minimal request to the generation service and report the outcome.

The probe is not retried: it reports the service's current state. Use it to
verify the API key and network before a long adaptation run.`,
		Example: `  readapt check`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, env)
		},
	}
}

func runCheck(cmd *cobra.Command, env *Env) error {
	apiKey := env.Getenv(EnvAPIKey)
	if apiKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvAPIKey)
	}

	checker, err := env.ClientFactory.NewChecker(apiKey)
	if err != nil {
		return err
	}

	status := checker.CheckConnectivity(cmd.Context())
	if !status.OK() {
		return fmt.Errorf("%w: %s (%s)", ErrConnectivity, status.Detail, status.State)
	}

	fmt.Fprintf(env.Stdout, "Connected (%s)\n", status.Latency.Round(time.Millisecond))
	return nil
}
