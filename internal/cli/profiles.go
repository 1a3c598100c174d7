package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ProfilesCmd creates the profiles command.
func ProfilesCmd(env *Env) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available reader profiles",
		Example: `  readapt profiles
  readapt profiles --profiles-config school.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(env, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "profiles-config", "", "YAML file overriding or extending the built-in profiles")

	return cmd
}

func runProfiles(env *Env, configPath string) error {
	if configPath != "" {
		if err := env.Profiles.LoadFile(configPath); err != nil {
			return err
		}
	}

	for _, id := range env.Profiles.IDs() {
		p, err := env.Profiles.Get(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "%-10s %s\n", id, p.Name)
	}
	return nil
}
