package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Import employees and orders from a YAML seed file",
		Long: `Import employees and orders from a YAML seed file.

Records whose id already exists are left unchanged, so a seed file can be
imported repeatedly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.Seed.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Employees: %d created, %d already present\n", res.EmployeesCreated, res.EmployeesSkipped)
			fmt.Fprintf(cmd.OutOrStdout(), "Orders:    %d created, %d already present\n", res.OrdersCreated, res.OrdersSkipped)
			return nil
		},
	}
}
