package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available procedurals",
	Long:  `List every procedural that loaded successfully, with its version, state and parameters.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close(cmd.Context())

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tSTATE\tSOURCE\tPARAMETERS")

	for _, info := range a.runtime.List() {
		params := make([]string, 0, len(info.Manifest.Parameters))
		for _, p := range info.Manifest.Parameters {
			name := p.Name + ":" + string(p.Type)
			if p.Required {
				name += "*"
			}
			params = append(params, name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			info.ID, info.Manifest.Version, info.State, info.Source, strings.Join(params, " "))
	}

	return w.Flush()
}
