package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"Mansoor88-6/timesheet-portal/internal/router"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the portal routes and who may reach them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoutes(cmd.OutOrStdout())
	},
}

func printRoutes(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tACCESS\tNAME")
	for _, rt := range router.Describe() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rt.Method, rt.Path, rt.Access, rt.Name)
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", "GET", "/static/*", router.Public, "static")
	return tw.Flush()
}
