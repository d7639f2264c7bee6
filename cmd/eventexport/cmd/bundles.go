package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
)

var bundlesCmd = &cobra.Command{
	Use:   "bundles",
	Short: "List the exportable bundles",
	RunE:  runBundles,
}

func init() {
	rootCmd.AddCommand(bundlesCmd)

	bundlesCmd.Flags().Bool("json", false, "Output as JSON")
	bundlesCmd.Flags().String("category", "", "Only list bundles in this category")
}

func runBundles(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	category, _ := cmd.Flags().GetString("category")

	var bundles []catalog.BundleDescriptor
	for _, b := range catalog.Default().All() {
		if category == "" || strings.EqualFold(b.Category, category) {
			bundles = append(bundles, b)
		}
	}

	w := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bundles)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKIND\tCATEGORY\tSIZE")
	for _, b := range bundles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Name, b.Kind, b.Category, b.SizeEstimate)
	}
	return tw.Flush()
}
