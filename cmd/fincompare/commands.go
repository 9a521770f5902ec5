package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"findash/internal/dashboard"
	"findash/internal/exporter"
	"findash/internal/files"
	"findash/internal/services"
	"findash/pkg/contracts"
)

// selectionFlags binds the dashboard controls to command flags.
type selectionFlags struct {
	unit      string
	category  string
	companies []string
	year      int
	trend     bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.unit, "unit", "", "display unit (billions|millions)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category id or label (default: first category)")
	cmd.Flags().StringSliceVar(&f.companies, "company", nil, "company to compare; repeat for several (default: category defaults)")
	cmd.Flags().IntVarP(&f.year, "year", "y", 0, "reference fiscal year (default: latest)")
	cmd.Flags().BoolVar(&f.trend, "trend", false, "include the multi-year trend section")
}

func (f *selectionFlags) request(cmd *cobra.Command) services.SelectionRequest {
	req := services.SelectionRequest{
		Unit:         f.unit,
		Category:     f.category,
		Companies:    f.companies,
		CompaniesSet: cmd.Flags().Changed("company"),
		Year:         f.year,
	}
	if cmd.Flags().Changed("trend") {
		trend := f.trend
		req.Trend = &trend
	}
	return req
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetVersionInfo().String())
		},
	}
}

func newMetaCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "meta",
		Short: "List categories, fiscal years and companies in the data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			meta, err := c.components.Dashboard.Meta(cmd.Context())
			if err != nil {
				return c.explain(err)
			}
			if c.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), meta)
			}

			counts := make(map[string]int, len(meta.Categories))
			for _, cat := range meta.Categories {
				choice, err := c.components.Dashboard.Options(cmd.Context(), cat.ID)
				if err != nil {
					return err
				}
				counts[cat.ID] = len(choice.Options)
			}
			renderMeta(cmd.OutOrStdout(), meta, counts)
			return nil
		},
	}
}

func newViewsCmd(c *cli) *cobra.Command {
	var (
		sel  selectionFlags
		view string
	)

	cmd := &cobra.Command{
		Use:     "views",
		Aliases: []string{"show"},
		Short:   "Print the comparison views for a selection",
		Example: `  fincompare views --category supermarkets --year 2023
  fincompare views -c drugstores --company CVS --company Walgreens --view pl --unit millions`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var only dashboard.ViewID
			if view != "" {
				id, err := dashboard.ParseViewID(view)
				if err != nil {
					return err
				}
				only = id
			}

			result, err := c.components.Dashboard.Build(cmd.Context(), sel.request(cmd))
			if err != nil {
				return c.explain(err)
			}
			d := result.Dashboard
			if only != "" {
				v, ok := d.View(only)
				if !ok {
					return fmt.Errorf("view %q has nothing to show for this selection", only)
				}
				trimmed := *d
				trimmed.Views = []dashboard.View{*v}
				trimmed.Trend = nil
				d = &trimmed
			}

			if c.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			renderDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&view, "view", "", "only this view (pl|bs|metrics|cf|productivity)")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		sel    selectionFlags
		view   string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one view to the exports directory",
		Example: `  fincompare export --view pl --format pdf
  fincompare export --view metrics --format csv --out /tmp/metrics.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := dashboard.ParseViewID(view)
			if err != nil {
				return err
			}
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			path, err := c.components.Dashboard.ExportFile(cmd.Context(), c.paths, out, sel.request(cmd), id, f)
			if err != nil {
				return c.explain(err)
			}

			if c.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"view": string(id), "format": string(f), "path": path})
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&view, "view", string(dashboard.ViewPL), "view to export (pl|bs|metrics|cf|productivity)")
	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatHTML), "export format (html|csv|pdf)")
	cmd.Flags().StringVar(&out, "out", "", "file name under the exports directory, or an absolute path")
	return cmd
}

func newExportsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "exports",
		Short: "List the reports in the exports directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			found, err := files.NewDiscovery(c.paths).Exports()
			if err != nil {
				return err
			}
			if c.output == outputJSON {
				if found == nil {
					found = []files.FileInfo{}
				}
				return writeJSON(cmd.OutOrStdout(), found)
			}
			renderExports(cmd.OutOrStdout(), c.paths.ExportsDir, found)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
