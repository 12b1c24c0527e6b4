// Package commands adds pricing sub-commands to the PocketBase CLI.
package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"pipepricing/config"
	"pipepricing/services"
)

// Register adds the price and reverse commands to root.
func Register(root *cobra.Command, app core.App, cfg *config.Config) {
	root.AddCommand(NewPriceCommand(app, cfg), NewReverseCommand(app, cfg))
}

// catalogFlags are shared by both commands.
type catalogFlags struct {
	catalog  string
	material string
	filters  []string

	cmd *cobra.Command
}

func (f *catalogFlags) bind(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&f.catalog, "catalog", cfg.CatalogPath, "catalog file (.xlsx or .csv)")
	cmd.Flags().StringVar(&f.material, "material", cfg.DefaultMaterial, "material family (sheet name)")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "attribute filter NAME=VALUE, repeatable")
	f.cmd = cmd
}

// section is the material to load. A CSV holds a single section named after
// the file, so the configured default only applies when --material is given.
func (f *catalogFlags) section() string {
	if strings.EqualFold(filepath.Ext(f.catalog), ".csv") && !f.cmd.Flags().Changed("material") {
		return ""
	}
	return f.material
}

func (f *catalogFlags) load(app core.App, cfg *config.Config) (*services.Catalog, services.AttributeSet, error) {
	provider := services.NewCatalogProvider(app, f.catalog, cfg.RequiredAttributes)
	cat, err := provider.Load(f.section())
	if err != nil {
		return nil, nil, err
	}
	filters, err := services.ParseFilterArgs(f.filters, cat.Attributes)
	if err != nil {
		return nil, nil, err
	}
	return cat, filters, nil
}

// NewPriceCommand prices one or more sizes from the command line.
func NewPriceCommand(app core.App, cfg *config.Config) *cobra.Command {
	var (
		flags     catalogFlags
		tonPrice  float64
		unit      string
		diameters string
	)

	cmd := &cobra.Command{
		Use:     "price",
		Short:   "Price pipe sizes from a ton price",
		Example: "  pipepricing price --material HDPE --ton 50000 --diameters 110,160 --filter PN=10",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := services.ParseUnit(unit)
			if err != nil {
				return err
			}
			values, err := services.ParseDiameterList(diameters)
			if err != nil {
				return err
			}
			in := services.ForwardInput{TonPrice: tonPrice, Diameters: values, Unit: u}
			if err := in.Validate(); err != nil {
				return err
			}

			cat, filters, err := flags.load(app, cfg)
			if err != nil {
				return err
			}

			result := services.PriceBatch(cat, values, u, filters, tonPrice)
			writePriceTable(cmd.OutOrStdout(), cat, result, cfg.Currency)
			if len(result.Items) == 0 {
				return fmt.Errorf("no size could be priced")
			}
			return nil
		},
	}
	flags.bind(cmd, cfg)
	cmd.Flags().Float64Var(&tonPrice, "ton", 0, "raw material price per ton")
	cmd.Flags().StringVar(&unit, "unit", string(services.UnitMM), "diameter unit: mm or inch")
	cmd.Flags().StringVar(&diameters, "diameters", "", "comma separated diameters")
	_ = cmd.MarkFlagRequired("ton")
	_ = cmd.MarkFlagRequired("diameters")
	return cmd
}

// NewReverseCommand infers the ton price behind an offered price per meter.
func NewReverseCommand(app core.App, cfg *config.Config) *cobra.Command {
	var (
		flags    catalogFlags
		diameter float64
		offer    float64
	)

	cmd := &cobra.Command{
		Use:     "reverse",
		Short:   "Infer the ton price behind a price per meter",
		Example: "  pipepricing reverse --material HDPE --diameter 110 --offer 125 --filter SDR=11",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := services.ReverseInput{Diameter: diameter, Observed: offer}
			if err := in.Validate(); err != nil {
				return err
			}

			cat, filters, err := flags.load(app, cfg)
			if err != nil {
				return err
			}

			result, err := services.PriceReverse(cat, diameter, filters, offer)
			if err != nil {
				return err
			}
			writeReverseTable(cmd.OutOrStdout(), result, cfg.Currency)
			return nil
		},
	}
	flags.bind(cmd, cfg)
	cmd.Flags().Float64Var(&diameter, "diameter", 0, "catalog diameter in mm")
	cmd.Flags().Float64Var(&offer, "offer", 0, "offered price per meter")
	_ = cmd.MarkFlagRequired("diameter")
	_ = cmd.MarkFlagRequired("offer")
	return cmd
}

func specLabel(attrs services.AttributeSet) string {
	if active := attrs.Active(); len(active) > 0 {
		return active.String()
	}
	return services.Sentinel
}

func writePriceTable(out io.Writer, cat *services.Catalog, result services.BatchResult, currency string) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tDIAMETER (mm)\tSPEC\tWEIGHT (kg/m)\tPRICE / m (%s)\n", cat.Material, currency)
	for _, it := range result.Items {
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\t%s\n",
			services.FormatNumber(it.Resolution.Input), it.Resolution.Unit,
			services.FormatNumber(it.Row.Diameter),
			specLabel(it.Row.Attributes),
			services.FormatNumber(it.Row.Weight),
			services.FormatMoney(it.PricePerMeter))
	}
	tw.Flush()

	warn := color.New(color.FgYellow)
	for _, s := range result.Skipped {
		warn.Fprintf(out, "skipped %s: %v\n", services.FormatNumber(s.Input), s.Err)
	}
}

func writeReverseTable(out io.Writer, result services.ReverseResult, currency string) {
	if result.Ambiguous {
		color.New(color.FgYellow).Fprintf(out, "%d standards match %s %s mm; one implied price per standard\n",
			len(result.Candidates), result.Material, services.FormatNumber(result.Diameter))
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "SPEC\tWEIGHT (kg/m)\tTON PRICE (%s)\n", currency)
	for _, c := range result.Candidates {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			specLabel(c.Row.Attributes),
			services.FormatNumber(c.Row.Weight),
			services.FormatMoney(c.TonPrice))
	}
	tw.Flush()
}
