package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/decoder"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/materials-commons/partdensity/pkg/densityclient"
	"github.com/materials-commons/partdensity/pkg/lot"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var lotCmd = &cobra.Command{
	Use:   "lot <part-code> <measurements.yaml>",
	Short: "Compute density, compactness and porosity for a lot",
	Long: `Compute a lot from a YAML list of weighings, for example:

  - {mass_in_air: 10.02, mass_in_fluid: 8.01}
  - {mass_in_air: 9.98, mass_in_fluid: 7.97}

Without --master the densest part of the lot is the porosity reference.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		measurements, err := readMeasurements(args[1])
		if err != nil {
			log.Fatalf("Unable to read measurements: %s", err)
		}

		flags := cmd.Flags()
		req := densityclient.LotRequest{}
		req.PartCode = args[0]
		req.Measurements = measurements
		req.FluidDensity, _ = flags.GetFloat64("fluid-density")
		req.AttachmentExists, _ = flags.GetBool("attachment")
		req.AssignSerials, _ = flags.GetBool("serials")
		req.Date, _ = flags.GetString("date")

		if flags.Changed("master") {
			master, _ := flags.GetFloat64("master")
			req.Master = &lot.MasterSample{Density: &master}
		}

		result, err := client.ComputeLot(context.Background(), req)
		if err != nil {
			log.Fatalf("%s", err)
		}

		printLot(result)
	},
}

func readMeasurements(path string) ([]density.Measurement, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []any
	if err := yaml.Unmarshal(b, &items); err != nil {
		return nil, err
	}

	return decoder.DecodeEachStrict[density.Measurement](items)
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func printLot(result *lot.LotResult) {
	if d, ok := result.Theoretical.Get(); ok {
		fmt.Printf("Theoretical density: %.3f (%s)\n", d, result.Theoretical.Source)
	} else {
		fmt.Printf("Theoretical density: %s (%s)\n", result.Theoretical.State, result.Theoretical.Reason)
	}
	fmt.Printf("Reference density:   %s (%s)\n\n", formatOptional(result.ReferenceDensity, "%.2f"), result.ReferenceSource)

	table := tablewriter.NewWriter(os.Stdout)
	defer table.Close()

	table.Header([]string{"#", "Serial", "Density", "Compactness %", "Porosity %", "Errors"})

	var rows [][]string
	for _, row := range result.Rows {
		porosity := formatOptional(row.Porosity, "%.2f")
		if row.PorosityState == lot.PorosityReference {
			porosity = "Reference Part"
		}

		var errs []string
		for _, e := range row.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", e.Field, e.Kind))
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", row.Index+1),
			row.Serial,
			formatOptional(row.Density, "%.2f"),
			formatOptional(row.CompactnessRatio, "%.1f"),
			porosity,
			strings.Join(errs, ", "),
		})
	}

	if err := table.Bulk(rows); err != nil {
		log.Errorf("Unable to format lot: %s", err)
		return
	}
	_ = table.Render()
}

var serialsCmd = &cobra.Command{
	Use:   "serials <part-code> <count>",
	Short: "Reserve a block of lot serial numbers",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		var count int
		if _, err := fmt.Sscanf(args[1], "%d", &count); err != nil {
			log.Fatalf("%q is not a count", args[1])
		}

		date, _ := cmd.Flags().GetString("date")
		serials, err := client.NextSerialBlock(context.Background(), args[0], date, count)
		if err != nil {
			log.Fatalf("%s", err)
		}

		for _, s := range serials {
			fmt.Println(s)
		}
	},
}

func init() {
	rootCmd.AddCommand(lotCmd, serialsCmd)

	today := time.Now().Format("2006-01-02")

	lotCmd.Flags().Float64("fluid-density", density.WaterDensity, "fluid density (g/cm3)")
	lotCmd.Flags().Bool("attachment", false, "weighings include an attachment")
	lotCmd.Flags().Float64("master", 0, "known master sample density (g/cm3)")
	lotCmd.Flags().Bool("serials", false, "assign serial numbers to the rows")
	lotCmd.Flags().String("date", today, "lot date (YYYY-MM-DD)")

	serialsCmd.Flags().String("date", today, "lot date (YYYY-MM-DD)")
}
