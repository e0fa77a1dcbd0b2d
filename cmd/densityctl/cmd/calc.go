package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/materials-commons/partdensity/pkg/density"
	"github.com/materials-commons/partdensity/pkg/densityclient"
	"github.com/spf13/cobra"
)

func parseFloats(args []string) []float64 {
	values := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			log.Fatalf("%q is not a number", arg)
		}
		values = append(values, v)
	}
	return values
}

var theoreticalCmd = &cobra.Command{
	Use:   "theoretical <part-code>",
	Short: "Show the theoretical density of a part",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		r, err := client.TheoreticalDensity(context.Background(), args[0])
		if err != nil {
			log.Fatalf("%s", err)
		}

		if d, ok := r.Get(); ok {
			fmt.Printf("%s: %.3f g/cm3 (%s)\n", args[0], d, r.Source)
			return
		}
		fmt.Printf("%s: %s (%s)\n", args[0], r.State, r.Reason)
	},
}

var measuredCmd = &cobra.Command{
	Use:   "measured",
	Short: "Compute the Archimedes density of a weighed part",
	Run: func(cmd *cobra.Command, args []string) {
		var req densityclient.WeighingRequest
		flags := cmd.Flags()
		req.MassInAir, _ = flags.GetFloat64("air")
		req.MassInFluid, _ = flags.GetFloat64("fluid")
		req.FluidDensity, _ = flags.GetFloat64("fluid-density")
		req.AttachmentMassInAir, _ = flags.GetFloat64("attachment-air")
		req.AttachmentMassInFluid, _ = flags.GetFloat64("attachment-fluid")
		req.AttachmentExists = flags.Changed("attachment-air") || flags.Changed("attachment-fluid")

		d, err := client.MeasuredDensity(context.Background(), req)
		if err != nil {
			log.Fatalf("%s", err)
		}
		fmt.Printf("%.2f g/cm3\n", d)
	},
}

var compactnessCmd = &cobra.Command{
	Use:   "compactness <part-density> <theoretical-density>",
	Short: "Compute a compactness ratio in percent",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		v := parseFloats(args)
		ratio, err := client.CompactnessRatio(context.Background(), v[0], v[1])
		if err != nil {
			log.Fatalf("%s", err)
		}
		fmt.Printf("%.1f%%\n", ratio)
	},
}

var porosityCmd = &cobra.Command{
	Use:   "porosity <master-density> <part-density>",
	Short: "Compute porosity in percent relative to a master density",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		v := parseFloats(args)
		porosity, err := client.Porosity(context.Background(), v[0], v[1])
		if err != nil {
			log.Fatalf("%s", err)
		}
		fmt.Printf("%.2f%%\n", porosity)
	},
}

func init() {
	rootCmd.AddCommand(theoreticalCmd, measuredCmd, compactnessCmd, porosityCmd)

	measuredCmd.Flags().Float64("air", 0, "mass in air (g)")
	measuredCmd.Flags().Float64("fluid", 0, "mass in fluid (g)")
	measuredCmd.Flags().Float64("fluid-density", density.WaterDensity, "fluid density (g/cm3)")
	measuredCmd.Flags().Float64("attachment-air", 0, "attachment mass in air (g)")
	measuredCmd.Flags().Float64("attachment-fluid", 0, "attachment mass in fluid (g)")
	_ = measuredCmd.MarkFlagRequired("air")
	_ = measuredCmd.MarkFlagRequired("fluid")
}
