package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/neo-impact-service/internal/app"
	"github.com/couchcryptid/neo-impact-service/internal/config"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "neoctl",
		Short:         "Near-Earth object enrichment and impact estimates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImpactCmd(), newEnrichCmd(), newTaxonomyCmd())
	return root
}

type impactFlags struct {
	diameterKm  float64
	densityGCm3 float64
	massKg      float64
	velocityKms float64
	angleDeg    float64
	target      string
	waterDepthM float64
	coastDepthM float64
	coastRKm    []float64
	runup       float64
	dispersion  float64
	coupling    float64
}

func newImpactCmd() *cobra.Command {
	var f impactFlags
	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Estimate impact effects for a body described by flags",
		Long: `Runs the impact estimator without contacting any catalog. Mass is
derived from diameter and density unless --mass-kg is given. Water and ice
targets add the ocean wave block.`,
		Example: "  neoctl impact --diameter-km 0.37 --velocity-kms 12.6 --target water",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := runImpact(f)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.diameterKm, "diameter-km", 0, "impactor diameter in km (required)")
	fl.Float64Var(&f.densityGCm3, "density-g-cm3", domain.DefaultDensityGCm3, "impactor bulk density in g/cm³")
	fl.Float64Var(&f.massKg, "mass-kg", 0, "impactor mass in kg; derived when omitted")
	fl.Float64Var(&f.velocityKms, "velocity-kms", domain.DefaultVelocityKms, "impact velocity in km/s")
	fl.Float64Var(&f.angleDeg, "angle-deg", domain.DefaultAngleDeg, "impact angle from horizontal in degrees")
	fl.StringVar(&f.target, "target", string(domain.TargetRock), "target: rock, sedimentary, crystalline, water, ice")
	fl.Float64Var(&f.waterDepthM, "water-depth-m", domain.DefaultWaterDepthM, "open-ocean depth in m")
	fl.Float64Var(&f.coastDepthM, "coast-depth-m", domain.DefaultCoastDepthM, "coastal depth in m")
	fl.Float64SliceVar(&f.coastRKm, "coast-r-km", domain.DefaultCoastDistancesKm, "far-field distances in km")
	fl.Float64Var(&f.runup, "runup-factor", domain.DefaultRunupFactor, "run-up multiple of coastal amplitude")
	fl.Float64Var(&f.dispersion, "dispersion-length-km", domain.DefaultDispersionLengthKm, "wave dispersion length in km")
	fl.Float64Var(&f.coupling, "coupling", domain.DefaultCoupling, "seismic coupling efficiency")
	_ = cmd.MarkFlagRequired("diameter-km")

	return cmd
}

func runImpact(f impactFlags) (domain.ImpactResult, error) {
	mass := f.massKg
	if mass == 0 {
		mass = domain.SphereMass(f.diameterKm, f.densityGCm3)
	}
	body := domain.EnrichmentResult{
		DiameterKm:  f.diameterKm,
		DensityGCm3: f.densityGCm3,
		MassKg:      mass,
		Source:      domain.SourceEstimate,
	}
	scenario := domain.ImpactScenario{
		VelocityKms: f.velocityKms,
		AngleDeg:    f.angleDeg,
		Target:      domain.Target(strings.ToLower(f.target)),
		Ocean: domain.OceanParams{
			WaterDepthM:        f.waterDepthM,
			CoastDepthM:        f.coastDepthM,
			CoastDistancesKm:   f.coastRKm,
			RunupFactor:        f.runup,
			DispersionLengthKm: f.dispersion,
		},
		Coupling: f.coupling,
	}
	return domain.AssessImpact(body, scenario)
}

func newEnrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich <neo-id>",
		Short: "Resolve physical parameters for a NEO using the configured catalogs",
		Long: `Fetches the NEO from NeoWs and resolves diameter, density, and mass
through SsODNet and SBDB, estimating whatever they lack. Configuration is read
from the same environment variables as the service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.LogLevel = "warn"
			logger := observability.NewLogger(cfg)

			a, err := app.New(cfg, observability.NewMetricsForTesting(), logger)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck // best effort on exit

			e, err := a.Service.Enrichment(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("enrich %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), e)
		},
	}
}

func newTaxonomyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the spectral class density table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CLASS\tDENSITY (g/cm³)")
			for _, row := range domain.TaxonomyTable() {
				fmt.Fprintf(tw, "%s\t%.2f\n", row.Class, row.DensityGCm3)
			}
			return tw.Flush()
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
