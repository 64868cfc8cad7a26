package cmd

import (
	"fmt"
	"math"

	"github.com/phanxgames/ripple"
	"github.com/spf13/cobra"
)

var checkSteps int

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and print the compiled timeline",
	RunE:  check,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().IntVar(&checkSteps, "steps", 6, "number of progress samples to print")
}

func check(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tl, spin, err := cfg.Timeline.Build()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config ok: %d sections, %d segments, timeline total %.3g\n",
		len(cfg.Sections), len(tl.Segments()), tl.Total())
	for _, s := range tl.Segments() {
		arms := ""
		if s.ArmsSpin {
			arms = " (arms spin)"
		}
		fmt.Fprintf(out, "  %-18s %-8s %-3s [%g, %g]%s\n",
			s.Label, s.Property, s.Axes, s.Start, s.End(), arms)
	}
	if spin.Period > 0 {
		fmt.Fprintf(out, "spin: axis %s, %.3g s per turn\n", spin.Axis, spin.Period)
	}

	steps := max(checkSteps, 1)
	fmt.Fprintln(out, "progress   position                 rotation")
	for i := 0; i <= steps; i++ {
		p := float64(i) / float64(steps)
		tr := tl.Resolve(p)
		fmt.Fprintf(out, "%8.3f   %-24s %s\n", p, fmtVec(tr.Position), fmtVec(tr.Rotation))
	}

	font, err := ripple.LoadTTFFont(ripple.BoldTTF, cfg.Marquee.FontSize)
	if err != nil {
		return err
	}
	m := ripple.NewMarquee(ripple.MarqueeConfig{
		Phrase: cfg.Marquee.Phrase,
		Repeat: cfg.Marquee.Repeat,
		Copies: cfg.Marquee.Copies,
	}, font)
	fmt.Fprintf(out, "marquee: pattern width %.2f, repeat %d, offset at start %.2f\n",
		m.PatternWidth(), m.Config().Repeat, m.Offset())
	return nil
}

func fmtVec(v ripple.Vec3) string {
	r := func(x float64) float64 { return math.Round(x*1000) / 1000 }
	return fmt.Sprintf("(%g, %g, %g)", r(v.X), r(v.Y), r(v.Z))
}
