package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/ripple"
	"github.com/spf13/cobra"
)

var (
	runDebug       bool
	runFPS         bool
	runScript      string
	runScreenshots string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the page in a window",
	RunE:  Run,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runDebug, "debug", false, "log per-frame stats and segment events")
	runCmd.Flags().BoolVar(&runFPS, "fps", false, "show the FPS overlay")
	runCmd.Flags().StringVar(&runScript, "script", "", "JSON test script to drive scrolling and screenshots")
	runCmd.Flags().StringVar(&runScreenshots, "screenshots", "screenshots", "directory for screenshots")
}

func Run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	page, err := ripple.NewPage(cfg)
	if err != nil {
		return err
	}
	defer page.Dispose()

	scene := page.Scene
	scene.SetDebugMode(runDebug)
	scene.ScreenshotDir = runScreenshots

	if runScript != "" {
		data, err := os.ReadFile(runScript)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err := ripple.LoadTestScript(data)
		if err != nil {
			return err
		}
		scene.SetTestRunner(runner)
		// Stop one update after the last step so its screenshot gets drawn.
		finished := false
		scene.SetUpdateFunc(func() error {
			if finished {
				log.Printf("[ripple] script finished, %d screenshot(s)", len(scene.Screenshots()))
				return ebiten.Termination
			}
			finished = runner.Done()
			return nil
		})
	}

	log.Printf("[ripple] marquee pattern width %.1f, %d copies", page.Marquee.PatternWidth(), page.Marquee.Copies())

	return ripple.Run(scene, ripple.RunConfig{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		ShowFPS:   runFPS,
		Resizable: cfg.Window.Resizable,
		TPS:       cfg.Window.TPS,
	})
}
