package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/arnvid/scenery-go/internal/models"
	"github.com/arnvid/scenery-go/internal/scenery"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: models.AppIcon + " run Scenery",

	Run: func(_ *cobra.Command, _ []string) {
		// print header/logo
		fmt.Println(lipgloss.NewStyle().Padding(2, 4).Render(scenery.ASCIIHeader))

		// general log settings & style
		var logLevel log.Level

		switch {
		case viper.GetBool("scenery.debug"):
			logLevel = log.DebugLevel

		case viper.GetBool("scenery.verbose"):
			logLevel = log.InfoLevel

		default:
			logLevel = log.WarnLevel
		}

		models.Printer = log.NewWithOptions(os.Stdout, log.Options{
			ReportTimestamp: false,
			TimeFormat:      " " + "15:04:05",
			ReportCaller:    logLevel < log.InfoLevel,
			Level:           logLevel,
		})

		// run scenery
		if scenery.New() == nil {
			os.Exit(1)
		}

		// loopy mcLoopface 😵‍💫
		select {}
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(runCmd)

	// logging
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show more output")
	_ = viper.BindPFlag("scenery.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "show debug output")
	_ = viper.BindPFlag("scenery.debug", rootCmd.PersistentFlags().Lookup("debug"))

	// defaults
	viper.SetDefault("scenery.defaults.settle_window", 5*time.Second)
	viper.SetDefault("scenery.defaults.reconcile_every", 30*time.Second)
	viper.SetDefault("scenery.defaults.stats_interval", "13m37s")

	viper.SetDefault("homeassistant.defaults.watchdog_check_every", 7*time.Second)
	viper.SetDefault("homeassistant.defaults.watchdog_max_age", 13*time.Second)
}
