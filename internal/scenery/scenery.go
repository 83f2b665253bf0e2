package scenery

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arnvid/scenery-go/internal/homeassistant"
	"github.com/arnvid/scenery-go/internal/icons"
	"github.com/arnvid/scenery-go/internal/match"
	"github.com/arnvid/scenery-go/internal/models"
	"github.com/arnvid/scenery-go/internal/profile"
	"github.com/arnvid/scenery-go/internal/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron"
	"github.com/spf13/viper"
)

// Scenery wires the configuration, the Home Assistant client and the
// coordinators together and runs the periodic reconcile job.
type Scenery struct {
	// Pr is the global (pretty) printer for Scenery.
	Pr *log.Logger

	config   *Config
	ha       *homeassistant.HomeAssistant
	registry *Registry

	tolerances   match.Tolerances
	settleWindow time.Duration

	// reconcile scheduler
	scheduler *gocron.Scheduler

	style lipgloss.Style

	// time when Scenery was started
	startTime time.Time
}

func New() *Scenery {
	sty := lipgloss.NewStyle().Foreground(lipgloss.Color("#26C6DA"))

	sc := &Scenery{
		Pr: models.Printer.WithPrefix(sty.Faint(true).Render(models.AppName)),

		scheduler: gocron.NewScheduler(time.UTC),

		style: sty,

		startTime: time.Now(),
	}

	// load & validate configuration
	config, err := loadConfig()
	if err != nil {
		sc.Pr.With("err", err).Error("❌ loading configuration failed")

		return nil
	}

	if len(config.Lights) == 0 && len(config.SceneGroups) == 0 {
		sc.Pr.Error("❌ no lights or scene groups configured")

		return nil
	}

	sc.config = config

	sc.tolerances = tolerancesFromViper()
	sc.settleWindow = viper.GetDuration("scenery.defaults.settle_window")

	// create homeassistant client
	sc.ha = sc.createHomeAssistantSession(viper.GetString("homeassistant.url"), viper.GetString("homeassistant.token"))

	sc.Pr.Infof("%s Home Assistant session created", icons.GreenTick)

	sc.registry = NewRegistry(sc.Pr)

	// profile selects
	for _, binding := range config.Lights {
		pr := sc.Pr.WithPrefix(lipgloss.NewStyle().Foreground(GenerateColorFromString(binding.Name)).Render(binding.Name))

		if !sc.ha.IsAvailable(binding.Entity) {
			pr.Warnf("%s %s is currently unavailable", icons.Blind, binding.Entity.FmtString())
		}

		ps := NewProfileSelect(binding.Name, binding.Entity, binding.Profiles, config.Profiles, binding.OffOption, sc.tolerances, sc.settleWindow, sc.ha, newPublisher(sc.ha, binding.Mirror, pr), pr)

		go ps.Run()

		sc.registry.addProfileSelect(binding.Entity, ps)

		// seed the favorite colors assembled from the binding
		sc.registry.favorites.Seed(binding.Entity, profile.FavoriteColors(binding.Profiles, binding.FavoriteColors))

		fmt.Println(fmtLightConfig(binding))
	}

	// scene selects
	for _, binding := range config.SceneGroups {
		pr := sc.Pr.WithPrefix(lipgloss.NewStyle().Foreground(GenerateColorFromString(binding.Name)).Render(binding.Name))

		for _, entityID := range binding.Group.EntityIDs().ToSlice() {
			if !sc.ha.IsAvailable(entityID) {
				pr.Warnf("%s %s is currently unavailable", icons.Blind, entityID.FmtString())
			}
		}

		ss := NewSceneSelect(binding.Name, binding.Group, config.Profiles, sc.tolerances, sc.settleWindow, sc.ha, newPublisher(sc.ha, binding.Mirror, pr), pr)

		go ss.Run()

		sc.registry.addSceneSelect(ss)

		fmt.Println(fmtSceneGroupConfig(binding))
	}

	fmt.Println()

	// print loaded lights, profiles & scene groups
	intro := strings.Builder{}
	intro.WriteString(icons.LightOn + " ")
	intro.WriteString(style.Bold(strconv.Itoa(len(config.Lights))))
	intro.WriteString(" lights | ")
	intro.WriteString(icons.Palette + " ")
	intro.WriteString(style.Bold(strconv.Itoa(config.Profiles.Len())))
	intro.WriteString(" profiles | ")
	intro.WriteString(icons.Scene + " ")
	intro.WriteString(style.Bold(strconv.Itoa(len(config.SceneGroups))))
	intro.WriteString(" scene groups ")
	intro.WriteString(style.DarkDivider.String() + style.DarkDivider.String() + " ")
	intro.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#CC99CC")).Render(time.Now().Format("15:04:05")))
	intro.WriteString(" 🕰️")
	intro.WriteString("\n")
	sc.Pr.Print(intro.String())

	// periodic reconcile & settle sweep
	if _, err := sc.scheduler.Every(viper.GetDuration("scenery.defaults.reconcile_every")).Do(sc.registry.Reconcile); err != nil {
		sc.Pr.Errorf("❌ scheduling reconcile job failed: %+v", err)

		return nil
	}

	sc.scheduler.StartAsync()

	// start stats ticker
	go sc.statsTicker()

	return sc
}

// Registry returns the coordinator registry.
func (sc *Scenery) Registry() *Registry {
	return sc.registry
}

func (sc *Scenery) createHomeAssistantSession(url, token string) *homeassistant.HomeAssistant {
	hass, err := homeassistant.New(url, token)
	if err != nil {
		sc.Pr.Error(err)

		os.Exit(1)
	}

	return hass
}

// statsTicker prints the current option of every coordinator in a regular interval.
func (sc *Scenery) statsTicker() {
	ticker := time.NewTicker(viper.GetDuration("scenery.defaults.stats_interval"))

	for range ticker.C {
		fmtSelections := make([]string, 0, len(sc.registry.Coordinators()))

		for _, coordinator := range sc.registry.Coordinators() {
			selection := coordinator.Current()

			fmtSelection := strings.Builder{}
			fmtSelection.WriteString(coordinator.Name())
			fmtSelection.WriteString(style.Gray(6).Render(":"))
			fmtSelection.WriteString(style.Bold(selection.Option(coordinator.Options())))

			fmtSelections = append(fmtSelections, fmtSelection.String())
		}

		fmt.Println()
		sc.Pr.Print(strings.Join(fmtSelections, " | "))
		fmt.Println()
	}
}

func tolerancesFromViper() match.Tolerances {
	tolerances := match.DefaultTolerances()

	if key := "scenery.tolerances.hue"; viper.IsSet(key) {
		tolerances.Hue = viper.GetFloat64(key)
	}

	if key := "scenery.tolerances.saturation"; viper.IsSet(key) {
		tolerances.Saturation = viper.GetFloat64(key)
	}

	if key := "scenery.tolerances.primary"; viper.IsSet(key) {
		tolerances.Primary = viper.GetFloat64(key)
	}

	if key := "scenery.tolerances.chromaticity"; viper.IsSet(key) {
		tolerances.Chromaticity = viper.GetFloat64(key)
	}

	if key := "scenery.tolerances.kelvin"; viper.IsSet(key) {
		tolerances.Kelvin = viper.GetFloat64(key)
	}

	if key := "scenery.tolerances.brightness"; viper.IsSet(key) {
		tolerances.Brightness = viper.GetFloat64(key)
	}

	return tolerances
}
