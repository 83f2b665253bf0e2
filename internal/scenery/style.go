package scenery

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/arnvid/scenery-go/internal/icons"
	"github.com/arnvid/scenery-go/internal/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	// style configuration for the select configuration printed at startup.

	list = lipgloss.NewStyle().
		MarginLeft(0).
		MarginRight(0).
		PaddingTop(1)

	listHeader = lipgloss.NewStyle().
			MarginLeft(1).
			MarginRight(2).
			Width(9).
			Align(lipgloss.Right).
			AlignVertical(lipgloss.Top).
			Foreground(lipgloss.Color("#333555")).
			Render

	listItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#969B86", Dark: "#ccc"})

	listItem = listItemStyle.Render
)

const ASCIIHeader = `
 ___  ___ ___ _ __   ___ _ __ _   _
/ __|/ __/ _ \ '_ \ / _ \ '__| | | |
\__ \ (_|  __/ | | |  __/ |  | |_| |
|___/\___\___|_| |_|\___|_|   \__, |
                              |___/`

// GenerateColorFromString generates a color based on the given seed.
func GenerateColorFromString(seedPhrase string) lipgloss.Color {
	// initial magic color seed
	magicColorSeed := int64(17)

	magicSeedNumber := magicColorSeed

	runes := []rune(seedPhrase)

	for i := range runes {
		magicSeedNumber *= int64(runes[i])
	}

	rng := rand.New(rand.NewSource(magicSeedNumber)) //nolint:gosec

	// deterministic color from the seed phrase
	magicColor := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", rng.Intn(256), rng.Intn(256), rng.Intn(256)))

	log.Debugf("✨ %s | seed: %+v", lipgloss.NewStyle().Foreground(magicColor).Render(seedPhrase), magicSeedNumber)

	return magicColor
}

// fmtLightConfig renders one light binding for the startup output,
// profile options with color swatches included.
func fmtLightConfig(binding *LightBinding) string {
	options := make([]string, 0, len(binding.Profiles)+1)

	for _, p := range binding.Profiles {
		option := listItem(p.Name)

		if p.Color != nil {
			if hex, ok := p.Color.DisplayHex(); ok {
				option = style.Swatch(hex, p.Name) + " " + style.Swatch(hex, "▇▇")
			}
		}

		options = append(options, option)
	}

	if binding.OffOption != nil {
		options = append(options, listItem(*binding.OffOption)+" "+icons.LightOff)
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top,
		list.Render(listHeader(icons.LightOn+" light")),
		list.Render(listItem(binding.Entity.FmtString())),
		list.Render(listHeader(icons.Palette+" profiles")),
		list.Render(strings.Join(options, "\n")),
	)

	return out
}

// fmtSceneGroupConfig renders one scene group for the startup output.
func fmtSceneGroupConfig(binding *SceneGroupBinding) string {
	scenes := make([]string, 0, len(binding.Group.Scenes))
	for _, sc := range binding.Group.Scenes {
		scenes = append(scenes, listItem(sc.Name))
	}

	entities := make([]string, 0)
	for _, entityID := range binding.Group.EntityIDs().ToSlice() {
		entities = append(entities, listItem(entityID.FmtString()))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top,
		list.Render(listHeader(icons.Scene+" group")),
		list.Render(listItem(binding.Name)),
		list.Render(listHeader("scenes")),
		list.Render(strings.Join(scenes, "\n")),
		list.Render(listHeader("lights")),
		list.Render(strings.Join(entities, "\n")),
	)

	return out
}
