package icons

import "github.com/charmbracelet/lipgloss"

const (
	// light & select related messages.
	LightOn  = "💡"
	LightOff = "🌑"
	Palette  = "🎨"
	Scene    = "🎬"
	Star     = "⭐"

	// matching related messages.
	Match   = "🎯"
	NoMatch = "🫥"
	Blind   = "🙈"
	Block   = "🚫"

	// connection related messages.
	ConnectionChain = "🔗"
	ReconnectCircle = "↻"

	// other messages.
	Cross     = "✖️"
	Tick      = "✔"
	Checklist = "📋"

	Glasses = "👓"
	Key     = "🔑"
	Shrug   = "🤷‍♀️"
	Home    = "🏠"
	Call    = "📞"

	Stopwatch = "⏱️"
	Sub       = "🚇"
	Watchdog  = "🐕"

	// go stylecheck linter ST1018.
	WeightLift = "🏋️‍"
)

var (
	GreenTick = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).SetString(" " + Tick)
	RedCross  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).SetString(Cross)
)
