package models

import (
	"github.com/arnvid/scenery-go/internal/icons"
	"github.com/arnvid/scenery-go/internal/models/domain"
	"github.com/arnvid/scenery-go/internal/models/service"
	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"
)

const (
	AppName    = "Scenery"
	AppVersion = "dev"
	AppIcon    = icons.Palette
)

var Printer *log.Logger

// AllowedServiceData contains the allowed keys for service_data per service and domain.
var AllowedServiceData = map[service.Service]map[domain.Domain]mapset.Set[string]{
	service.TurnOn: {
		domain.Light:  mapset.NewSet[string]("transition", "rgb_color", "rgbw_color", "rgbww_color", "color_name", "hs_color", "xy_color", "color_temp_kelvin", "brightness", "brightness_pct", "white", "profile", "flash", "effect"),
		domain.Scene:  mapset.NewSet[string]("transition"),
		domain.Switch: mapset.NewSet[string](),
		domain.Cover:  mapset.NewSet[string](),
	},
	service.TurnOff: {
		domain.Light:  mapset.NewSet[string]("transition", "flash"),
		domain.Switch: mapset.NewSet[string](),
		domain.Cover:  mapset.NewSet[string](),
	},
	service.SelectOption: {
		domain.InputSelect: mapset.NewSet[string]("option"),
		domain.Select:      mapset.NewSet[string]("option"),
	},
}
