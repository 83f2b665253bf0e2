package domain

import (
	mapset "github.com/deckarep/golang-set/v2"
)

const (
	BinarySensor Domain = "binary_sensor"
	Cover        Domain = "cover"
	InputBoolean Domain = "input_boolean"
	InputSelect  Domain = "input_select"
	Light        Domain = "light"
	Scene        Domain = "scene"
	Select       Domain = "select"
	Sensor       Domain = "sensor"
	Switch       Domain = "switch"
)

var validDomains = mapset.NewSet(BinarySensor, Cover, InputBoolean, InputSelect, Light, Scene, Select, Sensor, Switch)

type Domain string

func (d Domain) String() string { return string(d) }
func (d Domain) IsValid() bool  { return validDomains.Contains(d) }
