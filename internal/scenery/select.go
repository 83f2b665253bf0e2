package scenery

import (
	"sync"
	"time"

	"github.com/arnvid/scenery-go/internal/homeassistant"
	"github.com/arnvid/scenery-go/internal/icons"
	"github.com/arnvid/scenery-go/internal/match"
	"github.com/arnvid/scenery-go/internal/models"
	"github.com/arnvid/scenery-go/internal/profile"
	"github.com/arnvid/scenery-go/internal/scene"
	"github.com/arnvid/scenery-go/internal/style"
	"github.com/charmbracelet/log"
	"github.com/kr/pretty"
	"golang.org/x/exp/slices"
)

// SelectionState is the published state of one coordinator.
type SelectionState int

const (
	// SelectionUnavailable means every bound entity is unreachable.
	SelectionUnavailable SelectionState = iota
	// SelectionUnselected means the observed state matches no option.
	SelectionUnselected
	// SelectionSelected means the option at Index matches the observed state.
	SelectionSelected
)

// Selection is what a coordinator currently publishes. Index is only
// meaningful in the Selected state.
type Selection struct {
	State SelectionState
	Index int
}

func (s Selection) Equal(other Selection) bool {
	if s.State != other.State {
		return false
	}

	return s.State != SelectionSelected || s.Index == other.Index
}

// Option renders the selection against the coordinator's option list.
func (s Selection) Option(options []string) string {
	switch s.State {
	case SelectionUnavailable:
		return "unavailable"
	case SelectionUnselected:
		return "none"
	case SelectionSelected:
		if s.Index >= 0 && s.Index < len(options) {
			return options[s.Index]
		}
	}

	return "none"
}

// Device is the slice of the Home Assistant client the coordinators need.
type Device interface {
	GetState(entityID homeassistant.EntityID) *homeassistant.State
	Subscribe(entityID homeassistant.EntityID) <-chan *homeassistant.EventMsg
	TurnOn(target homeassistant.EntityID, serviceData map[string]interface{}) error
	TurnOff(target homeassistant.EntityID, serviceData map[string]interface{}) error
	SelectOption(target homeassistant.EntityID, option string) error
}

// Publisher receives every published selection change of one coordinator.
type Publisher interface {
	Publish(selection Selection, option string)
}

// Coordinator is one select kept in sync with live device state.
type Coordinator interface {
	Name() string
	Options() []string
	Current() Selection
	SelectOption(option string) error

	// Reconcile re-evaluates from the state cache and sweeps the settle
	// window. Runs on the periodic job and is safe to call any time.
	Reconcile()
}

// settle tracks the window after a dispatch in which the published
// selection is allowed to disagree with the requested option.
type settle struct {
	option   string
	deadline time.Time
}

// ProfileSelect keeps one select in sync with a single light: options are
// the bound profile names plus an optional off option.
type ProfileSelect struct {
	name     string
	entityID homeassistant.EntityID

	profiles     []*profile.Profile
	store        *profile.Store
	offOption    *string
	tolerances   match.Tolerances
	settleWindow time.Duration

	ha        Device
	publisher Publisher
	pr        *log.Logger

	// evalMu serializes whole evaluate-commit-publish rounds; the event
	// loop and the periodic reconcile job both reevaluate, and a stale
	// snapshot must never overwrite a fresher one.
	evalMu sync.Mutex

	mu        sync.Mutex
	selection Selection
	published bool
	pending   *settle

	events <-chan *homeassistant.EventMsg
}

// NewProfileSelect builds the coordinator and runs its initial evaluation.
// The caller starts the event loop with Run.
func NewProfileSelect(name string, entityID homeassistant.EntityID, profiles []*profile.Profile, store *profile.Store, offOption *string, tolerances match.Tolerances, settleWindow time.Duration, ha Device, publisher Publisher, pr *log.Logger) *ProfileSelect {
	ps := &ProfileSelect{
		name:     name,
		entityID: entityID,

		profiles:     profiles,
		store:        store,
		offOption:    offOption,
		tolerances:   tolerances,
		settleWindow: settleWindow,

		ha:        ha,
		publisher: publisher,
		pr:        pr,

		events: ha.Subscribe(entityID),
	}

	ps.reevaluate()

	return ps
}

func (ps *ProfileSelect) Name() string { return ps.name }

// Options returns the selectable options: profile names in declaration
// order, the off option last.
func (ps *ProfileSelect) Options() []string {
	options := make([]string, 0, len(ps.profiles)+1)
	for _, p := range ps.profiles {
		options = append(options, p.Name)
	}

	if ps.offOption != nil {
		options = append(options, *ps.offOption)
	}

	return options
}

func (ps *ProfileSelect) Current() Selection {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.selection
}

// Run consumes the entity's event stream. One goroutine per coordinator,
// evaluation is strictly sequential.
func (ps *ProfileSelect) Run() {
	ps.pr.Debug("event receiver started")

	for event := range ps.events {
		ps.pr.Debugf("%+v", pretty.Sprint(event.Event))

		ps.reevaluate()
	}
}

// SelectOption dispatches the service calls for the given option. The
// published selection is never updated here; it only moves when the device
// confirms the new state through a state_changed event.
func (ps *ProfileSelect) SelectOption(option string) error {
	if !slices.Contains(ps.Options(), option) {
		return models.UnknownOptionErr(option)
	}

	if ps.offOption != nil && option == *ps.offOption {
		ps.recordPending(option)
		ps.dispatch(func() error { return ps.ha.TurnOff(ps.entityID, map[string]interface{}{}) })

		return nil
	}

	attrs, err := profile.ApplyProfile(option, ps.store, nil)
	if err != nil {
		return models.UnknownOptionErr(option)
	}

	ps.recordPending(option)
	ps.dispatch(func() error { return ps.ha.TurnOn(ps.entityID, attrs) })

	return nil
}

// Reconcile re-evaluates from the cached state and warns when a dispatched
// option has not settled within the window. There is no retry.
func (ps *ProfileSelect) Reconcile() {
	ps.reevaluate()
	ps.sweepSettle()
}

func (ps *ProfileSelect) recordPending(option string) {
	ps.mu.Lock()
	ps.pending = &settle{option: option, deadline: time.Now().Add(ps.settleWindow)}
	ps.mu.Unlock()
}

func (ps *ProfileSelect) dispatch(call func() error) {
	go func() {
		if err := call(); err != nil {
			ps.pr.Warnf("%s dispatch failed: %+v", icons.Cross, err)
		}
	}()
}

func (ps *ProfileSelect) sweepSettle() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.pending == nil || time.Now().Before(ps.pending.deadline) {
		return
	}

	if current := ps.selection.Option(ps.Options()); current != ps.pending.option {
		ps.pr.Warnf("%s selected %s but device settled on %s", icons.NoMatch, style.Bold(ps.pending.option), style.Bold(current))
	}

	ps.pending = nil
}

// evaluate computes the selection from the current cached state.
func (ps *ProfileSelect) evaluate() Selection {
	state := ps.ha.GetState(ps.entityID)
	if !state.Available() {
		return Selection{State: SelectionUnavailable}
	}

	snap := match.SnapshotFromAttrs(state.State, state.Attributes.Other)

	// off lights map to the off option when one is configured
	if !snap.On {
		if ps.offOption != nil {
			return Selection{State: SelectionSelected, Index: len(ps.profiles)}
		}

		return Selection{State: SelectionUnselected}
	}

	if best := ps.tolerances.BestProfile(snap, ps.profiles); best >= 0 {
		return Selection{State: SelectionSelected, Index: best}
	}

	return Selection{State: SelectionUnselected}
}

func (ps *ProfileSelect) reevaluate() {
	ps.evalMu.Lock()
	defer ps.evalMu.Unlock()

	selection := ps.evaluate()

	ps.mu.Lock()

	changed := !ps.published || !selection.Equal(ps.selection)
	ps.selection = selection
	ps.published = true

	if ps.pending != nil && selection.Option(ps.Options()) == ps.pending.option {
		ps.pending = nil
	}

	ps.mu.Unlock()

	if changed {
		option := selection.Option(ps.Options())
		ps.pr.Infof("%s %s", icons.Match, style.Bold(option))
		ps.publisher.Publish(selection, option)
	}
}

// SceneSelect keeps one select in sync with a group of scenes spanning
// multiple entities.
type SceneSelect struct {
	name  string
	group *scene.Group

	store        *profile.Store
	tolerances   match.Tolerances
	settleWindow time.Duration

	ha        Device
	publisher Publisher
	pr        *log.Logger

	// see ProfileSelect.evalMu
	evalMu sync.Mutex

	mu        sync.Mutex
	selection Selection
	published bool
	pending   *settle

	entityIDs []homeassistant.EntityID
	events    chan *homeassistant.EventMsg
}

// NewSceneSelect builds the coordinator, merges the event streams of every
// referenced entity into one channel and runs the initial evaluation.
func NewSceneSelect(name string, group *scene.Group, store *profile.Store, tolerances match.Tolerances, settleWindow time.Duration, ha Device, publisher Publisher, pr *log.Logger) *SceneSelect {
	ss := &SceneSelect{
		name:  name,
		group: group,

		store:        store,
		tolerances:   tolerances,
		settleWindow: settleWindow,

		ha:        ha,
		publisher: publisher,
		pr:        pr,

		entityIDs: group.EntityIDs().ToSlice(),
		events:    make(chan *homeassistant.EventMsg, 16),
	}

	for _, entityID := range ss.entityIDs {
		go func(stream <-chan *homeassistant.EventMsg) {
			for event := range stream {
				ss.events <- event
			}
		}(ha.Subscribe(entityID))
	}

	ss.reevaluate()

	return ss
}

func (ss *SceneSelect) Name() string { return ss.name }

// Options returns the scene names in declaration order.
func (ss *SceneSelect) Options() []string {
	options := make([]string, 0, len(ss.group.Scenes))
	for _, sc := range ss.group.Scenes {
		options = append(options, sc.Name)
	}

	return options
}

func (ss *SceneSelect) Current() Selection {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return ss.selection
}

func (ss *SceneSelect) Run() {
	ss.pr.Debug("event receiver started")

	for event := range ss.events {
		ss.pr.Debugf("%+v", pretty.Sprint(event.Event))

		ss.reevaluate()
	}
}

// SelectOption applies every entity state of the named scene.
func (ss *SceneSelect) SelectOption(option string) error {
	sc, err := ss.group.Scene(option)
	if err != nil {
		return models.UnknownOptionErr(option)
	}

	ss.mu.Lock()
	ss.pending = &settle{option: option, deadline: time.Now().Add(ss.settleWindow)}
	ss.mu.Unlock()

	for entityID, entityState := range sc.Entities {
		if !entityState.On {
			serviceData := make(map[string]interface{})
			if transition := firstTransition(entityState.Transition, sc.Transition); transition != nil {
				serviceData["transition"] = *transition
			}

			ss.dispatch(entityID, func(target homeassistant.EntityID) error {
				return ss.ha.TurnOff(target, serviceData)
			})

			continue
		}

		attrs, err := entityState.ServiceAttrs(ss.store, sc.Transition)
		if err != nil {
			ss.pr.Errorf("%s scene %s: %+v", icons.Cross, style.Bold(option), err)

			continue
		}

		ss.dispatch(entityID, func(target homeassistant.EntityID) error {
			return ss.ha.TurnOn(target, attrs)
		})
	}

	return nil
}

func (ss *SceneSelect) Reconcile() {
	ss.reevaluate()
	ss.sweepSettle()
}

func (ss *SceneSelect) dispatch(entityID homeassistant.EntityID, call func(homeassistant.EntityID) error) {
	go func() {
		if err := call(entityID); err != nil {
			ss.pr.Warnf("%s dispatch to %s failed: %+v", icons.Cross, entityID.FmtShort(), err)
		}
	}()
}

func (ss *SceneSelect) sweepSettle() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.pending == nil || time.Now().Before(ss.pending.deadline) {
		return
	}

	if current := ss.selection.Option(ss.Options()); current != ss.pending.option {
		ss.pr.Warnf("%s selected %s but devices settled on %s", icons.NoMatch, style.Bold(ss.pending.option), style.Bold(current))
	}

	ss.pending = nil
}

func (ss *SceneSelect) evaluate() Selection {
	snapshots := make(map[homeassistant.EntityID]match.Snapshot, len(ss.entityIDs))
	available := false

	for _, entityID := range ss.entityIDs {
		state := ss.ha.GetState(entityID)
		if !state.Available() {
			continue
		}

		available = true
		snapshots[entityID] = match.SnapshotFromAttrs(state.State, state.Attributes.Other)
	}

	if !available {
		return Selection{State: SelectionUnavailable}
	}

	if best := scene.BestScene(snapshots, ss.group.Scenes, ss.tolerances, ss.store); best >= 0 {
		return Selection{State: SelectionSelected, Index: best}
	}

	return Selection{State: SelectionUnselected}
}

func (ss *SceneSelect) reevaluate() {
	ss.evalMu.Lock()
	defer ss.evalMu.Unlock()

	selection := ss.evaluate()

	ss.mu.Lock()

	changed := !ss.published || !selection.Equal(ss.selection)
	ss.selection = selection
	ss.published = true

	if ss.pending != nil && selection.Option(ss.Options()) == ss.pending.option {
		ss.pending = nil
	}

	ss.mu.Unlock()

	if changed {
		option := selection.Option(ss.Options())
		ss.pr.Infof("%s %s", icons.Scene, style.Bold(option))
		ss.publisher.Publish(selection, option)
	}
}

func firstTransition(transitions ...*float64) *float64 {
	for _, transition := range transitions {
		if transition != nil {
			return transition
		}
	}

	return nil
}
