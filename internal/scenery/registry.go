package scenery

import (
	"github.com/arnvid/scenery-go/internal/color"
	"github.com/arnvid/scenery-go/internal/homeassistant"
	"github.com/arnvid/scenery-go/internal/icons"
	"github.com/arnvid/scenery-go/internal/models"
	"github.com/arnvid/scenery-go/internal/style"
	"github.com/charmbracelet/log"
)

// Registry owns every coordinator and the favorites store. It is built
// once at startup and passed around explicitly.
type Registry struct {
	profileSelects map[homeassistant.EntityID]*ProfileSelect
	sceneSelects   map[string]*SceneSelect
	favorites      *Favorites

	pr *log.Logger
}

func NewRegistry(pr *log.Logger) *Registry {
	return &Registry{
		profileSelects: make(map[homeassistant.EntityID]*ProfileSelect),
		sceneSelects:   make(map[string]*SceneSelect),
		favorites:      NewFavorites(),

		pr: pr,
	}
}

func (r *Registry) addProfileSelect(entityID homeassistant.EntityID, ps *ProfileSelect) {
	r.profileSelects[entityID] = ps
}

func (r *Registry) addSceneSelect(ss *SceneSelect) {
	r.sceneSelects[ss.Name()] = ss
}

// Coordinators returns every coordinator of the registry.
func (r *Registry) Coordinators() []Coordinator {
	coordinators := make([]Coordinator, 0, len(r.profileSelects)+len(r.sceneSelects))

	for _, ps := range r.profileSelects {
		coordinators = append(coordinators, ps)
	}

	for _, ss := range r.sceneSelects {
		coordinators = append(coordinators, ss)
	}

	return coordinators
}

// ProfileSelect returns the coordinator bound to the given light.
func (r *Registry) ProfileSelect(entityID homeassistant.EntityID) (*ProfileSelect, error) {
	ps, ok := r.profileSelects[entityID]
	if !ok {
		return nil, models.EntityNotFoundErr(entityID.ID)
	}

	return ps, nil
}

// SceneSelect returns the coordinator of the named scene group.
func (r *Registry) SceneSelect(group string) (*SceneSelect, error) {
	ss, ok := r.sceneSelects[group]
	if !ok {
		return nil, models.EntityNotFoundErr(group)
	}

	return ss, nil
}

// ApplyScene activates one scene of a group, like selecting its option.
func (r *Registry) ApplyScene(group, sceneName string) error {
	ss, err := r.SceneSelect(group)
	if err != nil {
		return err
	}

	return ss.SelectOption(sceneName)
}

// GetFavoriteColors returns the explicitly set favorite colors of a
// configured light. nil means no list was ever set and the frontend shows
// the defaults; an empty list means explicitly cleared, show none.
func (r *Registry) GetFavoriteColors(entityID homeassistant.EntityID) ([]color.Value, error) {
	return r.favorites.Get(entityID)
}

// DefaultFavoriteColors returns the favorite colors assembled from a
// light's configuration, shown while no explicit list is set.
func (r *Registry) DefaultFavoriteColors(entityID homeassistant.EntityID) ([]color.Value, error) {
	return r.favorites.Defaults(entityID)
}

// SetFavoriteColors replaces the favorite colors of a configured light.
// An empty list clears them, nil resets to the never-set state in which
// the defaults apply again.
func (r *Registry) SetFavoriteColors(entityID homeassistant.EntityID, colors *[]color.Value) error {
	return r.favorites.Set(entityID, colors)
}

// Reconcile re-evaluates every coordinator from the state cache.
func (r *Registry) Reconcile() {
	for _, coordinator := range r.Coordinators() {
		coordinator.Reconcile()
	}
}

// logPublisher just logs published selections.
type logPublisher struct {
	pr *log.Logger
}

func (p *logPublisher) Publish(_ Selection, option string) {
	p.pr.Debugf("%s published %s", icons.Checklist, style.Bold(option))
}

// mirrorPublisher pushes selected options into a mirrored input_select
// entity. Unselected and unavailable states are log-only; a select entity
// has no notion of "none".
type mirrorPublisher struct {
	ha     Device
	mirror homeassistant.EntityID
	pr     *log.Logger
}

func (p *mirrorPublisher) Publish(selection Selection, option string) {
	if selection.State != SelectionSelected {
		p.pr.Debugf("%s %s not mirrored to %s", icons.Block, style.Bold(option), p.mirror.FmtShort())

		return
	}

	if err := p.ha.SelectOption(p.mirror, option); err != nil {
		p.pr.Warnf("%s mirroring %s to %s failed: %+v", icons.Cross, style.Bold(option), p.mirror.FmtShort(), err)
	}
}

func newPublisher(ha Device, mirror *homeassistant.EntityID, pr *log.Logger) Publisher {
	if mirror != nil {
		return &mirrorPublisher{ha: ha, mirror: *mirror, pr: pr}
	}

	return &logPublisher{pr: pr}
}
