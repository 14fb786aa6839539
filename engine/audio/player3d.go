package audio

// Player3D is a positional player. Besides the user volume it carries a unit attenuation in
// decibels, the channel audio tracks use to express their blend weight.
type Player3D interface {
	Player

	// UnitDB returns the attenuation in decibels.
	UnitDB() float64

	// SetUnitDB sets the attenuation in decibels, added to the volume.
	SetUnitDB(db float64)
}

type player3D struct {
	*player
}

// Ensure player3D implements Player3D interface.
var _ Player3D = &player3D{}

// NewPlayer3D creates a stopped positional player with unity volume and no attenuation.
//
// Parameters:
//   - name: the node name
//   - options: functional options to further configure the player
//
// Returns:
//   - Player3D: the new detached player
func NewPlayer3D(name string, options ...PlayerBuilderOption) Player3D {
	p := &player3D{player: newPlayer(options...)}
	p.Init(p, name)
	return p
}

func (p *player3D) UnitDB() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.extraDB
}

func (p *player3D) SetUnitDB(db float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extraDB = db
	p.applyVolume()
}
