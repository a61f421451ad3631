package session

import (
	"fmt"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
)

// Players returns a copy of the roster.
func (c *Controller) Players() []model.Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Player(nil), c.players...)
}

// AddPlayer appends p to the roster, assigning an id when p has none.
// Field validation is the caller's job; the controller only guards id
// uniqueness.
func (c *Controller) AddPlayer(p model.Player) (model.Player, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.ID == "" {
		p.ID = c.newID()
	}
	if _, ok := c.indexOfPlayer(p.ID); ok {
		return model.Player{}, fmt.Errorf("%w: %s", ErrPlayerExists, p.ID)
	}
	c.players = append(c.players, p)
	c.touch()
	return p, nil
}

// UpdatePlayer replaces the roster entry with the same id. A rename flows
// into every event referencing the player, descriptions included.
func (c *Controller) UpdatePlayer(p model.Player) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.indexOfPlayer(p.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, p.ID)
	}
	renamed := c.players[i].Name != p.Name
	c.players[i] = p
	if renamed {
		n := c.renameInEvents(p)
		c.log.Debug().Str("player_id", p.ID).Int("events", n).Msg("player renamed")
	}
	c.touch()
	return nil
}

// RemovePlayer drops the player from the roster. Events keep their
// references; stats then report the player under the tagged name.
func (c *Controller) RemovePlayer(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.indexOfPlayer(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	c.players = append(c.players[:i], c.players[i+1:]...)
	c.touch()
	return nil
}

func (c *Controller) indexOfPlayer(id string) (int, bool) {
	for i, p := range c.players {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}

// renameInEvents rewrites refs to p and re-renders affected descriptions.
func (c *Controller) renameInEvents(p model.Player) int {
	ref := p.Ref()
	changed := 0
	for i := range c.events {
		e := &c.events[i]
		hit := false
		if e.Player.ID == p.ID {
			e.Player = ref
			hit = true
		}
		switch d := e.Detail.(type) {
		case model.Shot:
			if d.Rebounder.ID == p.ID {
				d.Rebounder = ref
				e.Detail = d
				hit = true
			}
		case model.Substitution:
			if d.Out.ID == p.ID {
				d.Out = ref
				e.Detail = d
				hit = true
			}
		}
		if hit {
			e.Description = model.Describe(*e)
			changed++
		}
	}
	return changed
}
