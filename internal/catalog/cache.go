package catalog

import (
	"context"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/platform/logging"
)

// Cache memoizes creature and move lookups from a slower provider.
// Concurrent misses for the same key share one upstream call. Errors are not
// cached. Filtered move lists always go upstream.
type Cache struct {
	upstream Provider
	log      logrus.FieldLogger

	group singleflight.Group

	mu        sync.RWMutex
	creatures map[int]CreatureDefinition
	moves     map[string]creature.Move
}

// NewCache wraps upstream. A nil logger discards output.
func NewCache(upstream Provider, log logrus.FieldLogger) *Cache {
	if log == nil {
		log = logging.Discard()
	}
	return &Cache{
		upstream:  upstream,
		log:       log.WithField("component", "catalog_cache"),
		creatures: make(map[int]CreatureDefinition),
		moves:     make(map[string]creature.Move),
	}
}

// Creature returns the species with id.
func (c *Cache) Creature(ctx context.Context, id int) (CreatureDefinition, error) {
	c.mu.RLock()
	def, ok := c.creatures[id]
	c.mu.RUnlock()
	if ok {
		return cloneDefinition(def), nil
	}

	v, err, shared := c.group.Do("creature:"+strconv.Itoa(id), func() (any, error) {
		def, err := c.upstream.Creature(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.creatures[id] = def
		c.mu.Unlock()
		return def, nil
	})
	if err != nil {
		return CreatureDefinition{}, err
	}
	c.log.WithFields(logrus.Fields{"creature_id": id, "shared": shared}).Debug("creature cache miss")
	return cloneDefinition(v.(CreatureDefinition)), nil
}

// Move returns the move with id.
func (c *Cache) Move(ctx context.Context, id string) (creature.Move, error) {
	c.mu.RLock()
	mv, ok := c.moves[id]
	c.mu.RUnlock()
	if ok {
		return mv.Clone(), nil
	}

	v, err, shared := c.group.Do("move:"+id, func() (any, error) {
		mv, err := c.upstream.Move(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.moves[id] = mv
		c.mu.Unlock()
		return mv, nil
	})
	if err != nil {
		return creature.Move{}, err
	}
	c.log.WithFields(logrus.Fields{"move_id": id, "shared": shared}).Debug("move cache miss")
	return v.(creature.Move).Clone(), nil
}

// Moves forwards to the upstream provider and remembers each returned move.
func (c *Cache) Moves(ctx context.Context, filter string) ([]creature.Move, error) {
	moves, err := c.upstream.Moves(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	for _, mv := range moves {
		c.moves[mv.ID] = mv.Clone()
	}
	c.mu.Unlock()
	return moves, nil
}

// Len reports how many creatures and moves are cached.
func (c *Cache) Len() (creatures, moves int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.creatures), len(c.moves)
}
