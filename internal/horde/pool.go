package horde

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// PoolStats is a snapshot of the active instance pool.
type PoolStats struct {
	Free     int
	InUse    int // attached to an agent
	Retiring int // dying, waiting for the deferred return
	Created  int
}

// Pool recycles active zombie instances. Instances are never destroyed:
// demotion releases them immediately, death retires them until the deferred
// return fires. Free instances are handed out first-in first-out.
type Pool struct {
	free     []*Zombie
	all      []*Zombie
	inUse    int
	retiring int
	limit    int // 0 = unlimited
	build    func() (*Zombie, error)
	log      *zap.Logger
}

func newPool(limit int, build func() (*Zombie, error), log *zap.Logger) *Pool {
	return &Pool{
		limit: limit,
		build: build,
		log:   log,
	}
}

// Acquire hands out a free instance, constructing one when none is free and
// the limit allows. It returns false when no instance can be obtained.
func (p *Pool) Acquire() (*Zombie, bool) {
	if len(p.free) > 0 {
		z := p.free[0]
		p.free[0] = nil
		p.free = p.free[1:]
		p.inUse++
		return z, true
	}
	if p.build == nil || (p.limit > 0 && len(p.all) >= p.limit) {
		return nil, false
	}
	z, err := p.build()
	if err != nil {
		p.log.Warn("active zombie construction failed", zap.Error(err))
		return nil, false
	}
	p.all = append(p.all, z)
	p.inUse++
	return z, true
}

// Prewarm constructs up to n idle instances ahead of play.
func (p *Pool) Prewarm(n int) int {
	made := 0
	for i := 0; i < n; i++ {
		if p.build == nil || (p.limit > 0 && len(p.all) >= p.limit) {
			break
		}
		z, err := p.build()
		if err != nil {
			p.log.Warn("active zombie prewarm failed", zap.Error(err))
			break
		}
		p.all = append(p.all, z)
		z.park()
		p.free = append(p.free, z)
		made++
	}
	return made
}

// Release returns an attached instance after demotion.
func (p *Pool) Release(z *Zombie) {
	if z.state == StatePooled || z.state == StateDying {
		return
	}
	p.inUse--
	z.park()
	p.free = append(p.free, z)
}

// Retire moves an attached instance into the dying set.
func (p *Pool) Retire(z *Zombie) {
	if z.state == StatePooled {
		return
	}
	p.inUse--
	p.retiring++
}

// Return takes back a retired instance once its death delay has elapsed.
func (p *Pool) Return(z *Zombie) {
	if z.state != StateDying {
		return
	}
	p.retiring--
	z.park()
	p.free = append(p.free, z)
}

func (p *Pool) InUse() int    { return p.inUse }
func (p *Pool) Retiring() int { return p.retiring }

// Stats returns the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Free:     len(p.free),
		InUse:    p.inUse,
		Retiring: p.retiring,
		Created:  len(p.all),
	}
}

// park resets combat state and stows the body at the origin, hidden.
func (z *Zombie) park() {
	z.state = StatePooled
	z.agent = nil
	z.health = z.tmpl.MaxHealth
	z.attackTimer = 0
	z.verticalVelocity = 0
	z.walking = false
	z.body.SetActive(false)
	z.body.Place(mgl64.Vec3{}, mgl64.QuatIdent())
}
