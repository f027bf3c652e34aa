package feed

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// ReachTopFunc loads older history. more reports whether anything was
// loaded. Errors are the collaborator's concern; the feed ignores them.
type ReachTopFunc func(ctx context.Context) (more bool, err error)

// Paginator fires the reach-top callback when the viewport nears the top.
// It fires at most once per cooldown and never while a previous call is
// unresolved.
type Paginator struct {
	trigger  int
	cooldown time.Duration
	limiter  *rate.Limiter
	inFlight bool
	gen      uint64
}

// NewPaginator returns a paginator firing at scrollTop <= trigger.
func NewPaginator(trigger int, cooldown time.Duration) *Paginator {
	p := &Paginator{trigger: trigger, cooldown: cooldown}
	p.limiter = newCooldown(cooldown)
	return p
}

func newCooldown(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// Token identifies one fired call.
type Token uint64

// Check decides whether a scroll event at scrollTop fires the callback. When
// it does, the paginator is marked in flight and the returned token must be
// passed to Done once the call resolves.
func (p *Paginator) Check(scrollTop int, now time.Time) (Token, bool) {
	if scrollTop > p.trigger || p.inFlight {
		return 0, false
	}
	if !p.limiter.AllowN(now, 1) {
		return 0, false
	}
	p.inFlight = true
	p.gen++
	return Token(p.gen), true
}

// Done clears the in-flight flag for the call identified by token. Tokens
// from before the last Reset are ignored.
func (p *Paginator) Done(token Token) {
	if uint64(token) == p.gen {
		p.inFlight = false
	}
}

// InFlight reports whether a call is unresolved.
func (p *Paginator) InFlight() bool {
	return p.inFlight
}

// Reset forgets cooldown and in-flight bookkeeping. Called on thread switch.
func (p *Paginator) Reset() {
	p.inFlight = false
	p.gen++
	p.limiter = newCooldown(p.cooldown)
}
