// Package ratelimit limits API requests per client and endpoint.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Rule limits one method and path. A Path ending in "/" matches by prefix.
type Rule struct {
	Method string
	Path   string
	Limit  int           // requests per Window; zero or less means unlimited
	Window time.Duration
	Burst  int           // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	IdleTTL       time.Duration // buckets unused for this long are dropped
	Whitelist     map[string]bool
	Rules         []Rule
}

// DefaultConfig allows uploadsPerMinute document uploads and perMinute other requests per client.
func DefaultConfig(perMinute, uploadsPerMinute int) *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  perMinute,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Hour,
		Whitelist:     map[string]bool{},
		Rules:         DefaultRules(uploadsPerMinute),
	}
}

// DefaultRules makes document parsing the most tightly limited operation.
func DefaultRules(uploadsPerMinute int) []Rule {
	burst := uploadsPerMinute / 5
	if burst < 1 {
		burst = 1
	}
	return []Rule{
		{Method: "GET", Path: "/health", Limit: 0},
		{Method: "POST", Path: "/parse", Limit: uploadsPerMinute, Window: time.Minute, Burst: burst},
		{Method: "POST", Path: "/match", Limit: uploadsPerMinute, Window: time.Minute, Burst: burst},
	}
}

// MatchRule returns the rule for a request, preferring exact paths over prefixes.
func MatchRule(path, method string, rules []Rule) *Rule {
	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return nil
}

// Info describes the limit applied to a request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// defaultBucket keys the budget shared by every request no rule matches.
const defaultBucket = "default"

// Limiter tracks a token bucket per client and rule.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   int
}

// NewLimiter creates a Limiter. A nil config disables limiting.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{}
	}
	return &Limiter{config: config, now: time.Now, buckets: make(map[string]*bucket)}
}

// Allow reports whether clientID may make the request now.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}

	rule := MatchRule(path, method, l.config.Rules)
	key := clientID + ":" + defaultBucket
	if rule != nil {
		key = clientID + ":" + rule.Method + ":" + rule.Path
	} else {
		rule = &Rule{Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
	}
	if rule.Limit <= 0 || rule.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	lim := l.bucket(key, rule, now)

	info := Info{Limit: rule.Limit}
	res := lim.ReserveN(now, 1)
	if delay := res.DelayFrom(now); !res.OK() || delay > 0 {
		res.CancelAt(now)
		info.RetryAfter = delay
		info.Remaining = 0
		return false, info
	}
	info.Allowed = true
	info.Remaining = int(lim.TokensAt(now))
	return true, info
}

func (l *Limiter) bucket(key string, rule *Rule, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.config.IdleTTL > 0 && l.calls%1000 == 0 {
		l.sweepLocked(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		burst := rule.Burst
		if burst <= 0 {
			burst = rule.Limit
		}
		every := rule.Window / time.Duration(rule.Limit)
		b = &bucket{limiter: rate.NewLimiter(rate.Every(every), burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// Sweep drops buckets idle for longer than IdleTTL.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(l.now())
}

func (l *Limiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-l.config.IdleTTL)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// Len returns the number of tracked buckets
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
