package cache

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/flanksource/changelog/models"
)

const (
	NameCommits      = "commits"
	NameRepositories = "repositories"
	NameChangelogs   = "changelogs"
	NameTokenHealth  = "tokenHealth"
)

type Settings struct {
	TTL        time.Duration
	MaxEntries int
}

// Config sizes the four cache instances.
type Config struct {
	Commits      Settings
	Repositories Settings
	Changelogs   Settings
	TokenHealth  Settings
}

func DefaultConfig() Config {
	return Config{
		Commits:      Settings{TTL: 15 * time.Minute, MaxEntries: 500},
		Repositories: Settings{TTL: 5 * time.Minute, MaxEntries: 1000},
		Changelogs:   Settings{TTL: 30 * time.Minute, MaxEntries: 200},
		TokenHealth:  Settings{TTL: 10 * time.Minute, MaxEntries: 100},
	}
}

// Invalidator is the type-erased surface shared by every cache instance.
type Invalidator interface {
	Name() string
	Invalidate(partial Params) int
	Purge()
	Stats() Stats
}

// Caches holds the process-wide cache instances. Instances are independent:
// invalidating one never touches another.
type Caches struct {
	Commits      *Cache[[]models.CommitRecord]
	Repositories *Cache[[]models.Repository]
	Changelogs   *Cache[*models.ChangelogDocument]
	TokenHealth  *Cache[*models.TokenHealth]
}

func NewCaches(cfg Config, opts ...Option) (*Caches, error) {
	var (
		c   Caches
		err error
	)
	if c.Commits, err = New[[]models.CommitRecord](NameCommits, cfg.Commits.TTL, cfg.Commits.MaxEntries, opts...); err != nil {
		return nil, err
	}
	if c.Repositories, err = New[[]models.Repository](NameRepositories, cfg.Repositories.TTL, cfg.Repositories.MaxEntries, opts...); err != nil {
		return nil, err
	}
	if c.Changelogs, err = New[*models.ChangelogDocument](NameChangelogs, cfg.Changelogs.TTL, cfg.Changelogs.MaxEntries, opts...); err != nil {
		return nil, err
	}
	if c.TokenHealth, err = New[*models.TokenHealth](NameTokenHealth, cfg.TokenHealth.TTL, cfg.TokenHealth.MaxEntries, opts...); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Caches) All() []Invalidator {
	return []Invalidator{c.Commits, c.Repositories, c.Changelogs, c.TokenHealth}
}

// Named looks up an instance by its key prefix.
func (c *Caches) Named(name string) (Invalidator, error) {
	for _, inv := range c.All() {
		if inv.Name() == name {
			return inv, nil
		}
	}
	return nil, fmt.Errorf("unknown cache %q, expected one of: %v", name, c.Names())
}

func (c *Caches) Names() []string {
	names := lo.Map(c.All(), func(inv Invalidator, _ int) string { return inv.Name() })
	slices.Sort(names)
	return names
}

func (c *Caches) Stats() []Stats {
	var out []Stats
	for _, inv := range c.All() {
		out = append(out, inv.Stats())
	}
	return out
}
