package sim

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
	"github.com/sagaforge/saga-api/internal/world"
)

// Tier radii in world units, measured from the player.
const (
	PlayerRadius = 50.0
	LocalRadius  = 250.0
)

// Tier cadences in narrative hours.
const (
	LocalCadenceHours    = 24
	RegionalCadenceHours = 168
	GlobalCadenceHours   = 672
)

const (
	catchUpWealthPerDay = 1.5
	catchUpGrowthPerDay = 1.001
	localWealthPerTick  = 10.0

	factionPowerThreshold = 10.0
	globalGrowthFactor    = 1.01
)

// World node metric names.
const (
	MetricWealth     = "wealth"
	MetricPopulation = "population"
	MetricLastTick   = "last_tick"
)

// Rand supplies the random draws the regional tier needs for node
// claims. Satisfied by the roller package.
type Rand interface {
	Intn(n int) int
}

// Manager owns the narrative clock and dispatches the level-of-detail
// tiers over the world graph, then hands off to the settlement system.
type Manager struct {
	graph       *world.Graph
	settlements *SettlementSystem
	defs        *definitions.Registry
	rand        Rand

	hours int64
	epoch int

	lastLocal    int64
	lastRegional int64
	lastGlobal   int64

	factionPower map[string]float64
}

// ManagerConfig holds the Manager dependencies.
type ManagerConfig struct {
	Graph       *world.Graph
	Settlements *SettlementSystem
	Definitions *definitions.Registry
	Rand        Rand
}

// Validate validates the ManagerConfig.
func (cfg *ManagerConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Graph == nil {
		return errors.InvalidArgument("graph cannot be nil")
	}
	if cfg.Settlements == nil {
		return errors.InvalidArgument("settlement system cannot be nil")
	}
	if cfg.Definitions == nil {
		return errors.InvalidArgument("definitions cannot be nil")
	}
	if cfg.Rand == nil {
		return errors.InvalidArgument("rand cannot be nil")
	}
	return nil
}

// NewManager creates a Manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		graph:        cfg.Graph,
		settlements:  cfg.Settlements,
		defs:         cfg.Definitions,
		rand:         cfg.Rand,
		factionPower: make(map[string]float64),
	}, nil
}

// NarrativeHours returns the current narrative clock reading.
func (m *Manager) NarrativeHours() int64 {
	return m.hours
}

// Epoch returns how many global ticks have elapsed.
func (m *Manager) Epoch() int {
	return m.epoch
}

// AdvanceTime moves the narrative clock forward by exactly hours and
// dispatches each tier that has come due, finishing with a settlement
// pass.
func (m *Manager) AdvanceTime(ctx context.Context, hours int64, px, py float64) error {
	if hours <= 0 {
		return errors.InvalidArgumentf("hours must be positive, got %d", hours)
	}
	m.hours += hours
	now := m.hours

	m.catchUpAndStamp(ctx, now, px, py)

	if now-m.lastLocal >= LocalCadenceHours {
		m.lastLocal = now
		m.tickLocal(px, py)
	}
	if now-m.lastRegional >= RegionalCadenceHours {
		m.lastRegional = now
		m.tickRegional(ctx)
	}
	if now-m.lastGlobal >= GlobalCadenceHours {
		m.lastGlobal = now
		m.tickGlobal(ctx)
	}

	m.settlements.RunTick(ctx)

	slog.DebugContext(ctx, "world time advanced",
		"hours", hours,
		"narrative_hours", now,
		"epoch", m.epoch,
	)
	return nil
}

// catchUpAndStamp fast-forwards stale nodes near the player
// statistically, then timestamps everything inside the player radius.
func (m *Manager) catchUpAndStamp(ctx context.Context, now int64, px, py float64) {
	for _, n := range m.graph.Nodes() {
		dist := math.Hypot(n.X-px, n.Y-py)

		if dist <= LocalRadius {
			last := int64(n.Metric(MetricLastTick, 0))
			if last < now {
				days := float64(now-last) / 24
				n.SetMetric(MetricWealth, n.Metric(MetricWealth, 0)+catchUpWealthPerDay*days)
				n.SetMetric(MetricPopulation, n.Metric(MetricPopulation, 0)*math.Pow(catchUpGrowthPerDay, days))
				n.SetMetric(MetricLastTick, float64(now))
				slog.DebugContext(ctx, "node caught up",
					"node_id", n.ID,
					"stale_days", days,
				)
			}
		}

		if dist <= PlayerRadius {
			n.SetMetric(MetricLastTick, float64(now))
		}
	}
}

func (m *Manager) tickLocal(px, py float64) {
	for _, n := range m.graph.Nodes() {
		if math.Hypot(n.X-px, n.Y-py) <= LocalRadius {
			n.SetMetric(MetricWealth, n.Metric(MetricWealth, 0)+localWealthPerTick)
		}
	}
}

// tickRegional grows every faction's power; a faction past the
// threshold spends it claiming one random unowned node.
func (m *Manager) tickRegional(ctx context.Context) {
	ids := make([]string, 0, len(m.defs.Factions))
	for id := range m.defs.Factions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		f := m.defs.Factions[id]
		m.factionPower[id] += 1 + f.ExpansionDrive
		if m.factionPower[id] < factionPowerThreshold {
			continue
		}

		unowned := m.unownedNodes()
		if len(unowned) == 0 {
			continue
		}
		claimed := unowned[m.rand.Intn(len(unowned))]
		claimed.FactionID = id
		m.factionPower[id] = 0

		slog.InfoContext(ctx, "faction claimed territory",
			"faction_id", id,
			"node_id", claimed.ID,
		)
	}
}

func (m *Manager) tickGlobal(ctx context.Context) {
	m.epoch++
	for _, n := range m.graph.Nodes() {
		if pop := n.Metric(MetricPopulation, 0); pop > 0 {
			n.SetMetric(MetricPopulation, pop*globalGrowthFactor)
		}
	}
	slog.InfoContext(ctx, "global epoch advanced", "epoch", m.epoch)
}

func (m *Manager) unownedNodes() []*entities.WorldNode {
	var out []*entities.WorldNode
	for _, n := range m.graph.Nodes() {
		if n.FactionID == "" {
			out = append(out, n)
		}
	}
	return out
}
