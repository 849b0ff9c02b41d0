// Package sim runs the world off-screen: the level-of-detail tick that
// keeps distant regions statistically alive, and the settlement system
// that grows, feeds, taxes, and trades between populated entities.
package sim

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/sagaforge/saga-api/internal/definitions"
	"github.com/sagaforge/saga-api/internal/ecs"
	"github.com/sagaforge/saga-api/internal/entities"
	"github.com/sagaforge/saga-api/internal/errors"
)

// Settlement tuning constants.
const (
	ResourceFood = "food"

	defaultFoodNeed    = 0.5
	unrestDecayFed     = 0.01
	unrestRiseStarving = 0.10

	productionFactor = 0.1

	crimeUnrestFloor = 0.75
	crimeWealthFloor = 50
	crimeSiphonRate  = 0.15

	tradeCapPerTick      = 50.0
	tradeLevelCreep      = 0.05
	tradeLevelCap        = 10.0
	tradeExpansionHunger = 0.6
)

// SettlementSystem iterates settlement-bearing entities each world
// tick. Passes run in entity-id order so repeated runs on the same
// state converge identically.
type SettlementSystem struct {
	registry *ecs.Registry
	defs     *definitions.Registry
}

// SettlementConfig holds the SettlementSystem dependencies.
type SettlementConfig struct {
	Registry    *ecs.Registry
	Definitions *definitions.Registry
}

// Validate validates the SettlementConfig.
func (cfg *SettlementConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Registry == nil {
		return errors.InvalidArgument("registry cannot be nil")
	}
	if cfg.Definitions == nil {
		return errors.InvalidArgument("definitions cannot be nil")
	}
	return nil
}

// NewSettlementSystem creates a SettlementSystem.
func NewSettlementSystem(cfg *SettlementConfig) (*SettlementSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SettlementSystem{
		registry: cfg.Registry,
		defs:     cfg.Definitions,
	}, nil
}

// RunTick executes one full settlement pass: growth and consumption,
// then economy, then trade.
func (s *SettlementSystem) RunTick(ctx context.Context) {
	s.runGrowth(ctx)
	s.runEconomy(ctx)
	s.runTrade(ctx)
}

func (s *SettlementSystem) runGrowth(ctx context.Context) {
	for _, ent := range s.settlements(entities.KindDemographics, entities.KindLogistics) {
		d := ent.Demographics
		l := ent.Logistics
		if d.Population <= 0 {
			continue
		}

		needPerHead := s.foodNeedFor(ent)
		need := float64(d.Population) * needPerHead
		have := l.Stock(ResourceFood)

		if have >= need {
			if d.Population < d.Capacity {
				growth := int(float64(d.Population) * s.growthRateFor(ent))
				d.Population += growth
				if d.Population > d.Capacity {
					d.Population = d.Capacity
				}
			}
			l.AddStock(ResourceFood, -need)
			d.AdjustUnrest(-unrestDecayFed)
		} else if needPerHead > 0 {
			deaths := int((need - have) / needPerHead)
			d.Population -= deaths
			if d.Population < 0 {
				d.Population = 0
			}
			l.AddStock(ResourceFood, -have)
			d.AdjustUnrest(unrestRiseStarving)
			slog.DebugContext(ctx, "settlement starving",
				"entity_id", ent.ID,
				"deaths", deaths,
				"unrest", d.Unrest,
			)
		}

		l.Population = d.Population
	}
}

func (s *SettlementSystem) runEconomy(_ context.Context) {
	for _, ent := range s.settlements(entities.KindDemographics, entities.KindEconomy) {
		d := ent.Demographics
		ec := ent.Economy

		tax := int(float64(d.Population) * ec.TaxRate * (1 - d.Unrest))
		ec.Wealth += tax

		if ec.PrimaryExport != "" && ent.Logistics != nil {
			produced := int(float64(d.Population) * productionFactor * (1 - d.Unrest) * s.farmWeightFor(ent))
			if produced > 0 {
				ent.Logistics.AddStock(ec.PrimaryExport, float64(produced))
			}
		}

		if d.Unrest > crimeUnrestFloor && ec.Wealth > crimeWealthFloor {
			ec.Wealth -= int(crimeSiphonRate * float64(ec.Wealth))
		}
	}
}

func (s *SettlementSystem) runTrade(ctx context.Context) {
	traders := s.settlements(entities.KindEconomy, entities.KindLogistics)

	for _, seller := range traders {
		good := seller.Economy.PrimaryExport
		if good == "" {
			continue
		}
		for _, buyer := range traders {
			if buyer.ID == seller.ID || buyer.Economy.PrimaryImport != good {
				continue
			}

			price := buyer.Economy.Price(good)
			affordable := math.Floor(float64(buyer.Economy.Wealth) / price)
			qty := math.Min(tradeCapPerTick, math.Min(seller.Logistics.Stock(good), affordable))
			if qty <= 0 {
				continue
			}

			cost := int(qty * price)
			seller.Economy.Wealth += cost
			buyer.Economy.Wealth -= cost
			seller.Logistics.AddStock(good, -qty)
			buyer.Logistics.AddStock(good, qty)

			slog.DebugContext(ctx, "trade executed",
				"seller_id", seller.ID,
				"buyer_id", buyer.ID,
				"resource", good,
				"quantity", qty,
				"cost", cost,
			)

			if f := s.factionFor(seller); f != nil && f.ExpansionDrive > tradeExpansionHunger {
				raiseTradeLevel(seller)
				raiseTradeLevel(buyer)
			}
		}
	}
}

func raiseTradeLevel(ent *entities.Entity) {
	if ent.Infrastructure == nil {
		return
	}
	ent.Infrastructure.TradeLevel += tradeLevelCreep
	if ent.Infrastructure.TradeLevel > tradeLevelCap {
		ent.Infrastructure.TradeLevel = tradeLevelCap
	}
}

// settlements returns matching entities in id order.
func (s *SettlementSystem) settlements(kinds ...entities.ComponentKind) []*entities.Entity {
	list := s.registry.EntitiesWith(kinds...)
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (s *SettlementSystem) speciesFor(ent *entities.Entity) *definitions.Species {
	if ent.Demographics == nil || ent.Demographics.Culture == "" {
		return nil
	}
	return s.defs.Species[ent.Demographics.Culture]
}

func (s *SettlementSystem) growthRateFor(ent *entities.Entity) float64 {
	if sp := s.speciesFor(ent); sp != nil {
		return sp.GrowthRate
	}
	return ent.Demographics.GrowthRate
}

func (s *SettlementSystem) foodNeedFor(ent *entities.Entity) float64 {
	if sp := s.speciesFor(ent); sp != nil {
		if need, ok := sp.ResourceNeeds[ResourceFood]; ok {
			return need
		}
	}
	if ent.Logistics != nil && ent.Logistics.NeedRates != nil {
		if need, ok := ent.Logistics.NeedRates[ResourceFood]; ok {
			return need
		}
	}
	return defaultFoodNeed
}

func (s *SettlementSystem) farmWeightFor(ent *entities.Entity) float64 {
	if sp := s.speciesFor(ent); sp != nil {
		return sp.TaskWeights.Farm
	}
	return 1
}

func (s *SettlementSystem) factionFor(ent *entities.Entity) *definitions.Faction {
	if ent.Faction == nil {
		return nil
	}
	return s.defs.Factions[ent.Faction.Faction]
}
