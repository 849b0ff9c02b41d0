package entities

// The twelve core attributes.
const (
	AttrMight     = "Might"
	AttrReflexes  = "Reflexes"
	AttrEndurance = "Endurance"
	AttrVitality  = "Vitality"
	AttrFortitude = "Fortitude"
	AttrKnowledge = "Knowledge"
	AttrLogic     = "Logic"
	AttrAwareness = "Awareness"
	AttrIntuition = "Intuition"
	AttrCharm     = "Charm"
	AttrWillpower = "Willpower"
	AttrFinesse   = "Finesse"
)

// CoreAttributes lists the twelve attributes in canonical order.
var CoreAttributes = []string{
	AttrMight, AttrReflexes, AttrEndurance, AttrVitality,
	AttrFortitude, AttrKnowledge, AttrLogic, AttrAwareness,
	AttrIntuition, AttrCharm, AttrWillpower, AttrFinesse,
}

// Position locates an entity on a map grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z,omitempty"`
}

// Renderable describes how the client draws an entity.
type Renderable struct {
	Sprite string  `json:"sprite"`
	Color  string  `json:"color,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// Stats maps attribute names to integer scores.
type Stats map[string]int

// Get returns the named attribute, or fallback if absent.
func (s Stats) Get(name string, fallback int) int {
	if v, ok := s[name]; ok {
		return v
	}
	return fallback
}

// Vitals holds the four bounded pools. Invariant: 0 <= current <= max
// for each pool; all mutation goes through the helpers below.
type Vitals struct {
	HP     int `json:"hp"`
	MaxHP  int `json:"max_hp"`
	SP     int `json:"sp"`
	MaxSP  int `json:"max_sp"`
	FP     int `json:"fp"`
	MaxFP  int `json:"max_fp"`
	CMP    int `json:"cmp"`
	MaxCMP int `json:"max_cmp"`
}

// DeriveVitals computes maximum pools from stats per the standard
// formulas, with current pools at maximum.
func DeriveVitals(s Stats) *Vitals {
	maxHP := s.Get(AttrVitality, 0) + s.Get(AttrFortitude, 0) + s.Get(AttrEndurance, 0)/2 + 10
	maxSP := s.Get(AttrEndurance, 0) + s.Get(AttrMight, 0) + s.Get(AttrReflexes, 0)/2
	maxFP := s.Get(AttrKnowledge, 0) + s.Get(AttrLogic, 0) + s.Get(AttrWillpower, 0)/2
	maxCMP := s.Get(AttrWillpower, 0) + s.Get(AttrIntuition, 0) + s.Get(AttrAwareness, 0)/2 + 10

	return &Vitals{
		HP: maxHP, MaxHP: maxHP,
		SP: maxSP, MaxSP: maxSP,
		FP: maxFP, MaxFP: maxFP,
		CMP: maxCMP, MaxCMP: maxCMP,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Damage reduces HP, flooring at zero, and returns the amount actually
// removed.
func (v *Vitals) Damage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := v.HP
	v.HP = clamp(v.HP-amount, 0, v.MaxHP)
	return before - v.HP
}

// SpendSP deducts stamina if the combatant can pay; returns false and
// leaves the pool untouched otherwise.
func (v *Vitals) SpendSP(cost int) bool {
	if cost < 0 || v.SP < cost {
		return false
	}
	v.SP -= cost
	return true
}

// RegainSP adds stamina capped at the maximum.
func (v *Vitals) RegainSP(amount int) {
	v.SP = clamp(v.SP+amount, 0, v.MaxSP)
}

// DamageCMP reduces composure, flooring at zero, and returns the amount
// actually removed.
func (v *Vitals) DamageCMP(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := v.CMP
	v.CMP = clamp(v.CMP-amount, 0, v.MaxCMP)
	return before - v.CMP
}

// Clamp forces every pool back into [0, max]. Used when loading
// records whose current values drifted outside bounds.
func (v *Vitals) Clamp() {
	v.HP = clamp(v.HP, 0, v.MaxHP)
	v.SP = clamp(v.SP, 0, v.MaxSP)
	v.FP = clamp(v.FP, 0, v.MaxFP)
	v.CMP = clamp(v.CMP, 0, v.MaxCMP)
}

// Inventory is an ordered list of item references plus currency.
type Inventory struct {
	Items    []string `json:"items"`
	Gold     int      `json:"gold"`
	Capacity int      `json:"capacity"`
}

// Contains reports whether the inventory holds the named item.
func (inv *Inventory) Contains(item string) bool {
	for _, it := range inv.Items {
		if it == item {
			return true
		}
	}
	return false
}

// Remove deletes the first occurrence of the named item.
func (inv *Inventory) Remove(item string) bool {
	for i, it := range inv.Items {
		if it == item {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Equipment slots
const (
	SlotMainHand  = "main_hand"
	SlotOffHand   = "off_hand"
	SlotArmor     = "armor"
	SlotHead      = "head"
	SlotAccessory = "accessory"
)

// Equipment maps slots to equipped item references.
type Equipment struct {
	Slots map[string]string `json:"slots"`
}

// MainHand returns the main-hand item, empty when unarmed.
func (eq *Equipment) MainHand() string {
	if eq == nil || eq.Slots == nil {
		return ""
	}
	return eq.Slots[SlotMainHand]
}

// StatusEffect is a timed condition. Duration -1 means permanent.
type StatusEffect struct {
	Name      string `json:"name"`
	Duration  int    `json:"duration"`
	Magnitude int    `json:"magnitude"`
}

// StatusEffects is the list of active conditions on an entity.
type StatusEffects struct {
	Effects []StatusEffect `json:"effects"`
}

// Apply adds a condition, replacing an existing one of the same name.
func (se *StatusEffects) Apply(effect StatusEffect) {
	for i, e := range se.Effects {
		if e.Name == effect.Name {
			se.Effects[i] = effect
			return
		}
	}
	se.Effects = append(se.Effects, effect)
}

// Has reports whether the named condition is active.
func (se *StatusEffects) Has(name string) bool {
	for _, e := range se.Effects {
		if e.Name == name {
			return true
		}
	}
	return false
}

// TickRound decrements remaining durations and drops expired
// conditions. Permanent effects (duration -1) are untouched.
func (se *StatusEffects) TickRound() {
	kept := se.Effects[:0]
	for _, e := range se.Effects {
		if e.Duration > 0 {
			e.Duration--
		}
		if e.Duration != 0 {
			kept = append(kept, e)
		}
	}
	se.Effects = kept
}

// FactionMember binds an entity to a faction.
type FactionMember struct {
	Faction string `json:"faction"`
	Rank    string `json:"rank,omitempty"`
}

// Logistics tracks a settlement's stocks and consumption.
type Logistics struct {
	Resources  map[string]float64 `json:"resources"`
	Population int                `json:"population"`
	NeedRates  map[string]float64 `json:"need_rates"`
	LastTick   int64              `json:"last_tick"`
}

// Stock returns the stored amount of a resource.
func (l *Logistics) Stock(name string) float64 {
	if l.Resources == nil {
		return 0
	}
	return l.Resources[name]
}

// AddStock adjusts a resource stock, flooring at zero.
func (l *Logistics) AddStock(name string, delta float64) {
	if l.Resources == nil {
		l.Resources = make(map[string]float64)
	}
	v := l.Resources[name] + delta
	if v < 0 {
		v = 0
	}
	l.Resources[name] = v
}

// Demographics tracks a settlement's population state.
type Demographics struct {
	Population int     `json:"population"`
	Capacity   int     `json:"capacity"`
	GrowthRate float64 `json:"growth_rate"`
	Culture    string  `json:"culture,omitempty"`
	Unrest     float64 `json:"unrest"`
}

// AdjustUnrest moves unrest by delta, clamped to [0, 1].
func (d *Demographics) AdjustUnrest(delta float64) {
	d.Unrest += delta
	if d.Unrest < 0 {
		d.Unrest = 0
	}
	if d.Unrest > 1 {
		d.Unrest = 1
	}
}

// Economy tracks a settlement's wealth and trade posture.
type Economy struct {
	Wealth        int                `json:"wealth"`
	PrimaryExport string             `json:"primary_export,omitempty"`
	PrimaryImport string             `json:"primary_import,omitempty"`
	TaxRate       float64            `json:"tax_rate"`
	MarketPrices  map[string]float64 `json:"market_prices,omitempty"`
}

// Price returns the posted market price for a resource, defaulting to 1.
func (ec *Economy) Price(resource string) float64 {
	if ec.MarketPrices == nil {
		return 1
	}
	if p, ok := ec.MarketPrices[resource]; ok && p > 0 {
		return p
	}
	return 1
}

// Infrastructure tracks a settlement's built environment.
type Infrastructure struct {
	HousingLevel float64  `json:"housing_level"`
	DefenseLevel float64  `json:"defense_level"`
	TradeLevel   float64  `json:"trade_level"`
	Buildings    []string `json:"buildings,omitempty"`
}
