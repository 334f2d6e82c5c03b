package catalogs

// Reference data for a session: items, categories, star systems, connections,
// category correlations, news event templates and the planet production/demand
// tables. Loaded once from the config directory and immutable afterwards.

type Catalogs struct {
	Items      ItemCatalog
	Categories CategoryCatalog
	Systems    SystemCatalog
	Galaxy     ConnectionCatalog

	Correlations CorrelationCatalog
	Events       EventCatalog
	Production   ProductionTable
	Demand       DemandTable
}

type Rarity string

const (
	RarityCommon Rarity = "COMMON"
	RarityRare   Rarity = "RARE"
	RarityExotic Rarity = "EXOTIC"
)

type PlanetType string

const (
	PlanetAgricultural  PlanetType = "AGRICULTURAL"
	PlanetMining        PlanetType = "MINING"
	PlanetManufacturing PlanetType = "MANUFACTURING"
	PlanetMedical       PlanetType = "MEDICAL"
	PlanetMilitary      PlanetType = "MILITARY"
	PlanetResearch      PlanetType = "RESEARCH"
	PlanetTradeHub      PlanetType = "TRADE_HUB"
	PlanetColony        PlanetType = "COLONY"
	PlanetFrontier      PlanetType = "FRONTIER"
	PlanetPirateHaven   PlanetType = "PIRATE_HAVEN"
)

type DemandLevel string

const (
	DemandNone   DemandLevel = "NONE"
	DemandLow    DemandLevel = "LOW"
	DemandMedium DemandLevel = "MEDIUM"
	DemandHigh   DemandLevel = "HIGH"
)

type Impact string

const (
	ImpactSpike Impact = "SPIKE"
	ImpactCrash Impact = "CRASH"
)

type ItemCatalog struct {
	Defs       map[string]ItemDef
	ByCategory map[string][]string // category id -> item ids, sorted
	Digest     string
}

type ItemDef struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	BasePrice float64 `json:"base_price"`
	Rarity    Rarity  `json:"rarity"`
}

type CategoryCatalog struct {
	Defs   map[string]CategoryDef
	IDs    []string // sorted
	Digest string
}

type CategoryDef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SystemCatalog struct {
	Defs   map[string]SystemDef
	IDs    []string // sorted
	Digest string
}

type SystemDef struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	PlanetType PlanetType `json:"planet_type"`
}

type ConnectionCatalog struct {
	Edges  []ConnectionDef
	Digest string
}

// ConnectionDef is an undirected jump lane between two systems.
type ConnectionDef struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Distance float64 `json:"distance"`
}

type CorrelationCatalog struct {
	// ByPrimary maps a category to the categories it drags along when its
	// heat moves, with the fraction of the primary delta passed through.
	ByPrimary map[string][]CorrelationDef
	Digest    string
}

type CorrelationDef struct {
	Primary   string  `json:"primary"`
	Secondary string  `json:"secondary"`
	Strength  float64 `json:"strength"`
}

type EventCatalog struct {
	ByID   map[string]EventTemplate
	IDs    []string // sorted, fixes draw order
	Digest string
}

type EventTemplate struct {
	ID           string  `json:"id"`
	Headline     string  `json:"headline"`
	Category     string  `json:"category"`
	Impact       Impact  `json:"impact"`
	MinMagnitude float64 `json:"min_magnitude"`
	MaxMagnitude float64 `json:"max_magnitude"`
}

// ProductionTable holds the signed planet-category price modifiers.
// Negative means the planet type produces the category.
type ProductionTable struct {
	Mods   map[PlanetType]map[string]float64
	Digest string
}

type DemandTable struct {
	Levels map[PlanetType]map[string]DemandLevel
	Digest string
}

func (c *Catalogs) Item(id string) (ItemDef, bool) {
	d, ok := c.Items.Defs[id]
	return d, ok
}

func (c *Catalogs) System(id string) (SystemDef, bool) {
	d, ok := c.Systems.Defs[id]
	return d, ok
}

// ProductionModifier returns the signed modifier for (planet type, category).
// Missing entries read as 0 (neutral).
func (c *Catalogs) ProductionModifier(pt PlanetType, category string) float64 {
	if m, ok := c.Production.Mods[pt]; ok {
		return m[category]
	}
	return 0
}

// Produces reports whether a planet type manufactures a category, which is
// signaled by a strictly negative production modifier.
func (c *Catalogs) Produces(pt PlanetType, category string) bool {
	return c.ProductionModifier(pt, category) < 0
}

// DemandLevelFor returns the planet type's appetite for a category.
// Missing entries read as NONE.
func (c *Catalogs) DemandLevelFor(pt PlanetType, category string) DemandLevel {
	if m, ok := c.Demand.Levels[pt]; ok {
		if lvl, ok := m[category]; ok {
			return lvl
		}
	}
	return DemandNone
}
