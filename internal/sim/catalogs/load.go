package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadCategories(filepath.Join(configDir, "categories.json"), &c.Categories); err != nil {
		return nil, err
	}
	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadSystems(filepath.Join(configDir, "systems.json"), &c.Systems); err != nil {
		return nil, err
	}
	if err := loadConnections(filepath.Join(configDir, "connections.json"), &c.Galaxy); err != nil {
		return nil, err
	}
	if err := loadCorrelations(filepath.Join(configDir, "correlations.json"), &c.Correlations); err != nil {
		return nil, err
	}
	if err := loadEvents(filepath.Join(configDir, "events.json"), &c.Events); err != nil {
		return nil, err
	}
	if err := loadProduction(filepath.Join(configDir, "production.json"), &c.Production); err != nil {
		return nil, err
	}
	if err := loadDemand(filepath.Join(configDir, "demand.json"), &c.Demand); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadCategories(path string, out *CategoryCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []CategoryDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("categories.json: %w", err)
	}
	out.Defs = map[string]CategoryDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("categories.json: empty id")
		}
		out.Defs[d.ID] = d
	}
	out.IDs = sortedKeys(out.Defs)
	return nil
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	out.ByCategory = map[string][]string{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		if d.BasePrice <= 0 {
			return fmt.Errorf("items.json: %s: base_price must be positive", d.ID)
		}
		switch d.Rarity {
		case RarityCommon, RarityRare, RarityExotic:
		default:
			return fmt.Errorf("items.json: %s: unknown rarity %q", d.ID, d.Rarity)
		}
		out.Defs[d.ID] = d
		out.ByCategory[d.Category] = append(out.ByCategory[d.Category], d.ID)
	}
	for _, ids := range out.ByCategory {
		sort.Strings(ids)
	}
	return nil
}

func loadSystems(path string, out *SystemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []SystemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("systems.json: %w", err)
	}
	out.Defs = map[string]SystemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("systems.json: empty id")
		}
		out.Defs[d.ID] = d
	}
	out.IDs = sortedKeys(out.Defs)
	return nil
}

func loadConnections(path string, out *ConnectionCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ConnectionDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("connections.json: %w", err)
	}
	for _, d := range defs {
		if d.A == "" || d.B == "" || d.A == d.B {
			return fmt.Errorf("connections.json: bad edge %q-%q", d.A, d.B)
		}
		if d.Distance < 1 {
			return fmt.Errorf("connections.json: %s-%s: distance must be >= 1", d.A, d.B)
		}
	}
	out.Edges = defs
	return nil
}

func loadCorrelations(path string, out *CorrelationCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []CorrelationDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("correlations.json: %w", err)
	}
	out.ByPrimary = map[string][]CorrelationDef{}
	for _, d := range defs {
		if d.Primary == "" || d.Secondary == "" {
			return fmt.Errorf("correlations.json: empty category")
		}
		out.ByPrimary[d.Primary] = append(out.ByPrimary[d.Primary], d)
	}
	return nil
}

func loadEvents(path string, out *EventCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []EventTemplate
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("events.json: %w", err)
	}
	out.ByID = map[string]EventTemplate{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("events.json: empty id")
		}
		if d.Impact != ImpactSpike && d.Impact != ImpactCrash {
			return fmt.Errorf("events.json: %s: unknown impact %q", d.ID, d.Impact)
		}
		if d.MinMagnitude <= 0 || d.MaxMagnitude < d.MinMagnitude {
			return fmt.Errorf("events.json: %s: bad magnitude range [%v,%v]", d.ID, d.MinMagnitude, d.MaxMagnitude)
		}
		out.ByID[d.ID] = d
	}
	out.IDs = sortedKeys(out.ByID)
	return nil
}

func loadProduction(path string, out *ProductionTable) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var mods map[PlanetType]map[string]float64
	if err := json.Unmarshal(raw, &mods); err != nil {
		return fmt.Errorf("production.json: %w", err)
	}
	out.Mods = mods
	return nil
}

func loadDemand(path string, out *DemandTable) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var levels map[PlanetType]map[string]DemandLevel
	if err := json.Unmarshal(raw, &levels); err != nil {
		return fmt.Errorf("demand.json: %w", err)
	}
	for pt, m := range levels {
		for cat, lvl := range m {
			switch lvl {
			case DemandNone, DemandLow, DemandMedium, DemandHigh:
			default:
				return fmt.Errorf("demand.json: %s/%s: unknown level %q", pt, cat, lvl)
			}
		}
	}
	out.Levels = levels
	return nil
}

// validate checks cross-file references. Correlations pointing at unknown
// categories are allowed (they read as zero influence in the fluctuation
// step); everything else must resolve.
func (c *Catalogs) validate() error {
	for id, it := range c.Items.Defs {
		if _, ok := c.Categories.Defs[it.Category]; !ok {
			return fmt.Errorf("items.json: %s: unknown category %q", id, it.Category)
		}
	}
	for _, e := range c.Galaxy.Edges {
		if _, ok := c.Systems.Defs[e.A]; !ok {
			return fmt.Errorf("connections.json: unknown system %q", e.A)
		}
		if _, ok := c.Systems.Defs[e.B]; !ok {
			return fmt.Errorf("connections.json: unknown system %q", e.B)
		}
	}
	for id, ev := range c.Events.ByID {
		if _, ok := c.Categories.Defs[ev.Category]; !ok {
			return fmt.Errorf("events.json: %s: unknown category %q", id, ev.Category)
		}
	}
	for pt, m := range c.Production.Mods {
		for cat := range m {
			if _, ok := c.Categories.Defs[cat]; !ok {
				return fmt.Errorf("production.json: %s: unknown category %q", pt, cat)
			}
		}
	}
	for pt, m := range c.Demand.Levels {
		for cat := range m {
			if _, ok := c.Categories.Defs[cat]; !ok {
				return fmt.Errorf("demand.json: %s: unknown category %q", pt, cat)
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
