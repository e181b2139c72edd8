package catalog

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/envutil"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

// Zone is one deliverable area with its flat courier cost. Remote zones have
// no fixed cost; they are flagged for a human quote instead.
type Zone struct {
	Name     string             `yaml:"name"`
	Aliases  []string           `yaml:"aliases"`
	Cost     int                `yaml:"cost"`
	Category order.ZoneCategory `yaml:"category"`

	// SameDayCutoffHr overrides the catalog-wide cutoff for this zone; nil
	// means the default applies.
	SameDayCutoffHr *int `yaml:"same_day_cutoff_hour,omitempty"`
}

type catalogFile struct {
	Zones           []Zone `yaml:"zones"`
	SameDayCutoffHr *int   `yaml:"same_day_cutoff_hour"`
}

// Catalog resolves free-text zone mentions against the configured delivery
// areas. Matching is case- and accent-insensitive ("yopougon", "Yopougon",
// "YOPOUGON" and "Port-Bouët" vs "port bouet" all land on the same zone).
type Catalog struct {
	zones           []Zone
	sameDayCutoffHr int
	log             *logger.Logger
}

// NewFromEnv builds the catalog from CATALOG_PATH when set, otherwise from
// the compiled-in Abidjan defaults.
func NewFromEnv(baseLog *logger.Logger) (*Catalog, error) {
	catLog := baseLog.With("service", "Catalog")

	zones := defaultZones()
	cutoff := envutil.Int("CATALOG_SAME_DAY_CUTOFF_HOUR", 17)

	if path := envutil.Str("CATALOG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file %q: %w", path, err)
		}
		var cf catalogFile
		if err := yaml.Unmarshal(raw, &cf); err != nil {
			return nil, fmt.Errorf("failed to parse catalog file %q: %w", path, err)
		}
		if len(cf.Zones) == 0 {
			return nil, fmt.Errorf("catalog file %q contains no zones", path)
		}
		zones = cf.Zones
		if cf.SameDayCutoffHr != nil {
			cutoff = *cf.SameDayCutoffHr
		}
		catLog.Info("Loaded zone catalog from file", "path", path, "zones", len(zones))
	}

	for i := range zones {
		if zones[i].Category == "" {
			zones[i].Category = order.ZoneLocal
		}
	}

	return &Catalog{zones: zones, sameDayCutoffHr: cutoff, log: catLog}, nil
}

// MatchZone scans free text for a known zone name or alias and returns the
// matched zone, or nil when the text mentions no configured area.
func (c *Catalog) MatchZone(text string) *Zone {
	folded := Fold(text)
	if folded == "" {
		return nil
	}
	var best *Zone
	bestLen := 0
	for i := range c.zones {
		z := &c.zones[i]
		for _, candidate := range append([]string{z.Name}, z.Aliases...) {
			fc := Fold(candidate)
			if fc == "" {
				continue
			}
			// Longest alias wins so "riviera palmeraie" beats "riviera".
			if len(fc) > bestLen && containsWord(folded, fc) {
				best = z
				bestLen = len(fc)
			}
		}
	}
	return best
}

// DeliveryEstimate renders the human delivery promise for a zone at the given
// local time. Local zones deliver same-day before the cutoff hour; remote
// zones ship with the partner courier.
func (c *Catalog) DeliveryEstimate(z Zone, now time.Time) string {
	if z.Category == order.ZoneRemote {
		return "expédition sous 24 à 48h"
	}
	if now.Hour() < c.cutoffFor(z) {
		return "livraison aujourd'hui"
	}
	return "livraison demain"
}

// cutoffFor resolves the same-day cutoff hour for a zone. Callers sometimes
// rebuild a Zone from persisted fields, so an unset override is re-resolved
// against the configured zone of the same name before the catalog default.
func (c *Catalog) cutoffFor(z Zone) int {
	if z.SameDayCutoffHr != nil {
		return *z.SameDayCutoffHr
	}
	for i := range c.zones {
		if c.zones[i].Name == z.Name {
			if c.zones[i].SameDayCutoffHr != nil {
				return *c.zones[i].SameDayCutoffHr
			}
			break
		}
	}
	return c.sameDayCutoffHr
}

// Fold lowercases and strips combining accents so catalog matching treats
// "Cocody Angré" and "cocody angre" as the same string.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// containsWord reports whether needle appears in haystack at token
// boundaries, so "yop" does not match inside "yopougon" twice or "abobo"
// inside "ababobo".
func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		rel := strings.Index(haystack[idx:], needle)
		if rel < 0 {
			return false
		}
		start := idx + rel
		end := start + len(needle)
		beforeOK := start == 0 || !isWordByte(haystack[start-1])
		afterOK := end == len(haystack) || !isWordByte(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(haystack) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func intPtr(n int) *int { return &n }

func defaultZones() []Zone {
	return []Zone{
		{Name: "Yopougon", Aliases: []string{"yop"}, Cost: 1500, Category: order.ZoneLocal},
		{Name: "Cocody", Aliases: []string{"angre", "riviera", "deux plateaux"}, Cost: 1500, Category: order.ZoneLocal},
		{Name: "Plateau", Cost: 1500, Category: order.ZoneLocal},
		{Name: "Adjamé", Cost: 1500, Category: order.ZoneLocal},
		{Name: "Treichville", Cost: 1500, Category: order.ZoneLocal},
		{Name: "Marcory", Aliases: []string{"zone 4"}, Cost: 2000, Category: order.ZoneLocal},
		{Name: "Koumassi", Cost: 2000, Category: order.ZoneLocal},
		{Name: "Abobo", Cost: 2000, Category: order.ZoneLocal},
		// Outlying communes need the courier on the road earlier.
		{Name: "Port-Bouët", Aliases: []string{"port bouet"}, Cost: 2500, Category: order.ZoneLocal, SameDayCutoffHr: intPtr(15)},
		{Name: "Bingerville", Cost: 2500, Category: order.ZoneLocal, SameDayCutoffHr: intPtr(15)},
		{Name: "Songon", Cost: 2500, Category: order.ZoneLocal, SameDayCutoffHr: intPtr(15)},
		{Name: "Anyama", Cost: 2500, Category: order.ZoneLocal, SameDayCutoffHr: intPtr(15)},

		{Name: "Bouaké", Category: order.ZoneRemote},
		{Name: "Yamoussoukro", Aliases: []string{"yakro"}, Category: order.ZoneRemote},
		{Name: "San-Pédro", Aliases: []string{"san pedro"}, Category: order.ZoneRemote},
		{Name: "Korhogo", Category: order.ZoneRemote},
		{Name: "Daloa", Category: order.ZoneRemote},
		{Name: "Man", Category: order.ZoneRemote},
		{Name: "Gagnoa", Category: order.ZoneRemote},
	}
}
