package catalog

import (
	"testing"
	"time"

	"github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	c, err := NewFromEnv(log)
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	return c
}

func TestMatchZoneLocal(t *testing.T) {
	c := testCatalog(t)

	z := c.MatchZone("je suis à Yopougon vers le marché")
	if z == nil {
		t.Fatalf("MatchZone: expected a match for Yopougon")
	}
	if z.Name != "Yopougon" || z.Cost != 1500 || z.Category != order.ZoneLocal {
		t.Fatalf("MatchZone: unexpected zone %+v", z)
	}
}

func TestMatchZoneFoldsAccentsAndCase(t *testing.T) {
	c := testCatalog(t)

	for _, text := range []string{
		"COCODY ANGRE",
		"cocody angré",
		"j'habite Angré 8e tranche",
	} {
		z := c.MatchZone(text)
		if z == nil || z.Name != "Cocody" {
			t.Fatalf("MatchZone(%q): expected Cocody, got %+v", text, z)
		}
	}
}

func TestMatchZoneAlias(t *testing.T) {
	c := testCatalog(t)

	z := c.MatchZone("livrez-moi à port bouet svp")
	if z == nil || z.Name != "Port-Bouët" {
		t.Fatalf("MatchZone: expected Port-Bouët, got %+v", z)
	}
}

func TestMatchZoneRemote(t *testing.T) {
	c := testCatalog(t)

	z := c.MatchZone("je suis à Bouaké")
	if z == nil || z.Category != order.ZoneRemote {
		t.Fatalf("MatchZone: expected remote zone, got %+v", z)
	}
	if z.Cost != 0 {
		t.Fatalf("MatchZone: remote zones carry no fixed cost, got %d", z.Cost)
	}
}

func TestMatchZoneNoFalseSubstring(t *testing.T) {
	c := testCatalog(t)

	// "yop" must not fire inside an unrelated word.
	if z := c.MatchZone("le colis est chez yopla"); z != nil {
		t.Fatalf("MatchZone: unexpected match %+v", z)
	}
	if z := c.MatchZone("rien à signaler"); z != nil {
		t.Fatalf("MatchZone: unexpected match %+v", z)
	}
}

func TestDeliveryEstimateCutoff(t *testing.T) {
	c := testCatalog(t)
	local := Zone{Name: "Cocody", Cost: 1500, Category: order.ZoneLocal}
	remote := Zone{Name: "Bouaké", Category: order.ZoneRemote}

	morning := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 19, 30, 0, 0, time.UTC)

	if got := c.DeliveryEstimate(local, morning); got != "livraison aujourd'hui" {
		t.Fatalf("DeliveryEstimate morning: got %q", got)
	}
	if got := c.DeliveryEstimate(local, evening); got != "livraison demain" {
		t.Fatalf("DeliveryEstimate evening: got %q", got)
	}
	if got := c.DeliveryEstimate(remote, morning); got != "expédition sous 24 à 48h" {
		t.Fatalf("DeliveryEstimate remote: got %q", got)
	}
}

func TestDeliveryEstimatePerZoneCutoff(t *testing.T) {
	c := testCatalog(t)
	afternoon := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)

	// 16h is before the catalog-wide cutoff (17h) but past Port-Bouët's own
	// 15h cutoff.
	if got := c.DeliveryEstimate(*c.MatchZone("port bouet"), afternoon); got != "livraison demain" {
		t.Fatalf("DeliveryEstimate Port-Bouët 16h: got %q", got)
	}
	if got := c.DeliveryEstimate(*c.MatchZone("cocody"), afternoon); got != "livraison aujourd'hui" {
		t.Fatalf("DeliveryEstimate Cocody 16h: got %q", got)
	}

	// Zones rebuilt from persisted fields carry no override; the cutoff is
	// re-resolved by name.
	rebuilt := Zone{Name: "Port-Bouët", Cost: 2500, Category: order.ZoneLocal}
	if got := c.DeliveryEstimate(rebuilt, afternoon); got != "livraison demain" {
		t.Fatalf("DeliveryEstimate rebuilt Port-Bouët 16h: got %q", got)
	}
}

func TestMatchProduct(t *testing.T) {
	if got := MatchProduct("shoe, footwear, sneakers, white"); got != "chaussures" {
		t.Fatalf("MatchProduct: got %q", got)
	}
	if got := MatchProduct("sky, cloud, tree"); got != "" {
		t.Fatalf("MatchProduct: expected no match, got %q", got)
	}
}

func TestMatchProductTieIsStable(t *testing.T) {
	// "footwear" and "sneakers" are the same length; list order must decide,
	// every time.
	for i := 0; i < 50; i++ {
		if got := MatchProduct("footwear, sneakers"); got != "chaussures" {
			t.Fatalf("run %d: got %q, want %q", i, got, "chaussures")
		}
	}
}

func TestLooksLikeScreenshot(t *testing.T) {
	if !LooksLikeScreenshot("screenshot, text, font, number") {
		t.Fatalf("LooksLikeScreenshot: expected true")
	}
	if LooksLikeScreenshot("handbag, leather, fashion") {
		t.Fatalf("LooksLikeScreenshot: expected false")
	}
}
