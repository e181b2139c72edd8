package catalog

// Caption vocabulary used to tell product photos apart from payment
// screenshots. Vision captions arrive lowercased and in English; the product
// names shown to the customer stay French.

// Ordered: the longest matching term wins, list position breaks length ties,
// so the same caption always yields the same product name.
var productTerms = []struct {
	term string
	name string
}{
	{"footwear", "chaussures"},
	{"shoes", "chaussures"},
	{"shoe", "chaussures"},
	{"sneakers", "baskets"},
	{"sneaker", "baskets"},
	{"sandal", "sandales"},
	{"handbag", "sac à main"},
	{"backpack", "sac à dos"},
	{"bag", "sac"},
	{"dress", "robe"},
	{"clothing", "vêtement"},
	{"t-shirt", "t-shirt"},
	{"shirt", "chemise"},
	{"jeans", "jean"},
	{"watch", "montre"},
	{"jewelry", "bijoux"},
	{"jewellery", "bijoux"},
	{"necklace", "collier"},
	{"bracelet", "bracelet"},
	{"perfume", "parfum"},
	{"cosmetics", "cosmétiques"},
	{"wig", "perruque"},
	{"hair", "mèches"},
	{"phone case", "coque de téléphone"},
	{"headphones", "écouteurs"},
	{"fabric", "pagne"},
	{"textile", "pagne"},
}

var screenshotTerms = []string{
	"screenshot",
	"screen shot",
	"text",
	"font",
	"number",
	"receipt",
	"document",
	"website",
	"web page",
	"software",
	"mobile phone screen",
	"user interface",
}

// MatchProduct maps a vision caption to a customer-facing product name, or ""
// when no known product term appears.
func MatchProduct(caption string) string {
	folded := Fold(caption)
	best := ""
	bestLen := 0
	for _, p := range productTerms {
		if len(p.term) > bestLen && containsWord(folded, p.term) {
			best = p.name
			bestLen = len(p.term)
		}
	}
	return best
}

// LooksLikeScreenshot reports whether a caption describes a screen capture
// rather than a physical product. Screenshots reach the bot as payment
// proofs, not as order photos.
func LooksLikeScreenshot(caption string) bool {
	folded := Fold(caption)
	for _, term := range screenshotTerms {
		if containsWord(folded, term) {
			return true
		}
	}
	return false
}
