package collector

import (
	"regexp"
	"strconv"
)

var productURLPattern = regexp.MustCompile(`product/(\d+)`)

// resolverStrategy maps one identifier source to a stable product id.
// Returns "" when the source is not populated.
type resolverStrategy struct {
	name    string
	resolve func(p RawProduct) string
}

// productIDResolvers is the ordered fallback chain for resolving a stable
// product identifier. The listing API is inconsistent about which field is
// populated, and item linkage depends on getting this right: the canonical
// product URL wins, then the seller-assigned offer code, then the raw SKU.
var productIDResolvers = []resolverStrategy{
	{
		name: "url",
		resolve: func(p RawProduct) string {
			if m := productURLPattern.FindStringSubmatch(p.URL); m != nil {
				return m[1]
			}
			return ""
		},
	},
	{
		name: "offer_code",
		resolve: func(p RawProduct) string {
			return p.OfferID
		},
	},
	{
		name: "sku",
		resolve: func(p RawProduct) string {
			if p.SKU == 0 {
				return ""
			}
			return strconv.FormatInt(p.SKU, 10)
		},
	},
}

// ResolveProductID runs the fallback chain. Empty means no identifier source
// was populated at all.
func ResolveProductID(p RawProduct) string {
	for _, strategy := range productIDResolvers {
		if id := strategy.resolve(p); id != "" {
			return id
		}
	}
	return ""
}
