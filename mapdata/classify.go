package mapdata

// FacilityKind is the classification of a raw record.
type FacilityKind int

const (
	// KindIgnored means the record's category is outside both allow-lists.
	KindIgnored FacilityKind = iota
	// KindBusiness is a protectable, profit-accruing facility.
	KindBusiness
	// KindBase is an organization's home base.
	KindBase
)

// businessTags is the allow-list of categories that become businesses.
// Shop-like tags additionally mark the business as a shop.
var businessTags = map[string]bool{
	"restaurant":  true,
	"cafe":        true,
	"bar":         true,
	"pub":         true,
	"fast_food":   true,
	"nightclub":   true,
	"casino":      true,
	"bank":        true,
	"pharmacy":    true,
	"supermarket": true,
	"convenience": true,
	"clothes":     true,
	"jewelry":     true,
	"electronics": true,
	"pawnbroker":  true,
}

// shopTags marks the subset of business categories where items can be bought.
var shopTags = map[string]bool{
	"supermarket": true,
	"convenience": true,
	"pharmacy":    true,
	"pawnbroker":  true,
}

// baseTags is the allow-list of categories that become organization bases.
var baseTags = map[string]bool{
	"townhall":         true,
	"community_centre": true,
	"courthouse":       true,
	"police":           true,
}

// Classify maps a raw record's category onto a facility kind.
func Classify(r RawRecord) FacilityKind {
	switch {
	case businessTags[r.Category]:
		return KindBusiness
	case baseTags[r.Category]:
		return KindBase
	default:
		return KindIgnored
	}
}

// IsShop reports whether the category allows buying items.
func IsShop(category string) bool {
	return shopTags[category]
}
