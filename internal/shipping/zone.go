// Package shipping maps a destination province and cart subtotal to a
// flat shipping cost.
package shipping

import "strings"

const (
	DefaultFreeShippingThreshold int64 = 100000
	DefaultCost                  int64 = 20000
)

type Zone int

const (
	ZoneDefault Zone = iota
	Zone1
	Zone2
	Zone3
)

func (z Zone) String() string {
	switch z {
	case Zone1:
		return "zone1"
	case Zone2:
		return "zone2"
	case Zone3:
		return "zone3"
	default:
		return "default"
	}
}

type zoneRule struct {
	zone     Zone
	cost     int64
	keywords []string
}

// Evaluated in order; the first rule with a matching keyword wins.
var zoneRules = []zoneRule{
	{zone: Zone1, cost: 15000, keywords: []string{"jawa", "bali"}},
	{zone: Zone2, cost: 25000, keywords: []string{"sumatera", "sumatra", "kalimantan", "riau", "lampung", "bengkulu"}},
	{zone: Zone3, cost: 35000, keywords: []string{"sulawesi", "maluku", "papua", "gorontalo"}},
}

// ZoneResolver is pure. The zero value uses the default threshold and cost.
type ZoneResolver struct {
	FreeShippingThreshold int64
	DefaultCost           int64
}

func NewZoneResolver(threshold, defaultCost int64) ZoneResolver {
	return ZoneResolver{FreeShippingThreshold: threshold, DefaultCost: defaultCost}
}

// Classify returns the zone whose keyword occurs in the province name,
// compared case-insensitively.
func (r ZoneResolver) Classify(province string) Zone {
	p := strings.ToLower(province)
	for _, rule := range zoneRules {
		for _, kw := range rule.keywords {
			if strings.Contains(p, kw) {
				return rule.zone
			}
		}
	}
	return ZoneDefault
}

// Resolve returns the shipping cost for the destination. Subtotals at or
// above the free-shipping threshold ship free regardless of zone.
func (r ZoneResolver) Resolve(province string, subtotal int64) int64 {
	if subtotal >= r.threshold() {
		return 0
	}
	zone := r.Classify(province)
	for _, rule := range zoneRules {
		if rule.zone == zone {
			return rule.cost
		}
	}
	return r.defaultCost()
}

func (r ZoneResolver) threshold() int64 {
	if r.FreeShippingThreshold <= 0 {
		return DefaultFreeShippingThreshold
	}
	return r.FreeShippingThreshold
}

func (r ZoneResolver) defaultCost() int64 {
	if r.DefaultCost <= 0 {
		return DefaultCost
	}
	return r.DefaultCost
}
