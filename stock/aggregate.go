package stock

import (
	"sort"

	"github.com/baxtbl4b/app-goroshina/delivery"
)

// Aggregator folds a product's per-warehouse stock into display rows.
// It holds no mutable state once built and is safe for concurrent use.
type Aggregator struct {
	rules    Rules
	matchers []Matcher
	vendors  []VendorRule
	split    SplitRule
	delivery delivery.Classifier
}

// New builds an aggregator with the location matchers and vendor rules
// derived from rules. classifier may be nil.
func New(rules Rules, classifier delivery.Classifier) *Aggregator {
	return &Aggregator{
		rules:    rules,
		matchers: rules.matchers(),
		vendors:  rules.vendorRules(),
		split:    SplitRule{Tag: TagSecondarySplit, Provider: normalize(rules.SecondaryProvider)},
		delivery: classifier,
	}
}

// AddVendorRule appends a vendor rule. Call before the aggregator is shared.
func (a *Aggregator) AddVendorRule(r VendorRule) {
	a.vendors = append(a.vendors, r)
}

// Rules returns the rules the aggregator was built from
func (a *Aggregator) Rules() Rules {
	return a.rules
}

// Aggregate returns the stock rows for a product
func (a *Aggregator) Aggregate(p Product) Locations {
	locations, _ := a.Trace(p)
	return locations
}

// Trace is Aggregate that also reports which rules fired, in order
func (a *Aggregator) Trace(p Product) (Locations, []Tag) {
	var fired []Tag
	fire := func(tag Tag) {
		for _, t := range fired {
			if t == tag {
				return
			}
		}
		fired = append(fired, tag)
	}

	vendors := a.vendorRulesFor(p.Provider)

	if len(p.Storehouse) == 0 {
		fire(TagEmptyStorehouse)
		label := BucketCheckAvailability
		for _, v := range vendors {
			if v.EmptyLabel != "" {
				fire(v.Tag)
				label = v.EmptyLabel
				break
			}
		}
		return Locations{a.row(label, max(p.Stock, 0), p.Provider, false, false)}, fired
	}

	totals := make(map[Bucket]int)
	otherCities := 0
	remoteOrigin := false
	isRemote := containsToken(a.rules.RemoteOriginToken)

	// Map order is random; sorting keeps Trace output stable
	names := make([]string, 0, len(p.Storehouse))
	for name := range p.Storehouse {
		names = append(names, name)
	}
	sort.Strings(names)

	// Quantities are summed signed so a negative correction offsets stock
	// in the same bucket; only positive totals are emitted.
	for _, name := range names {
		qty := p.Storehouse[name]
		if qty == 0 {
			continue
		}
		norm := normalize(name)

		m, ok := a.classify(norm)
		if !ok {
			fire(TagOtherCities)
			otherCities += qty
			if qty > 0 && isRemote(norm) {
				fire(TagRemoteOrigin)
				remoteOrigin = true
			}
			continue
		}

		fire(m.Tag)
		if v, suppressed := suppressedBy(vendors, m.Bucket); suppressed {
			fire(v.Tag)
			continue
		}
		totals[m.Bucket] += qty
	}

	out := make(Locations, 0, len(a.matchers)+2)
	emitted := make(map[Bucket]bool)
	for _, m := range a.matchers {
		if emitted[m.Bucket] {
			continue
		}
		emitted[m.Bucket] = true
		if qty := totals[m.Bucket]; qty > 0 {
			out = append(out, a.row(m.Bucket, qty, p.Provider, false, false))
		}
	}

	if otherCities > 0 {
		onOrder := BucketOnOrder
		if remoteOrigin {
			onOrder = BucketOnOrderRemote
		}

		secondary := a.split.quantity(p.ProviderStock)
		switch {
		case secondary == 0:
			out = append(out, a.row(onOrder, otherCities, p.Provider, false, remoteOrigin))
		case secondary < otherCities:
			fire(a.split.Tag)
			out = append(out,
				a.row(onOrder, otherCities-secondary, p.Provider, false, remoteOrigin),
				a.row(BucketRemoteWarehouse, secondary, a.split.Provider, true, false),
			)
		default:
			fire(a.split.Tag)
			out = append(out, a.row(BucketRemoteWarehouse, otherCities, a.split.Provider, true, false))
		}
	}

	if len(out) == 0 {
		fire(TagNothingAvailable)
		out = append(out, a.row(BucketCheckAvailability, 0, p.Provider, false, false))
	}

	return out, fired
}

func (a *Aggregator) classify(name string) (Matcher, bool) {
	for _, m := range a.matchers {
		if m.Match(name) {
			return m, true
		}
	}
	return Matcher{}, false
}

func (a *Aggregator) vendorRulesFor(provider string) []VendorRule {
	var rules []VendorRule
	for _, v := range a.vendors {
		if v.Applies != nil && v.Applies(provider) {
			rules = append(rules, v)
		}
	}
	return rules
}

func suppressedBy(vendors []VendorRule, b Bucket) (VendorRule, bool) {
	for _, v := range vendors {
		if v.suppresses(b) {
			return v, true
		}
	}
	return VendorRule{}, false
}

func (a *Aggregator) row(b Bucket, qty int, provider string, fromRemote, remoteOrigin bool) Location {
	l := Location{
		Location:            string(b),
		Stock:               qty,
		Provider:            provider,
		FromRemoteWarehouse: fromRemote,
		RemoteOrigin:        remoteOrigin,
	}
	switch {
	case remoteOrigin:
		l.Delivery = a.rules.RemoteOriginClass
	case a.delivery != nil:
		l.Delivery = a.delivery.Classify(l.Location, provider)
	}
	return l
}
