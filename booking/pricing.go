/*
pricing.go - Dynamic nightly pricing with stacked rate modifiers

PURPOSE:
  Computes a per-night price breakdown and grand total for a room over a
  stay. Rates are a policy table, not hard-coded constants: weekday
  surcharges, seasonal windows, peak months and premium categories are all
  data, so the default tariff can be replaced without code changes
  (see factory package for the JSON form).

RULE ORDER MATTERS:
  Modifiers are multiplicative and compound in rule order. A Friday in
  July for a Suite is base x 1.30 x 1.20 x 1.10, rounded ONCE at the end
  of that night - never per modifier.

ROUNDING CONTRACT:
  Each night is rounded half-up to a whole currency unit after all
  modifiers, then accumulated. Taxes and the grand total are rounded
  again after summation. Reordering rounding relative to summation
  changes totals; the order here is a tested contract.

DEFAULT TARIFF:
  1. Weekend (Fri/Sat):           x1.30  "Weekend Rate (+30%)"
  2. Holiday (Dec 20-31, Jan 1-5): x1.50  "Holiday Rate (+50%)"
  3. Summer peak (Jun-Aug):       x1.20  "Peak Season (+20%)"
  4. Suite/Presidential:          x1.10  "Premium Category (+10%)"
  Taxes 12%, flat service fee 25.

USAGE:
  quote, err := booking.DefaultRatePolicy().Quote(room, stay)
  // quote.Breakdown[i].Factors lists the labels applied to night i

SEE ALSO:
  - availability.go: The other half of the search path
  - factory/rates.go: JSON rate policy definitions
*/
package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE POLICY - Configurable tariff table
// =============================================================================

// SeasonWindow is a year-agnostic month/day window, inclusive on both ends.
// Windows may wrap the year boundary (From after To), e.g. Dec 20 - Jan 5.
type SeasonWindow struct {
	FromMonth time.Month
	FromDay   int
	ToMonth   time.Month
	ToDay     int
}

// Contains reports whether a date falls inside the window, ignoring year.
func (w SeasonWindow) Contains(d Date) bool {
	md := int(d.Month())*100 + d.Day()
	from := int(w.FromMonth)*100 + w.FromDay
	to := int(w.ToMonth)*100 + w.ToDay
	if from <= to {
		return md >= from && md <= to
	}
	// Wrapping window (e.g. Dec 20 - Jan 5)
	return md >= from || md <= to
}

// RateRule is one tariff modifier. A rule triggers on a night when ALL of
// its configured matcher groups match that night (unconfigured groups are
// ignored; within a group any element matches). When triggered it
// multiplies the running night price and records its label.
type RateRule struct {
	Label      string
	Multiplier decimal.Decimal

	Weekdays   []time.Weekday // e.g. Friday, Saturday
	Windows    []SeasonWindow // year-agnostic calendar windows
	Months     []time.Month   // e.g. June, July, August
	Categories []RoomCategory // e.g. Suite, Presidential
}

// Applies reports whether the rule triggers for one night of a room's stay.
func (r RateRule) Applies(d Date, category RoomCategory) bool {
	if len(r.Weekdays) > 0 && !containsWeekday(r.Weekdays, d.Weekday()) {
		return false
	}
	if len(r.Windows) > 0 && !anyWindowContains(r.Windows, d) {
		return false
	}
	if len(r.Months) > 0 && !containsMonth(r.Months, d.Month()) {
		return false
	}
	if len(r.Categories) > 0 && !containsCategory(r.Categories, category) {
		return false
	}
	return true
}

// RatePolicy is the complete tariff: ordered rules plus tax and fee terms.
type RatePolicy struct {
	Name       string
	Rules      []RateRule // applied in slice order, compounding
	TaxRate    decimal.Decimal
	ServiceFee decimal.Decimal
}

// DefaultRatePolicy returns the standard tariff.
func DefaultRatePolicy() RatePolicy {
	return RatePolicy{
		Name: "Standard Tariff",
		Rules: []RateRule{
			{
				Label:      "Weekend Rate (+30%)",
				Multiplier: decimal.NewFromFloat(1.30),
				Weekdays:   []time.Weekday{time.Friday, time.Saturday},
			},
			{
				Label:      "Holiday Rate (+50%)",
				Multiplier: decimal.NewFromFloat(1.50),
				Windows: []SeasonWindow{
					{FromMonth: time.December, FromDay: 20, ToMonth: time.December, ToDay: 31},
					{FromMonth: time.January, FromDay: 1, ToMonth: time.January, ToDay: 5},
				},
			},
			{
				Label:      "Peak Season (+20%)",
				Multiplier: decimal.NewFromFloat(1.20),
				Months:     []time.Month{time.June, time.July, time.August},
			},
			{
				Label:      "Premium Category (+10%)",
				Multiplier: decimal.NewFromFloat(1.10),
				Categories: []RoomCategory{CategorySuite, CategoryPresidential},
			},
		},
		TaxRate:    decimal.NewFromFloat(0.12),
		ServiceFee: decimal.NewFromInt(25),
	}
}

// =============================================================================
// QUOTE - Computed price breakdown
// =============================================================================

// NightPrice is one night of a quote.
type NightPrice struct {
	Date       Date
	BasePrice  decimal.Decimal
	FinalPrice decimal.Decimal
	Factors    []string
}

// Quote is the full price breakdown for a stay. Derived, never persisted;
// recomputed on demand from the room snapshot and the stay.
type Quote struct {
	BasePrice     decimal.Decimal
	Nights        int
	Breakdown     []NightPrice
	Subtotal      decimal.Decimal
	Taxes         decimal.Decimal
	Fees          decimal.Decimal
	GrandTotal    decimal.Decimal
	PricePerNight decimal.Decimal // average, display only
}

// Quote prices a room over a stay. Pure function of (room snapshot, stay).
func (p RatePolicy) Quote(room Room, stay StayRange) (*Quote, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	if !room.BasePrice.IsPositive() {
		return nil, fmt.Errorf("room %s base price %s: %w", room.ID, room.BasePrice, ErrInvalidPrice)
	}

	nights := stay.Nights()
	subtotal := decimal.Zero
	breakdown := make([]NightPrice, 0, nights)

	for _, night := range stay.NightDates() {
		price := room.BasePrice
		var factors []string

		for _, rule := range p.Rules {
			if rule.Applies(night, room.Category) {
				price = price.Mul(rule.Multiplier)
				factors = append(factors, rule.Label)
			}
		}

		// Round once per night, after all modifiers. decimal.Round is
		// half-away-from-zero, which is half-up for positive prices.
		price = price.Round(0)
		subtotal = subtotal.Add(price)

		breakdown = append(breakdown, NightPrice{
			Date:       night,
			BasePrice:  room.BasePrice,
			FinalPrice: price,
			Factors:    factors,
		})
	}

	taxes := subtotal.Mul(p.TaxRate).Round(0)
	grandTotal := subtotal.Add(taxes).Add(p.ServiceFee).Round(0)
	perNight := subtotal.Div(decimal.NewFromInt(int64(nights))).Round(0)

	return &Quote{
		BasePrice:     room.BasePrice,
		Nights:        nights,
		Breakdown:     breakdown,
		Subtotal:      subtotal,
		Taxes:         taxes,
		Fees:          p.ServiceFee,
		GrandTotal:    grandTotal,
		PricePerNight: perNight,
	}, nil
}

// =============================================================================
// MATCHER HELPERS
// =============================================================================

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, wd := range days {
		if wd == d {
			return true
		}
	}
	return false
}

func anyWindowContains(windows []SeasonWindow, d Date) bool {
	for _, w := range windows {
		if w.Contains(d) {
			return true
		}
	}
	return false
}

func containsMonth(months []time.Month, m time.Month) bool {
	for _, mm := range months {
		if mm == m {
			return true
		}
	}
	return false
}

func containsCategory(cats []RoomCategory, c RoomCategory) bool {
	for _, cc := range cats {
		if cc == c {
			return true
		}
	}
	return false
}
