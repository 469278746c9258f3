/*
Package factory provides JSON to Go rate-policy conversion.

PURPOSE:
  Converts JSON tariff definitions into booking.RatePolicy objects. This
  enables rate configuration without code changes - revenue managers can
  define seasonal windows and surcharges in JSON, and the factory creates
  the proper Go structs.

WHY JSON?
  - Non-developers can adjust tariffs
  - Easy integration with an admin UI
  - Version control for rate definitions
  - Database storage of rate configs

JSON SCHEMA:
  {
    "name": "Standard Tariff",
    "tax_rate": 0.12,
    "service_fee": 25,
    "rules": [
      {"label": "Weekend Rate (+30%)", "multiplier": 1.3,
       "weekdays": ["Friday", "Saturday"]},
      {"label": "Holiday Rate (+50%)", "multiplier": 1.5,
       "windows": [{"from": "12-20", "to": "12-31"},
                   {"from": "01-01", "to": "01-05"}]},
      {"label": "Peak Season (+20%)", "multiplier": 1.2,
       "months": [6, 7, 8]},
      {"label": "Premium Category (+10%)", "multiplier": 1.1,
       "categories": ["Suite", "Presidential"]}
    ]
  }

USAGE:
  f := factory.NewRateFactory()
  policy, err := f.ParseRatePolicy(jsonString)

  // Or the canonical default in JSON form:
  policy, err := f.ParseRatePolicy(factory.DefaultTariffJSON())

SEE ALSO:
  - booking/pricing.go: RatePolicy type and quote computation
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karanyede/luxestay/booking"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RatePolicyJSON is the JSON representation of a tariff.
type RatePolicyJSON struct {
	Name       string         `json:"name"`
	TaxRate    float64        `json:"tax_rate"`
	ServiceFee float64        `json:"service_fee"`
	Rules      []RateRuleJSON `json:"rules"`
}

// RateRuleJSON represents one tariff rule.
type RateRuleJSON struct {
	Label      string       `json:"label"`
	Multiplier float64      `json:"multiplier"`
	Weekdays   []string     `json:"weekdays,omitempty"`
	Windows    []WindowJSON `json:"windows,omitempty"`
	Months     []int        `json:"months,omitempty"`
	Categories []string     `json:"categories,omitempty"`
}

// WindowJSON is a year-agnostic "MM-DD" window, inclusive on both ends.
type WindowJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// =============================================================================
// FACTORY
// =============================================================================

type RateFactory struct{}

func NewRateFactory() *RateFactory {
	return &RateFactory{}
}

// ParseRatePolicy converts a JSON tariff definition into a booking.RatePolicy.
func (f *RateFactory) ParseRatePolicy(jsonStr string) (*booking.RatePolicy, error) {
	var pj RatePolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("invalid rate policy JSON: %w", err)
	}
	if len(pj.Rules) == 0 {
		return nil, fmt.Errorf("rate policy %q has no rules", pj.Name)
	}

	policy := booking.RatePolicy{
		Name:       pj.Name,
		TaxRate:    decimal.NewFromFloat(pj.TaxRate),
		ServiceFee: decimal.NewFromFloat(pj.ServiceFee),
	}

	for i, rj := range pj.Rules {
		rule, err := f.parseRule(rj)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%q): %w", i, rj.Label, err)
		}
		policy.Rules = append(policy.Rules, rule)
	}

	return &policy, nil
}

func (f *RateFactory) parseRule(rj RateRuleJSON) (booking.RateRule, error) {
	if rj.Multiplier <= 0 {
		return booking.RateRule{}, fmt.Errorf("multiplier must be positive, got %v", rj.Multiplier)
	}

	rule := booking.RateRule{
		Label:      rj.Label,
		Multiplier: decimal.NewFromFloat(rj.Multiplier),
	}

	for _, name := range rj.Weekdays {
		wd, err := parseWeekday(name)
		if err != nil {
			return booking.RateRule{}, err
		}
		rule.Weekdays = append(rule.Weekdays, wd)
	}

	for _, wj := range rj.Windows {
		window, err := parseWindow(wj)
		if err != nil {
			return booking.RateRule{}, err
		}
		rule.Windows = append(rule.Windows, window)
	}

	for _, m := range rj.Months {
		if m < 1 || m > 12 {
			return booking.RateRule{}, fmt.Errorf("invalid month %d", m)
		}
		rule.Months = append(rule.Months, time.Month(m))
	}

	for _, c := range rj.Categories {
		rule.Categories = append(rule.Categories, booking.RoomCategory(c))
	}

	return rule, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	switch strings.ToLower(name) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("invalid weekday %q", name)
	}
}

func parseWindow(wj WindowJSON) (booking.SeasonWindow, error) {
	fromMonth, fromDay, err := parseMonthDay(wj.From)
	if err != nil {
		return booking.SeasonWindow{}, fmt.Errorf("window from: %w", err)
	}
	toMonth, toDay, err := parseMonthDay(wj.To)
	if err != nil {
		return booking.SeasonWindow{}, fmt.Errorf("window to: %w", err)
	}
	return booking.SeasonWindow{
		FromMonth: fromMonth, FromDay: fromDay,
		ToMonth: toMonth, ToDay: toDay,
	}, nil
}

func parseMonthDay(s string) (time.Month, int, error) {
	t, err := time.Parse("01-02", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month-day %q (use MM-DD): %w", s, err)
	}
	return t.Month(), t.Day(), nil
}

// =============================================================================
// CANONICAL DEFINITIONS
// =============================================================================

// DefaultTariffJSON returns the standard tariff in JSON form. Parsing it
// yields the same policy as booking.DefaultRatePolicy().
func DefaultTariffJSON() string {
	return `{
		"name": "Standard Tariff",
		"tax_rate": 0.12,
		"service_fee": 25,
		"rules": [
			{"label": "Weekend Rate (+30%)", "multiplier": 1.3,
			 "weekdays": ["Friday", "Saturday"]},
			{"label": "Holiday Rate (+50%)", "multiplier": 1.5,
			 "windows": [{"from": "12-20", "to": "12-31"},
			             {"from": "01-01", "to": "01-05"}]},
			{"label": "Peak Season (+20%)", "multiplier": 1.2,
			 "months": [6, 7, 8]},
			{"label": "Premium Category (+10%)", "multiplier": 1.1,
			 "categories": ["Suite", "Presidential"]}
		]
	}`
}
