package currency

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Rates maps an ISO 4217 code to the number of units of that currency per
// one unit of a common base. Values are immutable once parsed, so a Rates
// value is a consistent snapshot for the lifetime of a request.
type Rates map[string]decimal.Decimal

// Provider hands out the current rate snapshot.
type Provider interface {
	Rates(ctx context.Context) (Rates, error)
}

// ParseRates reads "USD:1,INR:83.12". Codes are upper-cased; rates must be
// positive.
func ParseRates(s string) (Rates, error) {
	rates := Rates{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		code, value, ok := strings.Cut(pair, ":")
		code = strings.ToUpper(strings.TrimSpace(code))
		if !ok || code == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRate, pair)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRate, pair, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("%w: %q must be positive", ErrInvalidRate, pair)
		}

		rates[code] = rate
	}
	return rates, nil
}

// Convert moves amount from one currency to another and rounds to cents.
func (r Rates) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount.Round(2), nil
	}

	fromRate, ok := r[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, from)
	}
	toRate, ok := r[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, to)
	}

	return amount.Mul(toRate).DivRound(fromRate, 8).Round(2), nil
}

func (r Rates) Codes() []string {
	codes := make([]string, 0, len(r))
	for c := range r {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

type staticProvider struct {
	rates Rates
}

// NewStaticProvider serves a fixed table, typically parsed from config.
func NewStaticProvider(rates Rates) Provider {
	cp := make(Rates, len(rates))
	for k, v := range rates {
		cp[k] = v
	}
	return &staticProvider{rates: cp}
}

func (p *staticProvider) Rates(ctx context.Context) (Rates, error) {
	return p.rates, nil
}
