package utils

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any amount, FormatCurrency should:
// 1. Start with $ (or -$ for negative)
// 2. Have exactly 2 decimal places
// 3. Group the integer part in threes
// 4. Preserve the numeric value when parsed back
func TestPropertyCurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatCurrency produces valid grouped format", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return true
			}
			if math.Abs(amount) > 1e12 {
				return true
			}

			formatted := FormatCurrency(amount)

			if amount >= 0 {
				if !strings.HasPrefix(formatted, "$") {
					t.Logf("Expected $ prefix for %f, got %s", amount, formatted)
					return false
				}
			} else if !strings.HasPrefix(formatted, "-$") {
				t.Logf("Expected -$ prefix for %f, got %s", amount, formatted)
				return false
			}

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}

			intPart := strings.TrimPrefix(strings.TrimPrefix(parts[0], "-"), "$")
			groups := strings.Split(intPart, ",")
			for i, g := range groups {
				if i == 0 {
					if len(g) < 1 || len(g) > 3 {
						return false
					}
				} else if len(g) != 3 {
					t.Logf("Bad grouping for %f: %s", amount, formatted)
					return false
				}
			}

			plain := strings.ReplaceAll(strings.ReplaceAll(formatted, ",", ""), "$", "")
			parsed, err := strconv.ParseFloat(plain, 64)
			if err != nil {
				return false
			}
			return math.Abs(parsed-amount) <= 0.005+math.Abs(amount)*1e-9
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatPnL signs gains explicitly", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatPnL(amount)
			if amount > 0 {
				return strings.HasPrefix(formatted, "+$")
			}
			if amount < 0 {
				return strings.HasPrefix(formatted, "-$")
			}
			return strings.HasPrefix(formatted, "$")
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

func TestFormatCompact(t *testing.T) {
	cases := map[float64]string{
		12_345_678: "12.3M",
		-4_500:     "-4.5K",
		999:        "999.00",
		0:          "0.00",
	}
	for in, want := range cases {
		if got := FormatCompact(in); got != want {
			t.Errorf("FormatCompact(%v) = %q, want %q", in, got, want)
		}
	}
}
