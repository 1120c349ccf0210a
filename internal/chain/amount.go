package chain

import (
	"math/big"
	"strings"
)

// ParseDecimalAmount parses a decimal amount string to a big.Int in atomic
// units with the given decimal places. Fractional digits beyond the chain's
// precision are truncated toward zero, never rounded up: a conversion must
// not produce an amount larger than what the user typed.
//
//nolint:gocognit,gocyclo // Decimal parsing requires sequential validation steps
func ParseDecimalAmount(amount string, decimalPlaces int) (*big.Int, bool) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, false
	}

	// Negative amounts are never valid spend inputs.
	if strings.HasPrefix(amount, "-") {
		return nil, false
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return nil, false
	}

	intPart := parts[0]
	decPart := ""
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if intPart == "" {
		intPart = "0"
	}
	for _, c := range intPart {
		if c < '0' || c > '9' {
			return nil, false
		}
	}
	intVal, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return nil, false
	}

	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimalPlaces)), nil)
	result := new(big.Int).Mul(intVal, multiplier)

	if decPart != "" {
		for _, c := range decPart {
			if c < '0' || c > '9' {
				return nil, false
			}
		}

		// Pad to precision, then truncate: digits past the chain's
		// decimals are dropped, not rounded.
		for len(decPart) < decimalPlaces {
			decPart += "0"
		}
		decPart = decPart[:decimalPlaces]

		if decPart != "" {
			decVal, ok2 := new(big.Int).SetString(decPart, 10)
			if !ok2 {
				return nil, false
			}
			result = result.Add(result, decVal)
		}
	}

	return result, true
}

// ToAtomic converts a human-readable decimal amount to an atomic integer
// string. Invalid or empty input yields "0", never an error: display flows
// must not abort because one field failed to parse.
func ToAtomic(amount string, decimalPlaces int) string {
	v, ok := ParseDecimalAmount(amount, decimalPlaces)
	if !ok {
		return "0"
	}
	return v.String()
}

// ToAtomicInt is ToAtomic returning the big.Int directly, with zero for
// invalid input.
func ToAtomicInt(amount string, decimalPlaces int) *big.Int {
	v, ok := ParseDecimalAmount(amount, decimalPlaces)
	if !ok {
		return new(big.Int)
	}
	return v
}

// FormatDecimalAmount converts a big.Int in atomic units to a human-readable
// string with the given decimal places. Trailing zeros after the decimal
// point are removed. A nil or zero amount returns "0".
func FormatDecimalAmount(amount *big.Int, decimalPlaces int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	str := amount.String()

	for len(str) <= decimalPlaces {
		str = "0" + str
	}

	decimalPos := len(str) - decimalPlaces
	result := str[:decimalPos]
	if decimalPlaces > 0 {
		result += "." + str[decimalPos:]

		for len(result) > 1 && result[len(result)-1] == '0' && result[len(result)-2] != '.' {
			result = result[:len(result)-1]
		}
		result = strings.TrimSuffix(result, ".0")
	}

	return result
}

// FromAtomic converts an atomic integer string to a human-readable decimal
// string. Zero or unparseable input returns "0".
func FromAtomic(atomic string, decimalPlaces int) string {
	v, ok := new(big.Int).SetString(strings.TrimSpace(atomic), 10)
	if !ok {
		return "0"
	}
	return FormatDecimalAmount(v, decimalPlaces)
}

// ToDisplay formats a decimal amount for UI display with at most
// maxFractionDigits fractional digits. Excess digits are truncated, not
// rounded. Invalid input yields "0".
func ToDisplay(amount string, decimalPlaces, maxFractionDigits int) string {
	v, ok := ParseDecimalAmount(amount, decimalPlaces)
	if !ok {
		return "0"
	}
	s := FormatDecimalAmount(v, decimalPlaces)

	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s
	}
	frac := s[dot+1:]
	if len(frac) <= maxFractionDigits {
		return s
	}
	if maxFractionDigits == 0 {
		return s[:dot]
	}
	s = s[:dot+1+maxFractionDigits]
	// Re-trim zeros exposed by the cut.
	for len(s) > 1 && s[len(s)-1] == '0' && s[len(s)-2] != '.' {
		s = s[:len(s)-1]
	}
	s = strings.TrimSuffix(s, ".0")
	return s
}
