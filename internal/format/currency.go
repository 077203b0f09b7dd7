package format

import (
	"math"
	"strconv"
	"strings"
)

const rupee = "₹"

const (
	crore    = 10000000
	lakh     = 100000
	thousand = 1000
)

// INR formats amount as whole rupees with Indian digit grouping, e.g. ₹1,23,457.
func INR(amount float64) string {
	rounded := math.Round(amount)
	if rounded < 0 {
		return "-" + rupee + groupIndian(strconv.FormatFloat(-rounded, 'f', 0, 64))
	}
	return rupee + groupIndian(strconv.FormatFloat(rounded, 'f', 0, 64))
}

// CompactINR abbreviates large amounts: ₹1.2Cr, ₹3.5L, ₹50.0K.
func CompactINR(amount float64) string {
	switch {
	case amount >= crore:
		return rupee + strconv.FormatFloat(amount/crore, 'f', 1, 64) + "Cr"
	case amount >= lakh:
		return rupee + strconv.FormatFloat(amount/lakh, 'f', 1, 64) + "L"
	case amount >= thousand:
		return rupee + strconv.FormatFloat(amount/thousand, 'f', 1, 64) + "K"
	}
	return INRSimple(amount)
}

// INRSimple prefixes the rupee symbol and keeps up to three fraction digits.
func INRSimple(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	text := strconv.FormatFloat(math.Round(amount*1000)/1000, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(text, ".")
	out := sign + rupee + groupIndian(intPart)
	if hasFrac {
		out += "." + fracPart
	}
	return out
}

// groupIndian inserts separators after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
