package utils

import "fmt"

// Monetary amounts are carried as int64 paise everywhere (100 paise = ₹1),
// so repeated small transactions never accumulate float rounding drift.

// RoundPaiseToRupee rounds a paise amount to the nearest whole rupee,
// half away from zero. Bill totals are always whole rupees.
func RoundPaiseToRupee(paise int64) int64 {
	if paise >= 0 {
		return ((paise + 50) / 100) * 100
	}
	return -((-paise + 50) / 100) * 100
}

// RupeesToPaise converts a whole-rupee amount to paise.
func RupeesToPaise(rupees int64) int64 {
	return rupees * 100
}

// FormatRupees renders a paise amount for narratives and receipts,
// e.g. 50000 -> "₹500", 50050 -> "₹500.50".
func FormatRupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	if paise%100 == 0 {
		return fmt.Sprintf("%s₹%d", sign, paise/100)
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, paise/100, paise%100)
}
