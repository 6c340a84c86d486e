package main

import (
	"fmt"
	"strings"
	"time"
)

// FormatReport renders the chain update message delivered to chat. Layout is
// fixed: strikes right-aligned to 7 columns, leg prices to two decimals, and a
// ➤ marker on the at-the-money row. The timestamp comes from the caller so the
// output is fully deterministic for a given render time.
func FormatReport(symbol string, spot float64, chain []ChainRow, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔔 *%s Option Chain Update*\n", symbol))
	sb.WriteString(fmt.Sprintf("📊 *Spot Price:* ₹%.2f\n", spot))
	sb.WriteString(fmt.Sprintf("⏰ *Time:* %s\n", now.Format("2006-01-02 15:04:05")))
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━\n\n")

	sb.WriteString("```\n")
	sb.WriteString(fmt.Sprintf("%7s %10s %10s\n", "Strike", "CE LTP", "PE LTP"))
	sb.WriteString(strings.Repeat("-", 35) + "\n")
	for _, row := range chain {
		marker := " "
		if row.ATM {
			marker = "➤"
		}
		sb.WriteString(fmt.Sprintf("%s%7d %10.2f %10.2f\n", marker, row.Strike, row.Call.LTP, row.Put.LTP))
	}
	sb.WriteString("```\n")

	return sb.String()
}
