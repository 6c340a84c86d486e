package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFormatReport_Layout checks the fixed column layout: right-aligned
// 7-character strikes, two-decimal leg prices, and the ATM marker.
func TestFormatReport_Layout(t *testing.T) {
	now := time.Date(2025, 10, 3, 9, 30, 0, 0, time.UTC)
	chain := BuildChain(19245.75, 5, 50)
	msg := FormatReport("NIFTY50", 19245.75, chain, now)

	assert.Contains(t, msg, "*NIFTY50 Option Chain Update*")
	assert.Contains(t, msg, "₹19245.75")
	assert.Contains(t, msg, "2025-10-03 09:30:00")
	assert.Contains(t, msg, "Strike")

	// ATM row: marker directly before the 7-wide strike column.
	assert.Contains(t, msg, "➤  19250       0.00       0.00")
	// A non-ATM row keeps the space marker.
	assert.Contains(t, msg, "   19200       0.00       0.00")
}

// TestFormatReport_RowCount verifies one line per chain row inside the code
// block plus the header and separator.
func TestFormatReport_RowCount(t *testing.T) {
	now := time.Now()
	chain := BuildChain(17650, 5, 50)
	msg := FormatReport("NIFTY50", 17650, chain, now)

	start := strings.Index(msg, "```")
	end := strings.LastIndex(msg, "```")
	require.Greater(t, end, start)
	block := strings.Trim(msg[start+3:end], "\n")
	lines := strings.Split(block, "\n")
	assert.Len(t, lines, 13, "header + separator + 11 rows")
}

// TestFormatReport_Idempotent: identical inputs and render time yield
// byte-identical output; only the timestamp line may differ for a different
// render time.
func TestFormatReport_Idempotent(t *testing.T) {
	chain := BuildChain(17650, 5, 50)
	t1 := time.Date(2025, 10, 3, 9, 30, 0, 0, time.UTC)
	t2 := time.Date(2025, 10, 3, 9, 31, 0, 0, time.UTC)

	a := FormatReport("TCS", 17650, chain, t1)
	b := FormatReport("TCS", 17650, chain, t1)
	assert.Equal(t, a, b)

	c := FormatReport("TCS", 17650, chain, t2)
	linesA := strings.Split(a, "\n")
	linesC := strings.Split(c, "\n")
	require.Equal(t, len(linesA), len(linesC))
	for i := range linesA {
		if strings.Contains(linesA[i], "*Time:*") {
			assert.NotEqual(t, linesA[i], linesC[i])
			continue
		}
		assert.Equal(t, linesA[i], linesC[i], "line %d must not depend on render time", i)
	}
}
