package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// GenerateReceiptNumber builds the human-facing number printed on a purchase
// receipt: RCPT-YYYYMMDD-<order prefix>-RRRR.
func GenerateReceiptNumber(orderID string, paidAt time.Time) string {
	prefix := strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	if prefix == "" {
		prefix = "NOORDER"
	}

	// 4-digit cryptographic random
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		n = big.NewInt(paidAt.UnixNano() % 10000)
	}

	return fmt.Sprintf(
		"RCPT-%s-%s-%04d",
		paidAt.UTC().Format("20060102"),
		prefix,
		n.Int64(),
	)
}
