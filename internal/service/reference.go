package service

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

const bookingRefPrefix = "AIC"

// BookingReference builds the externally visible reference code:
// constant prefix, six-digit date stamp, and a four-character uppercase
// suffix hashed from a fresh random seed, e.g. AIC2505117F2A.
// Collisions are possible but not probed; the UNIQUE constraint on the
// column rejects the insert if one ever lands.
func BookingReference(now time.Time) string {
	sum := md5.Sum([]byte(uuid.NewString()))
	suffix := strings.ToUpper(hex.EncodeToString(sum[:2]))
	return bookingRefPrefix + now.Format("060102") + suffix
}

// PaymentReference builds a gateway-style payment reference:
// PAY_ followed by sixteen uppercase hex characters.
func PaymentReference() (string, error) {
	byt := make([]byte, 8)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return "PAY_" + strings.ToUpper(hex.EncodeToString(byt)), nil
}
