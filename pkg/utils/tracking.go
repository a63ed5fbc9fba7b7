package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateTrackingID returns a new public tracking identifier, e.g.
// ZAP-20260829-7KQ2FN. The random suffix avoids ambiguous characters.
func GenerateTrackingID() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(trackingAlphabet))))
		if err != nil {
			// crypto/rand only fails if the system source is broken;
			// fall back to a time-derived index
			suffix[i] = trackingAlphabet[time.Now().UnixNano()%int64(len(trackingAlphabet))]
			continue
		}
		suffix[i] = trackingAlphabet[n.Int64()]
	}

	return fmt.Sprintf("ZAP-%s-%s", time.Now().UTC().Format("20060102"), string(suffix))
}
