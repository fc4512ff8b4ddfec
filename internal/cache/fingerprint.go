package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/AdamSoufiane/connectsearch/internal/models"
)

// Fingerprint derives the cache key for a search: sha256 over the canonical
// JSON of the normalized criteria. Criteria differing only in case or date
// precision fingerprint identically.
func Fingerprint(c models.SearchCriteria, maxConnections int) string {
	n := c.Normalized()

	keyData := struct {
		Origin         string `json:"origin"`
		Destination    string `json:"destination"`
		DateFrom       string `json:"date_from"`
		DateTo         string `json:"date_to"`
		SeatClass      string `json:"seat_class"`
		RoundTrip      bool   `json:"round_trip"`
		ReturnDate     string `json:"return_date"`
		MaxConnections int    `json:"max_connections"`
	}{
		Origin:         n.Origin,
		Destination:    n.Destination,
		DateFrom:       n.Dates.Start.Format(models.DateFormat),
		DateTo:         n.Dates.End.Format(models.DateFormat),
		SeatClass:      string(n.SeatClass),
		RoundTrip:      n.RoundTrip,
		MaxConnections: maxConnections,
	}
	if n.ReturnDate != nil {
		keyData.ReturnDate = n.ReturnDate.Format(models.DateFormat)
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(hash[:])
}
