package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AdamSoufiane/connectsearch/internal/models"
)

func fpCriteria() models.SearchCriteria {
	return models.SearchCriteria{
		Origin:      "JFK",
		Destination: "LAX",
		Dates: models.NewDateRange(
			time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
		),
		SeatClass: models.SeatClassEconomy,
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	assert.Equal(t, Fingerprint(fpCriteria(), 1), Fingerprint(fpCriteria(), 1))
}

func TestFingerprint_NormalizationFoldsEquivalentCriteria(t *testing.T) {
	a := fpCriteria()

	b := fpCriteria()
	b.Origin = "jfk"
	b.Destination = " lax "
	b.SeatClass = "ECONOMY"
	// sub-day precision must not change the key
	b.Dates.Start = b.Dates.Start.Add(9 * time.Hour)

	assert.Equal(t, Fingerprint(a, 1), Fingerprint(b, 1))
}

func TestFingerprint_DistinguishesCriteria(t *testing.T) {
	base := Fingerprint(fpCriteria(), 1)

	other := fpCriteria()
	other.SeatClass = models.SeatClassBusiness
	assert.NotEqual(t, base, Fingerprint(other, 1))

	assert.NotEqual(t, base, Fingerprint(fpCriteria(), 2))

	rt := fpCriteria()
	rt.RoundTrip = true
	rd := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	rt.ReturnDate = &rd
	assert.NotEqual(t, base, Fingerprint(rt, 1))
}
