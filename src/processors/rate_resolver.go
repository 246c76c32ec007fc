package processors

import (
	"github.com/username/catcost/backend/src/models"
)

// RateResolver answers rate lookups against one immutable snapshot,
// applying the hierarchy: client-specific first, then the translator's
// general rate, then not-found. It is a pure lookup; calling it twice
// with the same arguments against the same snapshot returns the same
// record.
type RateResolver struct {
	snapshot *models.RateSnapshot
}

func NewRateResolver(snapshot *models.RateSnapshot) *RateResolver {
	return &RateResolver{snapshot: snapshot}
}

// Resolve returns the applicable rate for the key, or a
// *models.RateNotFoundError naming the exact missing key. The caller
// decides whether a system default may stand in.
func (r *RateResolver) Resolve(translatorID int64, clientID *int64, pairID int64, cat models.MatchCategory) (models.Rate, error) {
	if clientID != nil {
		if rate, ok := r.snapshot.Lookup(translatorID, clientID, pairID, cat); ok {
			return rate, nil
		}
	}
	if rate, ok := r.snapshot.Lookup(translatorID, nil, pairID, cat); ok {
		return rate, nil
	}
	return models.Rate{}, &models.RateNotFoundError{
		TranslatorID:   translatorID,
		ClientID:       clientID,
		LanguagePairID: pairID,
		Category:       cat,
	}
}
