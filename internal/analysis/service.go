package analysis

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"propwriter/server/internal/models"
)

const dataSourceLabel = "Redfin Market Tracker"

// ErrMissingZipCode is returned when Analyze is called without a ZIP code.
var ErrMissingZipCode = errors.New("zip code is required")

// MarketStore is the read side of the record store.
type MarketStore interface {
	GetLatestRecord(zipCode, propertyType string) (*models.MarketRecord, error)
}

// Service assembles a MarketAnalysis from the latest stored record for a
// ZIP code. A nil result with a nil error means no market data is available,
// which is an expected outcome, not a failure.
type Service struct {
	store  MarketStore
	logger *logrus.Logger
}

func NewService(store MarketStore, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Analyze looks up the latest record for (zipCode, propertyType) and derives
// the demand score and narrative from it. An empty propertyType defaults to
// "All Residential"; a specific type with no data falls back to the
// "All Residential" aggregate for the same ZIP.
func (s *Service) Analyze(zipCode, propertyType string) (*models.MarketAnalysis, error) {
	if zipCode == "" {
		return nil, ErrMissingZipCode
	}
	if propertyType == "" {
		propertyType = models.PropertyTypeAllResidential
	}

	record := s.lookup(zipCode, propertyType)
	if record == nil && propertyType != models.PropertyTypeAllResidential {
		record = s.lookup(zipCode, models.PropertyTypeAllResidential)
	}
	if record == nil {
		return nil, nil
	}

	score := DemandScore(record)
	location := formatLocation(zipCode, record.StateCode)

	return &models.MarketAnalysis{
		Location:           location,
		MedianPrice:        floatOrZero(record.MedianSalePrice),
		PriceChange:        floatOrZero(record.MedianSalePriceYoY) * 100,
		DaysOnMarket:       intOrZero(record.MedianDaysOnMarket),
		Inventory:          intOrZero(record.Inventory),
		DemandScore:        score,
		Recommendations:    Recommendations(record, location),
		KeyInsights:        KeyInsights(record, score),
		CompetitiveFactors: CompetitiveFactors(record),
		DataFreshness:      record.PeriodEnd,
		DataSource:         dataSourceLabel,
	}, nil
}

// lookup collapses store errors to "no record": absence of market data is an
// expected outcome and raw store errors never reach the read path's callers.
func (s *Service) lookup(zipCode, propertyType string) *models.MarketRecord {
	record, err := s.store.GetLatestRecord(zipCode, propertyType)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"zip_code":      zipCode,
			"property_type": propertyType,
		}).Error("Failed to look up market record")
		return nil
	}
	return record
}

// formatLocation renders "<zip>, <state code>". With no state code the
// trailing space is trimmed and the result keeps its bare comma ("90210,");
// downstream formatting depends on this shape.
func formatLocation(zipCode string, stateCode *string) string {
	state := ""
	if stateCode != nil {
		state = *stateCode
	}
	return strings.TrimSpace(zipCode + ", " + state)
}
