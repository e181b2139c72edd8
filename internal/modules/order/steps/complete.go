package steps

import (
	"time"

	"github.com/kbrou/chatorder-backend/internal/catalog"
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
)

type CompleteDeps struct {
	Catalog *catalog.Catalog
	Now     func() time.Time
}

// DetectCompletion returns the order snapshot when every required field is
// collected and valid, nil otherwise. Evaluated on every turn, not only
// after a "last field" trigger, so out-of-order collection still completes.
// The snapshot is deterministic: re-running on the same state yields the
// same record.
func DetectCompletion(deps CompleteDeps, fields types.OrderFields) *SnapshotData {
	if !fields.Complete() {
		return nil
	}

	estimate := deps.Catalog.DeliveryEstimate(catalog.Zone{
		Name:     fields.Zone.Name,
		Cost:     fields.Zone.Cost,
		Category: fields.Zone.Category,
	}, deps.Now())

	return &SnapshotData{
		PhotoDescription: fields.Photo.Description,
		ProductName:      fields.Product.Name,
		Amount:           fields.Payment.Amount,
		Currency:         currencyOrDefault(fields.Payment.Currency),
		ZoneName:         fields.Zone.Name,
		ZoneCost:         fields.Zone.Cost,
		ZoneCategory:     fields.Zone.Category,
		Phone:            fields.Phone.Number,
		DeliveryEstimate: estimate,
	}
}
