package validation

import (
	"bariq/internal/models"
)

// NationalID validates a Saudi national or iqama ID.
func (v *Validator) NationalID(field, id string) {
	v.Check(nationalIDRegex.MatchString(id), field, "must be a valid 10-digit national ID")
}

// Items validates a transaction's purchased item lines.
func (v *Validator) Items(field string, items []models.TransactionItem) {
	if len(items) == 0 {
		v.AddError(field, "must contain at least one item")
		return
	}
	if len(items) > MaxItemsPerSale {
		v.AddError(field, "too many items")
		return
	}
	for _, item := range items {
		if item.Name == "" || item.Quantity <= 0 || item.UnitPrice <= 0 {
			v.AddError(field, "every item needs a name, positive quantity and positive unit price")
			return
		}
	}
}
