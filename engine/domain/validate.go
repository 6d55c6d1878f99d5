package domain

import "strings"

// ValidateProduct validates a ProductRecord at the ingestion boundary.
// Catalog rows arrive as heterogeneous scraped payloads; this is the named
// field mapping gate that keeps malformed rows out of the stores.
func ValidateProduct(p ProductRecord) error {
	if strings.TrimSpace(p.ID) == "" {
		return NewValidationError("product_id", p.ID, ErrMissingProductID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("material_name", p.Name, ErrMissingName)
	}
	if strings.TrimSpace(p.UnitPrice) == "" {
		return NewValidationError("unit_price", p.UnitPrice, ErrMissingUnitPrice)
	}
	if p.QualityScore < 0 {
		return NewValidationError("quality_score", p.Name, ErrNegativeQuality)
	}
	return nil
}

// ValidateTask validates a split-out task.
func ValidateTask(t Task) error {
	if t.AreaM2 != nil && *t.AreaM2 < 0 {
		return NewValidationError("area_m2", t.TaskName, ErrNegativeArea)
	}
	return nil
}

// ValidateFeedback validates a feedback submission.
func ValidateFeedback(f Feedback) error {
	if strings.TrimSpace(f.TaskID) == "" {
		return NewValidationError("task_id", f.TaskID, ErrMissingTaskID)
	}
	if strings.TrimSpace(f.QuoteID) == "" {
		return NewValidationError("quote_id", f.QuoteID, ErrMissingQuoteID)
	}
	if !ValidUserTypes[f.UserType] {
		return NewValidationError("user_type", string(f.UserType), ErrInvalidUserType)
	}
	if strings.TrimSpace(f.Verdict) == "" {
		return NewValidationError("verdict", f.Verdict, ErrMissingVerdict)
	}
	return nil
}
