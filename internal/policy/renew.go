package policy

import (
	"errors"
	"fmt"

	"github.com/iudanet/wealthvault/internal/models"
)

// ErrNoDueDate is returned when renewing a record without a next due date.
var ErrNoDueDate = errors.New("record has no next due date")

// Renew records one paid premium: the next due date moves forward by one payment period.
func Renew(r *models.PolicyRecord) error {
	if r.NextDueDate.IsZero() {
		return ErrNoDueDate
	}
	if !r.PaymentFrequency.Valid() {
		return fmt.Errorf("cannot renew with frequency %q", r.PaymentFrequency)
	}
	r.NextDueDate = r.NextDueDate.AddMonths(r.PaymentFrequency.Months())
	return nil
}
