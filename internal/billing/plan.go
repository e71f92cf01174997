package billing

import (
	"github.com/clinicdesk/clinic-scheduling/internal/clinic"
)

// MapProviderStatus translates the payment provider's subscription status
// vocabulary into our plan-status enum. The second return is false for
// statuses we do not recognize; callers log and ignore those.
func MapProviderStatus(s string) (clinic.PlanStatus, bool) {
	switch s {
	case "active":
		return clinic.PlanActive, true
	case "trialing":
		return clinic.PlanTrial, true
	case "canceled", "cancelled":
		return clinic.PlanCancelled, true
	case "unpaid", "past_due", "incomplete_expired":
		return clinic.PlanExpired, true
	default:
		return "", false
	}
}
