package domain

// TenantCategory partitions accounts into the two user populations.
type TenantCategory string

const (
	TenantAgency TenantCategory = "agency"
	TenantPublic TenantCategory = "public"
)

// agencyRoles and publicRoles are the fixed role sets attached to custom
// claims. Order is stable so repeated registrations produce identical claims.
var agencyRoles = []string{
	"as:event-reader",
	"dm:document-reviewer",
	"dm:document-uploader",
	"um:reader",
	"um:admin",
	"wm:agency-profile-admin",
	"wm:transaction-admin",
	"wm:transaction-config-admin",
	"ns:notification-admin",
	"um:agency-profile-admin",
	"um:employer-admin",
	"um:individual-admin",
}

var publicRoles = []string{
	"dm:document-uploader",
	"um:basic",
	"wm:employer-user",
	"wm:individual-user",
	"wm:transaction-submitter",
	"wm:public-profile-user",
	"um:employer-user",
	"um:individual-user",
	"um:public-profile-user",
	"as:profile-event-reader",
}

// Classifier maps an account's tenant id to a TenantCategory.
type Classifier struct {
	// AgencyTenantID is the one tenant recognized as agency. When empty,
	// every account classifies as public.
	AgencyTenantID string
}

// Classify is pure and total: the configured agency tenant id maps to
// TenantAgency, every other value (including "") maps to TenantPublic.
func (c Classifier) Classify(tenantID string) TenantCategory {
	if tenantID != "" && tenantID == c.AgencyTenantID {
		return TenantAgency
	}
	return TenantPublic
}

// RolesFor returns a copy of the fixed role set for the category.
func RolesFor(category TenantCategory) []string {
	var roles []string
	switch category {
	case TenantAgency:
		roles = agencyRoles
	default:
		roles = publicRoles
	}
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}
