// Package collections contains data structures and constants relating to Firestore collections and their entry
// structures/keys/values, as well as structs that define what is returned to clients.
package collections

const (
	// Users is the top-level collection of user accounts.
	Users = "users"
	// Teams is the top-level collection of scheduling workspaces.
	Teams = "teams"

	// StaffCollection holds the people scheduled within a team. A Staff may or may not
	// have a linked User account; the link is by email.
	StaffCollection = "staff"
	// ShiftsCollection holds a team's shift documents.
	ShiftsCollection = "shifts"
	// ConstraintRequestsCollection holds time-off/shift-constraint submissions.
	ConstraintRequestsCollection = "constraint_requests"
	// SettingsCollection holds a team's general settings documents.
	SettingsCollection = "settings"
	// ShiftTimeSettingsCollection holds a team's shift time configuration.
	ShiftTimeSettingsCollection = "shift_time_settings"
	// MonthlyRequirementsCollection holds a team's monthly staffing requirements.
	MonthlyRequirementsCollection = "monthly_requirements"

	// RoleAdmin marks a user as an administrator of their team.
	RoleAdmin = "admin"
	// RoleMember marks a regular team member.
	RoleMember = "member"

	// TeamIDKey is the standard key for team ID fields in our Firestore collections.
	TeamIDKey = "teamId"
	// RoleKey is the key for the role field of a user document.
	RoleKey = "role"
	// EmailKey is the standard key for email fields.
	EmailKey = "email"
	// FCMTokenKey is the key for the push delivery token on a user document.
	FCMTokenKey = "fcmToken"

	// Notification kinds, keyed into a user's notificationSettings map.
	// Absence of a kind defaults to enabled; only an explicit false opts out.
	KindRequestCreated  = "requestCreated"
	KindRequestApproved = "requestApproved"
	KindRequestRejected = "requestRejected"

	// Constraint request statuses.
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	// Constraint request types.
	TypeSpecificDay       = "specificDay"
	TypeWeekday           = "weekday"
	TypeShiftType         = "shiftType"
	TypeMaxShiftsPerMonth = "maxShiftsPerMonth"
)

// TeamSubcollections is the full set of subcollections purged on team teardown.
// The teardown handler iterates this list and nothing else; keep it the single
// source of truth when a new subcollection is added under a team document.
var TeamSubcollections = []string{
	StaffCollection,
	ShiftsCollection,
	ConstraintRequestsCollection,
	SettingsCollection,
	ShiftTimeSettingsCollection,
	MonthlyRequirementsCollection,
}

// UserEntry represents a document in the users collection. The document ID is
// the identity-provider account ID.
type UserEntry struct {
	TeamID string `firestore:"teamId"`
	Role   string `firestore:"role"`
	Email  string `firestore:"email"`
	// FCMToken is the push delivery token; empty means no device registered.
	FCMToken string `firestore:"fcmToken"`
	// NotificationSettings maps a notification kind to an enable flag.
	NotificationSettings map[string]bool `firestore:"notificationSettings"`
}

// WantsNotification reports whether the user should receive notifications of
// the given kind. A missing entry defaults to enabled; only an explicit false
// opts out.
func (u *UserEntry) WantsNotification(kind string) bool {
	if u.NotificationSettings == nil {
		return true
	}
	enabled, ok := u.NotificationSettings[kind]
	return !ok || enabled
}

// StaffEntry represents a document in a team's staff subcollection.
type StaffEntry struct {
	Name  string `firestore:"name"`
	Email string `firestore:"email"`
}

// ConstraintRequestFields is the field set of a constraint-request document,
// as carried on document change events.
type ConstraintRequestFields struct {
	StaffID     string `firestore:"staffId" json:"staffId"`
	RequestType string `firestore:"requestType" json:"requestType"`
	// IsDelete means the submission requests removal of a prior constraint
	// rather than creation of a new one.
	IsDelete bool   `firestore:"isDelete" json:"isDelete"`
	Status   string `firestore:"status" json:"status"`
}
