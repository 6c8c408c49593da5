package models

import "strings"

// Role is the closed set of portal roles. All role strings coming from the
// core backend are normalized into this enumeration before any comparison;
// the source data carries inconsistent casings and spellings ("Doctor",
// "doctor", "Medical Staff").
type Role string

const (
	RolePatient      Role = "patient"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleMidwife      Role = "midwife"
	RoleHealthWorker Role = "health_worker"
	RoleMedicalStaff Role = "medical_staff"
	RoleAdmin        Role = "admin"
	RoleSuperAdmin   Role = "super_admin"
	RoleSecurity     Role = "security"
	RoleUnknown      Role = ""
)

// NormalizeRole collapses a raw role string into the closed Role set.
func NormalizeRole(raw string) Role {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", " ", "_", " ").Replace(key)
	key = strings.Join(strings.Fields(key), " ")

	switch key {
	case "patient":
		return RolePatient
	case "doctor":
		return RoleDoctor
	case "nurse":
		return RoleNurse
	case "midwife":
		return RoleMidwife
	case "health worker", "barangay health worker", "bhw":
		return RoleHealthWorker
	case "medical staff", "medstaff":
		return RoleMedicalStaff
	case "admin", "administrator":
		return RoleAdmin
	case "super admin", "superadmin":
		return RoleSuperAdmin
	case "security", "security guard":
		return RoleSecurity
	}
	return RoleUnknown
}

// Portal is one of the four declared login portals. The portal is chosen by
// the user before submitting credentials and gates which roles may enter.
type Portal string

const (
	PortalPatient    Portal = "patient"
	PortalStaff      Portal = "staff"
	PortalAdmin      Portal = "admin"
	PortalSuperAdmin Portal = "super-admin"
)

// Valid reports whether p is a declared portal.
func (p Portal) Valid() bool {
	switch p {
	case PortalPatient, PortalStaff, PortalAdmin, PortalSuperAdmin:
		return true
	}
	return false
}

// Allows reports whether a role may log in through this portal. This is a
// UI-level gate layered on top of server-side authorization, not a
// replacement for it.
func (p Portal) Allows(r Role) bool {
	switch p {
	case PortalPatient:
		return r == RolePatient
	case PortalStaff:
		switch r {
		case RoleDoctor, RoleNurse, RoleMidwife, RoleHealthWorker, RoleMedicalStaff, RoleSecurity:
			return true
		}
	case PortalAdmin:
		return r == RoleAdmin
	case PortalSuperAdmin:
		return r == RoleSuperAdmin
	}
	return false
}

// User is the account record returned by the core backend on login.
type User struct {
	ID                     int    `json:"id"`
	Email                  string `json:"email"`
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Role                   string `json:"role"`
	RequiresPasswordChange bool   `json:"requires_password_change"`
}
