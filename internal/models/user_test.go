package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		raw      string
		expected Role
	}{
		{"patient", RolePatient},
		{"Patient", RolePatient},
		{"  PATIENT  ", RolePatient},
		{"Doctor", RoleDoctor},
		{"Medical Staff", RoleMedicalStaff},
		{"medical_staff", RoleMedicalStaff},
		{"medical-staff", RoleMedicalStaff},
		{"medstaff", RoleMedicalStaff},
		{"bhw", RoleHealthWorker},
		{"Barangay Health Worker", RoleHealthWorker},
		{"health worker", RoleHealthWorker},
		{"Administrator", RoleAdmin},
		{"super admin", RoleSuperAdmin},
		{"Super-Admin", RoleSuperAdmin},
		{"superadmin", RoleSuperAdmin},
		{"Security Guard", RoleSecurity},
		{"janitor", RoleUnknown},
		{"", RoleUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeRole(tt.raw), tt.raw)
	}
}

func TestPortalValid(t *testing.T) {
	assert.True(t, PortalPatient.Valid())
	assert.True(t, PortalStaff.Valid())
	assert.True(t, PortalAdmin.Valid())
	assert.True(t, PortalSuperAdmin.Valid())
	assert.False(t, Portal("clinic").Valid())
	assert.False(t, Portal("").Valid())
}

func TestPortalAllows(t *testing.T) {
	tests := []struct {
		portal  Portal
		role    Role
		allowed bool
	}{
		{PortalPatient, RolePatient, true},
		{PortalPatient, RoleDoctor, false},
		{PortalStaff, RoleDoctor, true},
		{PortalStaff, RoleNurse, true},
		{PortalStaff, RoleMidwife, true},
		{PortalStaff, RoleHealthWorker, true},
		{PortalStaff, RoleMedicalStaff, true},
		{PortalStaff, RoleSecurity, true},
		{PortalStaff, RolePatient, false},
		{PortalStaff, RoleAdmin, false},
		{PortalAdmin, RoleAdmin, true},
		{PortalAdmin, RoleSuperAdmin, false},
		{PortalAdmin, RolePatient, false},
		{PortalSuperAdmin, RoleSuperAdmin, true},
		{PortalSuperAdmin, RoleAdmin, false},
		{PortalPatient, RoleUnknown, false},
		{PortalStaff, RoleUnknown, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.portal.Allows(tt.role),
			"%s portal with role %q", tt.portal, tt.role)
	}
}
