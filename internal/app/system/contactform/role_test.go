package contactform

import (
	"net/url"
	"testing"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRole_RequiredFieldPerType(t *testing.T) {
	tests := []struct {
		typ   string
		field string
	}{
		{"player", "Username"},
		{"partner", "Company"},
		{"hnc_member", "MembershipNumber"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			in := ParseRole(url.Values{"type": {tt.typ}}, "")
			res := ValidateRole(in, models.RoleSet{}, true)
			require.True(t, res.HasErrors())
			assert.NotEmpty(t, res.Get(tt.field))
			assert.Len(t, res.Errors, 1)
		})
	}
}

func TestValidateRole_RejectsDuplicateOnCreate(t *testing.T) {
	assigned := models.RoleSet{Partners: []models.Role{{ID: "p1", ContactID: "c1", Type: models.RoleTypePartner}}}
	in := ParseRole(url.Values{"type": {"partner"}, "company": {"Acme"}}, "")

	res := ValidateRole(in, assigned, true)
	assert.Equal(t, "This contact already has the Partner role.", res.Get("Type"))

	// Editing the existing partner role is fine.
	res = ValidateRole(in, assigned, false)
	assert.False(t, res.HasErrors(), res.All())
}

func TestValidateRole_CommissionRate(t *testing.T) {
	for rate, ok := range map[string]bool{"12.5": true, "0": true, "100": true, "101": false, "-1": false, "ten": false} {
		in := ParseRole(url.Values{"type": {"partner"}, "company": {"Acme"}, "commissionRate": {rate}}, "")
		res := ValidateRole(in, models.RoleSet{}, true)
		assert.Equal(t, !ok, res.HasErrors(), "rate %q: %s", rate, res.All())
	}
}

func TestParseRole_LockedType(t *testing.T) {
	in := ParseRole(url.Values{"type": {"player"}, "status": {"inactive"}}, models.RoleTypeHncMember)
	assert.Equal(t, models.RoleTypeHncMember, in.RoleType())
	assert.Equal(t, "inactive", in.Status)
}

func TestToRoleDTO_OnlyTypeFields(t *testing.T) {
	in := RoleInput{Type: "partner", Status: "active", Username: "ignored", Company: "Acme", CommissionRate: "7.5"}
	dto := ToRoleDTO(in, "c1")
	assert.Equal(t, "c1", dto.ContactID)
	assert.Nil(t, dto.Username)
	assert.Equal(t, "Acme", models.Deref(dto.Company))
	require.NotNil(t, dto.CommissionRate)
	assert.InDelta(t, 7.5, *dto.CommissionRate, 1e-9)

	back := RoleFromModel(models.Role{Type: models.RoleTypePartner, Company: dto.Company, CommissionRate: dto.CommissionRate})
	assert.Equal(t, "7.5", back.CommissionRate)
	assert.Equal(t, "active", back.Status)
}

func TestAvailableRoleTypes(t *testing.T) {
	assigned := models.RoleSet{Players: []models.Role{{ID: "r1"}}}
	opts := AvailableRoleTypes(assigned)
	require.Len(t, opts, 3)
	assert.True(t, opts[0].Disabled)
	assert.False(t, opts[1].Disabled)
	assert.False(t, opts[2].Disabled)
	assert.Equal(t, "HNC Member", opts[2].Label)
}
