package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedSections(t *testing.T) {
	// Le rôle principal voit tout.
	assert.ElementsMatch(t, allSections, AllowedSections(RoleAdminPrincipal))

	assert.Equal(t, []string{SectionMenage, SectionReservations}, AllowedSections(RoleAdminMenage))
	assert.Equal(t, []string{SectionTravaux, SectionReservations, SectionCommerce}, AllowedSections(RoleAdminTravaux))

	// Rôle inconnu: aucune section.
	assert.Nil(t, AllowedSections("ADMIN_PISCINE"))
	assert.Nil(t, AllowedSections(""))
}

func TestDefaultSection(t *testing.T) {
	assert.Equal(t, SectionDashboard, DefaultSection(RoleAdminPrincipal))
	assert.Equal(t, SectionBebe, DefaultSection(RoleAdminBebe))
	assert.Equal(t, SectionJardinage, DefaultSection(RoleAdminJardinage))
	assert.Equal(t, SectionTravaux, DefaultSection(RoleAdminTravaux))

	// La casse ne change pas le résultat.
	assert.Equal(t, SectionMenage, DefaultSection("admin_menage"))
}

func TestCanAccess(t *testing.T) {
	cases := []struct {
		name    string
		roles   []string
		section string
		want    bool
	}{
		{"principal accède au commerce", []string{RoleAdminPrincipal}, SectionCommerce, true},
		{"ménage accède à sa section", []string{RoleAdminMenage}, SectionMenage, true},
		{"ménage accède aux réservations", []string{RoleAdminMenage}, SectionReservations, true},
		{"ménage n'accède pas au jardinage", []string{RoleAdminMenage}, SectionJardinage, false},
		{"bébé n'accède pas au commerce", []string{RoleAdminBebe}, SectionCommerce, false},
		{"travaux accède au commerce", []string{RoleAdminTravaux}, SectionCommerce, true},
		{"cumul de rôles: l'union des sections", []string{RoleAdminBebe, RoleAdminTravaux}, SectionCommerce, true},
		{"aucun rôle", nil, SectionMenage, false},
		{"rôle inconnu", []string{"ADMIN_PISCINE"}, SectionMenage, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAccess(tc.roles, tc.section))
		})
	}
}

func TestEverySectionReachableViaAllowlistIsKnown(t *testing.T) {
	known := map[string]bool{}
	for _, s := range allSections {
		known[s] = true
	}
	for role, sections := range sectionAllowlist {
		for _, s := range sections {
			assert.True(t, known[s], "rôle %s référence une section inconnue: %s", role, s)
		}
	}
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole([]string{RoleAdminMenage}, RoleAdminMenage))
	assert.True(t, HasRole([]string{RoleAdminPrincipal}, RoleAdminMenage))
	assert.False(t, HasRole([]string{RoleAdminMenage}, RoleAdminBebe))
	assert.True(t, HasAnyRole([]string{RoleAdminBebe}, RoleAdminMenage, RoleAdminBebe))
}
