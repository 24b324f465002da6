package service

import (
	"errors"
	"strings"
)

var (
	// ErrForbidden indique l'absence de permission.
	ErrForbidden = errors.New("accès refusé")
)

// Rôles admin reconnus. RoleAdminPrincipal couvre implicitement toutes les sections.
const (
	RoleAdminPrincipal = "ADMIN_PRINCIPAL"
	RoleAdminBebe      = "ADMIN_BEBE"
	RoleAdminJardinage = "ADMIN_JARDINAGE"
	RoleAdminMenage    = "ADMIN_MENAGE"
	RoleAdminSecurite  = "ADMIN_SECURITE"
	RoleAdminTravaux   = "ADMIN_TRAVAUX"
)

// Sections du backoffice (sous-arbres de navigation côté dashboard).
const (
	SectionDashboard    = "dashboard"
	SectionBebe         = "bebe"
	SectionJardinage    = "jardinage"
	SectionMenage       = "menage"
	SectionSecurite     = "securite"
	SectionTravaux      = "travaux"
	SectionReservations = "reservations"
	SectionContacts     = "contacts"
	SectionCommerce     = "commerce"
)

var allSections = []string{
	SectionDashboard,
	SectionBebe,
	SectionJardinage,
	SectionMenage,
	SectionSecurite,
	SectionTravaux,
	SectionReservations,
	SectionContacts,
	SectionCommerce,
}

// sectionAllowlist fige le mapping rôle → sections accessibles.
// La première section de chaque liste est la page d'atterrissage du rôle.
var sectionAllowlist = map[string][]string{
	RoleAdminBebe:      {SectionBebe, SectionReservations},
	RoleAdminJardinage: {SectionJardinage, SectionReservations},
	RoleAdminMenage:    {SectionMenage, SectionReservations},
	RoleAdminSecurite:  {SectionSecurite, SectionReservations},
	RoleAdminTravaux:   {SectionTravaux, SectionReservations, SectionCommerce},
}

// IsKnownRole indique si le rôle appartient à l'énumération fixe.
func IsKnownRole(role string) bool {
	switch normalizeRole(role) {
	case RoleAdminPrincipal, RoleAdminBebe, RoleAdminJardinage, RoleAdminMenage, RoleAdminSecurite, RoleAdminTravaux:
		return true
	}
	return false
}

// AllowedSections liste les sections accessibles au rôle.
func AllowedSections(role string) []string {
	role = normalizeRole(role)
	if role == RoleAdminPrincipal {
		return append([]string(nil), allSections...)
	}
	if sections, ok := sectionAllowlist[role]; ok {
		return append([]string(nil), sections...)
	}
	return nil
}

// DefaultSection retourne la page d'atterrissage du rôle.
// Un rôle reconnu sans section configurée retombe sur le dashboard générique.
func DefaultSection(role string) string {
	role = normalizeRole(role)
	if role == RoleAdminPrincipal {
		return SectionDashboard
	}
	if sections, ok := sectionAllowlist[role]; ok && len(sections) > 0 {
		return sections[0]
	}
	return SectionDashboard
}

// CanAccess vérifie qu'au moins un des rôles donne accès à la section.
// Le rôle principal court-circuite la vérification.
func CanAccess(roles []string, section string) bool {
	section = strings.ToLower(strings.TrimSpace(section))
	for _, role := range roles {
		role = normalizeRole(role)
		if role == RoleAdminPrincipal {
			return true
		}
		for _, allowed := range sectionAllowlist[role] {
			if allowed == section {
				return true
			}
		}
	}
	return false
}

// HasRole vérifie la présence d'un rôle; le principal satisfait tout.
func HasRole(roles []string, required string) bool {
	required = normalizeRole(required)
	for _, role := range roles {
		role = normalizeRole(role)
		if role == RoleAdminPrincipal || role == required {
			return true
		}
	}
	return false
}

// HasAnyRole vérifie la présence d'au moins un des rôles demandés.
func HasAnyRole(roles []string, required ...string) bool {
	for _, req := range required {
		if HasRole(roles, req) {
			return true
		}
	}
	return false
}

func normalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}
