// =============================================================================
// Missouri Lobbying Ledger - Shared Types
// =============================================================================
//
// This package contains the tagged enumerations shared across the loader
// packages. Keeping them here avoids import cycles between:
//   - xlsxparser / csvparser (which produce raw rows)
//   - validation (which classifies rows)
//   - store (which persists entities)
//   - ledger (which counts outcomes)
//
// Every enumeration carries an explicit unknown/other variant. Parsing a raw
// string never silently falls back to keeping the raw string.
//
// =============================================================================

package types

import (
	"strings"
)

// =============================================================================
// OFFICE
// =============================================================================

// Office is the legislative chamber a legislator sits in.
type Office int

const (
	// OfficeUnknown is used when the source value is not a chamber we track.
	OfficeUnknown Office = iota
	OfficeSenator
	OfficeRepresentative
)

// ParseOffice maps a roster or recipient-type token onto an Office.
func ParseOffice(value string) Office {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "senator", "senate", "sen":
		return OfficeSenator
	case "representative", "house", "rep":
		return OfficeRepresentative
	default:
		return OfficeUnknown
	}
}

func (o Office) String() string {
	switch o {
	case OfficeSenator:
		return "Senator"
	case OfficeRepresentative:
		return "Representative"
	default:
		return "Unknown"
	}
}

// =============================================================================
// PARTY
// =============================================================================

// Party is a legislator's party affiliation.
type Party int

const (
	PartyUnknown Party = iota
	PartyRepublican
	PartyDemocratic
)

// ParseParty accepts both the roster's single-letter codes and full names.
func ParseParty(value string) Party {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "r", "rep", "republican":
		return PartyRepublican
	case "d", "dem", "democrat", "democratic":
		return PartyDemocratic
	default:
		return PartyUnknown
	}
}

func (p Party) String() string {
	switch p {
	case PartyRepublican:
		return "Republican"
	case PartyDemocratic:
		return "Democratic"
	default:
		return "Unknown"
	}
}

// =============================================================================
// RECIPIENT TYPE
// =============================================================================

// RecipientType is the type suffix of a "NAME - TYPE" recipient field.
//
// The configured skip-set is not an enumeration member: skip types are free
// text owned by configuration, so anything outside the fixed members below is
// RecipientOther and the classifier consults the skip-set for it.
type RecipientType int

const (
	RecipientOther RecipientType = iota
	RecipientSenator
	RecipientRepresentative
	RecipientStaff
	RecipientFamily
)

// ParseRecipientType maps the type suffix onto a RecipientType.
func ParseRecipientType(value string) RecipientType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "senator":
		return RecipientSenator
	case "representative":
		return RecipientRepresentative
	case "employee or staff":
		return RecipientStaff
	case "spouse or child":
		return RecipientFamily
	default:
		return RecipientOther
	}
}

// Office returns the chamber for legislator recipient types.
func (r RecipientType) Office() Office {
	switch r {
	case RecipientSenator:
		return OfficeSenator
	case RecipientRepresentative:
		return OfficeRepresentative
	default:
		return OfficeUnknown
	}
}

// IsLegislator reports whether the recipient is a sitting legislator.
func (r RecipientType) IsLegislator() bool {
	return r == RecipientSenator || r == RecipientRepresentative
}

// IsAssociate reports whether the recipient is a legislator's staff or family.
func (r RecipientType) IsAssociate() bool {
	return r == RecipientStaff || r == RecipientFamily
}

func (r RecipientType) String() string {
	switch r {
	case RecipientSenator:
		return "Senator"
	case RecipientRepresentative:
		return "Representative"
	case RecipientStaff:
		return "Employee or Staff"
	case RecipientFamily:
		return "Spouse or Child"
	default:
		return "Other"
	}
}

// =============================================================================
// SHEET KIND
// =============================================================================

// SheetKind identifies one of the three sheets of a yearly workbook.
// The order of the constants is the fixed sheet order inside the workbook.
type SheetKind int

const (
	SheetIndividual SheetKind = iota
	SheetSolicitation
	SheetGroup
)

// SheetKinds lists the sheets in workbook order.
var SheetKinds = []SheetKind{SheetIndividual, SheetSolicitation, SheetGroup}

func (s SheetKind) String() string {
	switch s {
	case SheetIndividual:
		return "individual"
	case SheetSolicitation:
		return "solicitation"
	case SheetGroup:
		return "group"
	default:
		return "unknown"
	}
}

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the three-tier diagnostic level attached to a skipped row.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// ParseSeverity is used for configurable severities. Only "warning" and
// "error" are accepted; ok is false for anything else.
func ParseSeverity(value string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "warning", "warn":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	default:
		return SeverityInfo, false
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// =============================================================================
// ENTITY KIND
// =============================================================================

// EntityKind names the entity tables, used for creation counters.
type EntityKind int

const (
	EntityLobbyist EntityKind = iota
	EntityLegislator
	EntityOrganization
	EntityGroup
	EntityExpenditure
)

// EntityKinds lists every kind in summary order.
var EntityKinds = []EntityKind{EntityLobbyist, EntityLegislator, EntityOrganization, EntityGroup, EntityExpenditure}

func (e EntityKind) String() string {
	switch e {
	case EntityLobbyist:
		return "lobbyists"
	case EntityLegislator:
		return "legislators"
	case EntityOrganization:
		return "organizations"
	case EntityGroup:
		return "groups"
	case EntityExpenditure:
		return "expenditures"
	default:
		return "unknown"
	}
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is what the classifier decided for one expenditure row.
type Outcome int

const (
	// OutcomeAccepted rows become pending expenditures.
	OutcomeAccepted Outcome = iota
	// OutcomeAmended rows supersede an earlier filing and are only counted.
	OutcomeAmended
	OutcomeSkipped
	OutcomeWarning
	OutcomeError
)

// Severity returns the ledger severity for dropped rows. Accepted and
// amended rows are informational.
func (o Outcome) Severity() Severity {
	switch o {
	case OutcomeWarning:
		return SeverityWarning
	case OutcomeError:
		return SeverityError
	default:
		return SeverityInfo
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeAmended:
		return "amended"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeWarning:
		return "warning"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}
