// =============================================================================
// Missouri Lobbying Ledger - Reference Loaders
// =============================================================================
//
// Loads the two static lookup tables into the store before any expenditure
// row is read:
//
//   organizations.csv  raw name, canonical name, category
//                      Many raw spellings map onto one canonical name. A
//                      blank canonical name means the raw name is already
//                      canonical; a blank category becomes "Other".
//
//   legislators.csv    first, last, office, district, party, ethics name,
//                      phone, year elected, hometown
//                      A last name of VACANT creates a vacant seat.
//
// Both loaders use get-or-create, so loading twice into a populated store
// does not duplicate anything.
//
// =============================================================================

package reference

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/missouri-lobbying/internal/csvparser"
	"github.com/ginjaninja78/missouri-lobbying/internal/ledger"
	"github.com/ginjaninja78/missouri-lobbying/internal/normalize"
	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// Batch labels used for reference-table diagnostics.
const (
	OrganizationsBatch = "organizations"
	LegislatorsBatch   = "legislators"
)

// Store is the subset of the store used by the loaders.
type Store interface {
	FindOrCreateOrganization(ctx context.Context, name, category string) (*store.Organization, bool, error)
	FindOrCreateLegislator(ctx context.Context, leg store.Legislator) (*store.Legislator, bool, error)
}

// =============================================================================
// ORGANIZATIONS
// =============================================================================

// Canonicalization maps raw principal names onto canonical organization
// names. Keys are compared case-insensitively with whitespace collapsed.
type Canonicalization struct {
	names map[string]string
}

// NewCanonicalization creates an empty table.
func NewCanonicalization() *Canonicalization {
	return &Canonicalization{names: make(map[string]string)}
}

// Add maps raw onto canonical. The first mapping of a raw name wins; added
// reports whether this call stored it.
func (c *Canonicalization) Add(raw, canonical string) (added bool, existing string) {
	key := Key(raw)
	if prev, ok := c.names[key]; ok {
		return false, prev
	}
	c.names[key] = canonical
	return true, ""
}

// Canonical returns the canonical name of a raw principal name.
func (c *Canonicalization) Canonical(raw string) (string, bool) {
	name, ok := c.names[Key(raw)]
	return name, ok
}

// Len returns the number of raw names in the table.
func (c *Canonicalization) Len() int {
	return len(c.names)
}

// Key folds a raw name into its lookup key.
func Key(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(normalize.Clean(raw)), " "))
}

// LoadOrganizations reads the organization lookup table, creates every
// canonical organization and returns the raw-name table.
func LoadOrganizations(ctx context.Context, st Store, path string, l *ledger.Ledger, log zerolog.Logger) (*Canonicalization, error) {
	table, err := csvparser.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load organizations: %w", err)
	}

	lookup := NewCanonicalization()
	for _, rec := range table.Records {
		raw := normalize.Clean(rec.Field(0))
		canonical := normalize.Clean(rec.Field(1))
		category := normalize.Clean(rec.Field(2))

		if raw == "" {
			l.Warn(OrganizationsBatch, "", rec.Line, "organization row without a raw name")
			continue
		}
		if canonical == "" {
			canonical = raw
		}
		if category == "" {
			category = store.DefaultCategory
		}

		if added, prev := lookup.Add(raw, canonical); !added {
			if prev != canonical {
				l.Warn(OrganizationsBatch, "", rec.Line, "raw name %q already maps to %q; ignoring %q", raw, prev, canonical)
			}
			continue
		}
		// A canonical name always resolves to itself.
		lookup.Add(canonical, canonical)

		if _, created, err := st.FindOrCreateOrganization(ctx, canonical, category); err != nil {
			return nil, fmt.Errorf("failed to load organizations: %w", err)
		} else if created {
			l.CountCreated(types.EntityOrganization)
		}
	}

	log.Info().
		Int("raw_names", lookup.Len()).
		Int("created", l.Created(types.EntityOrganization)).
		Msg("organizations loaded")
	return lookup, nil
}

// =============================================================================
// LEGISLATORS
// =============================================================================

// Roster column positions.
const (
	colFirstName = iota
	colLastName
	colOffice
	colDistrict
	colParty
	colEthicsName
	colPhone
	colYearElected
	colHometown
)

// LoadLegislators reads the roster and creates every seat. Rows with an
// unknown office or a non-numeric district are skipped with a warning.
func LoadLegislators(ctx context.Context, st Store, path string, l *ledger.Ledger, log zerolog.Logger) (int, error) {
	table, err := csvparser.Parse(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load legislators: %w", err)
	}

	loaded := 0
	for _, rec := range table.Records {
		leg, problem := parseLegislator(rec)
		if problem != "" {
			l.Warn(LegislatorsBatch, "", rec.Line, "%s", problem)
			continue
		}

		_, created, err := st.FindOrCreateLegislator(ctx, leg)
		if err != nil {
			return loaded, fmt.Errorf("failed to load legislators: %w", err)
		}
		if created {
			l.CountCreated(types.EntityLegislator)
		}
		loaded++
	}

	log.Info().Int("seats", loaded).Msg("legislators loaded")
	return loaded, nil
}

// parseLegislator builds a roster seat from one row, or explains why not.
func parseLegislator(rec csvparser.Record) (store.Legislator, string) {
	office := types.ParseOffice(rec.Field(colOffice))
	if office == types.OfficeUnknown {
		return store.Legislator{}, fmt.Sprintf("unknown office %q", rec.Field(colOffice))
	}

	district, err := normalize.Integer(rec.Field(colDistrict))
	if err != nil {
		return store.Legislator{}, fmt.Sprintf("invalid district %q", rec.Field(colDistrict))
	}

	first := normalize.Clean(rec.Field(colFirstName))
	last := normalize.Clean(rec.Field(colLastName))

	if strings.EqualFold(last, "VACANT") {
		return store.Legislator{
			Office:   office,
			District: int(district),
			Vacant:   true,
		}, ""
	}

	if first == "" && last == "" {
		return store.Legislator{}, "legislator row without a name"
	}

	ethics := normalize.Clean(rec.Field(colEthicsName))
	if ethics == "" {
		ethics = EthicsName(first, last)
	}

	leg := store.Legislator{
		FirstName:  first,
		LastName:   last,
		EthicsName: ethics,
		Office:     office,
		District:   int(district),
		Party:      types.ParseParty(rec.Field(colParty)),
		Phone:      normalize.Clean(rec.Field(colPhone)),
		Hometown:   normalize.Clean(rec.Field(colHometown)),
	}
	if year, err := strconv.Atoi(normalize.Clean(rec.Field(colYearElected))); err == nil {
		leg.YearElected = &year
	}
	return leg, ""
}

// EthicsName builds the ethics-roll key "LAST, FIRST" for roster rows that
// leave it blank.
func EthicsName(first, last string) string {
	return strings.ToUpper(strings.TrimSpace(last + ", " + first))
}
