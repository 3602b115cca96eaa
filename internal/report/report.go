// =============================================================================
// Missouri Lobbying Ledger - Reporting Facade
// =============================================================================
//
// Read-only aggregate queries over a loaded store, used by the web front end
// and the report/export commands:
//
//   Totals         sum and count of expenditures in a window
//   Top            grouped sums by dimension, descending, top-N
//   Rank           1-based position of one entity by total
//   CountDistinct  distinct entities joined to expenditures
//   *BySlug        single-entity lookups
//   ExportCSV      the full expenditure download
//
// Nothing here writes. The reporter must not be used while a load is running
// against the same store.
//
// =============================================================================

package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// =============================================================================
// DIMENSIONS
// =============================================================================

// Dimension is what spending is grouped by.
type Dimension int

const (
	ByLegislator Dimension = iota
	ByOrganization
	// ByCategory groups by organization industry.
	ByCategory
	ByLobbyist
	ByGroup
)

// Dimensions lists every dimension.
var Dimensions = []Dimension{ByLegislator, ByOrganization, ByCategory, ByLobbyist, ByGroup}

// ParseDimension maps a command-line token onto a Dimension.
func ParseDimension(value string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "legislator", "legislators":
		return ByLegislator, nil
	case "organization", "organizations", "org":
		return ByOrganization, nil
	case "category", "categories", "industry":
		return ByCategory, nil
	case "lobbyist", "lobbyists":
		return ByLobbyist, nil
	case "group", "groups":
		return ByGroup, nil
	default:
		return 0, fmt.Errorf("unknown dimension %q", value)
	}
}

func (d Dimension) String() string {
	switch d {
	case ByLegislator:
		return "legislator"
	case ByOrganization:
		return "organization"
	case ByCategory:
		return "category"
	case ByLobbyist:
		return "lobbyist"
	case ByGroup:
		return "group"
	default:
		return "unknown"
	}
}

// columns describes how a dimension joins onto expenditures.
type columns struct {
	join     string
	id       string
	slug     string
	name     string
	groupBy  string
	distinct string
}

func (d Dimension) columns() (columns, error) {
	switch d {
	case ByLegislator:
		return columns{
			join:     "JOIN legislators ON legislators.id = expenditures.legislator_id",
			id:       "legislators.id",
			slug:     "legislators.slug",
			name:     "legislators.first_name || ' ' || legislators.last_name",
			groupBy:  "legislators.id, legislators.slug, legislators.first_name, legislators.last_name",
			distinct: "expenditures.legislator_id",
		}, nil
	case ByOrganization:
		return columns{
			join:     "JOIN organizations ON organizations.id = expenditures.organization_id",
			id:       "organizations.id",
			slug:     "organizations.slug",
			name:     "organizations.name",
			groupBy:  "organizations.id, organizations.slug, organizations.name",
			distinct: "expenditures.organization_id",
		}, nil
	case ByCategory:
		return columns{
			join:     "JOIN organizations ON organizations.id = expenditures.organization_id",
			id:       "0",
			slug:     "organizations.category",
			name:     "organizations.category",
			groupBy:  "organizations.category",
			distinct: "organizations.category",
		}, nil
	case ByLobbyist:
		return columns{
			join:     "JOIN lobbyists ON lobbyists.id = expenditures.lobbyist_id",
			id:       "lobbyists.id",
			slug:     "lobbyists.slug",
			name:     "lobbyists.first_name || ' ' || lobbyists.last_name",
			groupBy:  "lobbyists.id, lobbyists.slug, lobbyists.first_name, lobbyists.last_name",
			distinct: "expenditures.lobbyist_id",
		}, nil
	case ByGroup:
		return columns{
			join:     "JOIN lobbying_groups ON lobbying_groups.id = expenditures.group_id",
			id:       "lobbying_groups.id",
			slug:     "lobbying_groups.slug",
			name:     "lobbying_groups.name",
			groupBy:  "lobbying_groups.id, lobbying_groups.slug, lobbying_groups.name",
			distinct: "expenditures.group_id",
		}, nil
	default:
		return columns{}, fmt.Errorf("unknown dimension %d", d)
	}
}

// =============================================================================
// QUERY AND RESULTS
// =============================================================================

// Query filters expenditures. Zero fields do not filter.
type Query struct {
	// Since is the inclusive report-period floor.
	Since time.Time

	// Until is the exclusive report-period ceiling.
	Until time.Time

	LegislatorID   uint
	OrganizationID uint
	LobbyistID     uint
	GroupID        uint
}

// Total is a spending sum.
type Total struct {
	Spending     decimal.Decimal
	Expenditures int64
}

// Row is one entry of a grouped ranking.
type Row struct {
	// ID is zero for the category dimension.
	ID uint

	// Slug is the entity slug, or the category text.
	Slug string

	Name         string
	Spending     decimal.Decimal
	Expenditures int64
}

// =============================================================================
// REPORTER
// =============================================================================

// Reporter runs read-only queries against a store.
type Reporter struct {
	db *gorm.DB
}

// New creates a reporter over st.
func New(st *store.Store) *Reporter {
	return &Reporter{db: st.DB()}
}

// RecentSince returns the floor of the "recent" window: the first day of the
// month after now, two years earlier.
func RecentSince(now time.Time) time.Time {
	return time.Date(now.Year()-2, now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

func (r *Reporter) expenditures(ctx context.Context, q Query) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&store.Expenditure{})
	if !q.Since.IsZero() {
		tx = tx.Where("expenditures.report_period >= ?", q.Since)
	}
	if !q.Until.IsZero() {
		tx = tx.Where("expenditures.report_period < ?", q.Until)
	}
	if q.LegislatorID != 0 {
		tx = tx.Where("expenditures.legislator_id = ?", q.LegislatorID)
	}
	if q.OrganizationID != 0 {
		tx = tx.Where("expenditures.organization_id = ?", q.OrganizationID)
	}
	if q.LobbyistID != 0 {
		tx = tx.Where("expenditures.lobbyist_id = ?", q.LobbyistID)
	}
	if q.GroupID != 0 {
		tx = tx.Where("expenditures.group_id = ?", q.GroupID)
	}
	return tx
}

// Totals sums the cost of every expenditure matching q.
func (r *Reporter) Totals(ctx context.Context, q Query) (Total, error) {
	var t Total
	err := r.expenditures(ctx, q).
		Select("COALESCE(SUM(expenditures.cost), 0) AS spending, COUNT(*) AS expenditures").
		Scan(&t).Error
	if err != nil {
		return Total{}, fmt.Errorf("totals: %w", err)
	}
	t.Spending = t.Spending.Round(2)
	return t, nil
}

// Top groups spending by dim, highest first. n <= 0 returns every row.
// Expenditures without an entity for dim (a group row under ByLegislator)
// are not counted.
func (r *Reporter) Top(ctx context.Context, dim Dimension, q Query, n int) ([]Row, error) {
	cols, err := dim.columns()
	if err != nil {
		return nil, err
	}

	tx := r.expenditures(ctx, q).
		Joins(cols.join).
		Select(fmt.Sprintf("%s AS id, %s AS slug, %s AS name, "+
			"SUM(expenditures.cost) AS spending, COUNT(*) AS expenditures",
			cols.id, cols.slug, cols.name)).
		Group(cols.groupBy).
		Order("spending DESC").
		Order("name ASC")
	if n > 0 {
		tx = tx.Limit(n)
	}

	var rows []Row
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("top %s: %w", dim, err)
	}
	for i := range rows {
		rows[i].Spending = rows[i].Spending.Round(2)
	}
	return rows, nil
}

// Rank returns the 1-based position of entity id among all entities of dim
// by total spending, or 0 if it has no spending matching q.
func (r *Reporter) Rank(ctx context.Context, dim Dimension, id uint, q Query) (int, error) {
	if dim == ByCategory {
		return 0, fmt.Errorf("rank is not defined for the %s dimension", dim)
	}

	rows, err := r.Top(ctx, dim, q, 0)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if row.ID == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

// CountDistinct counts the distinct entities of dim joined to expenditures
// matching q.
func (r *Reporter) CountDistinct(ctx context.Context, dim Dimension, q Query) (int64, error) {
	cols, err := dim.columns()
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.expenditures(ctx, q).
		Joins(cols.join).
		Select(fmt.Sprintf("COUNT(DISTINCT %s)", cols.distinct)).
		Scan(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", dim, err)
	}
	return n, nil
}

// =============================================================================
// ENTITY LOOKUPS
// =============================================================================

// LegislatorBySlug returns one legislator.
func (r *Reporter) LegislatorBySlug(ctx context.Context, slug string) (*store.Legislator, error) {
	var leg store.Legislator
	if err := r.bySlug(ctx, &leg, slug); err != nil {
		return nil, err
	}
	return &leg, nil
}

// OrganizationBySlug returns one organization.
func (r *Reporter) OrganizationBySlug(ctx context.Context, slug string) (*store.Organization, error) {
	var org store.Organization
	if err := r.bySlug(ctx, &org, slug); err != nil {
		return nil, err
	}
	return &org, nil
}

// LobbyistBySlug returns one lobbyist.
func (r *Reporter) LobbyistBySlug(ctx context.Context, slug string) (*store.Lobbyist, error) {
	var l store.Lobbyist
	if err := r.bySlug(ctx, &l, slug); err != nil {
		return nil, err
	}
	return &l, nil
}

// GroupBySlug returns one group.
func (r *Reporter) GroupBySlug(ctx context.Context, slug string) (*store.Group, error) {
	var g store.Group
	if err := r.bySlug(ctx, &g, slug); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Reporter) bySlug(ctx context.Context, dst any, slug string) error {
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: slug %q", store.ErrNotFound, slug)
	}
	return err
}

// Legislators lists the seats of one chamber by district, vacant seats
// included.
func (r *Reporter) Legislators(ctx context.Context, office types.Office) ([]store.Legislator, error) {
	var out []store.Legislator
	err := r.db.WithContext(ctx).
		Where("office = ?", office).
		Order("district, last_name, first_name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list %s seats: %w", office, err)
	}
	return out, nil
}
