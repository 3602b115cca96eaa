// =============================================================================
// Missouri Lobbying Ledger - Store Models
// =============================================================================
//
// Relational schema of the normalized store:
//
//   lobbyists ─┐
//   legislators ─┼─< expenditures >── organizations
//   lobbying_groups ─┘
//
// Slugs are unique per table and assigned in BeforeCreate hooks, so the
// first entity saved with a base slug keeps it bare and later collisions
// get "-2", "-3", ... in save order.
//
// =============================================================================

package store

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ginjaninja78/missouri-lobbying/internal/slug"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// DefaultCategory is the industry tag of organizations without one.
const DefaultCategory = "Other"

// Lobbyist is identified by exact (first, last) name.
type Lobbyist struct {
	ID        uint      `gorm:"primaryKey"`
	FirstName string    `gorm:"size:128;not null;uniqueIndex:idx_lobbyist_name"`
	LastName  string    `gorm:"size:128;not null;uniqueIndex:idx_lobbyist_name"`
	Slug      string    `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time
}

// DisplayName renders "First Last".
func (l Lobbyist) DisplayName() string {
	return joinName(l.FirstName, l.LastName)
}

func (l *Lobbyist) BeforeCreate(tx *gorm.DB) error {
	return assignSlug(tx, &Lobbyist{}, &l.Slug, slug.Make(l.FirstName, l.LastName))
}

// Legislator is one seat of the roster. A vacant seat has no name and is
// identified by (office, district) instead of its ethics name.
type Legislator struct {
	ID          uint         `gorm:"primaryKey"`
	FirstName   string       `gorm:"size:128"`
	LastName    string       `gorm:"size:128"`
	EthicsName  string       `gorm:"size:255;index"`
	Office      types.Office `gorm:"not null;index"`
	District    int          `gorm:"index"`
	Party       types.Party  `gorm:"not null"`
	Phone       string       `gorm:"size:64"`
	YearElected *int
	Hometown    string `gorm:"size:128"`
	Vacant      bool   `gorm:"not null;default:false"`
	Slug        string `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt   time.Time
}

// DisplayName renders "Sen. First Last" or "Vacant Representative seat 42".
func (l Legislator) DisplayName() string {
	if l.Vacant {
		return fmt.Sprintf("Vacant %s seat %d", l.Office, l.District)
	}
	prefix := "Rep."
	if l.Office == types.OfficeSenator {
		prefix = "Sen."
	}
	return prefix + " " + joinName(l.FirstName, l.LastName)
}

func (l *Legislator) BeforeCreate(tx *gorm.DB) error {
	base := slug.Make(l.FirstName, l.LastName)
	if l.Vacant {
		base = slug.Make("vacant", l.Office.String(), fmt.Sprint(l.District))
	}
	return assignSlug(tx, &Legislator{}, &l.Slug, base)
}

// Organization is a canonical principal with an industry category.
type Organization struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null;uniqueIndex"`
	Category  string `gorm:"size:128;not null;index"`
	Slug      string `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.Category == "" {
		o.Category = DefaultCategory
	}
	return assignSlug(tx, &Organization{}, &o.Slug, slug.Make(o.Name))
}

// Group is a legislative body or caucus entertained as a whole.
type Group struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null;uniqueIndex"`
	Slug      string `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time
}

// TableName avoids the reserved word "groups".
func (Group) TableName() string {
	return "lobbying_groups"
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	return assignSlug(tx, &Group{}, &g.Slug, slug.Make(g.Name))
}

// Expenditure is one accepted disclosure line. At most one of Legislator
// and Group is set.
type Expenditure struct {
	ID             uint            `gorm:"primaryKey"`
	LobbyistID     uint            `gorm:"not null;index"`
	Lobbyist       Lobbyist        `gorm:"constraint:OnDelete:CASCADE"`
	ReportPeriod   time.Time       `gorm:"not null;index"`
	RecipientName  string          `gorm:"size:255"`
	RecipientType  string          `gorm:"size:128"`
	LegislatorID   *uint           `gorm:"index"`
	Legislator     *Legislator     `gorm:"constraint:OnDelete:SET NULL"`
	EventDate      time.Time       `gorm:"not null;index"`
	Category       string          `gorm:"size:128"`
	Description    string          `gorm:"size:1024"`
	Cost           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OrganizationID uint            `gorm:"not null;index"`
	Organization   Organization    `gorm:"constraint:OnDelete:CASCADE"`
	GroupID        *uint           `gorm:"index"`
	Group          *Group          `gorm:"constraint:OnDelete:SET NULL"`
	EthicsBoardID  int64           `gorm:"index"`
	IsSolicitation bool            `gorm:"not null;default:false"`
	Batch          string          `gorm:"size:64;index"`
	CreatedAt      time.Time
}

// BeforeCreate enforces the row invariants the classifier already checks,
// so nothing inconsistent reaches the table through another path.
func (e *Expenditure) BeforeCreate(*gorm.DB) error {
	if e.LegislatorID != nil && e.GroupID != nil {
		return fmt.Errorf("expenditure has both a legislator and a group")
	}
	if e.Cost.IsNegative() {
		return fmt.Errorf("expenditure cost %s is negative", e.Cost)
	}
	return nil
}

// models lists every table in creation order.
func models() []any {
	return []any{
		&Lobbyist{},
		&Legislator{},
		&Organization{},
		&Group{},
		&Expenditure{},
	}
}

// =============================================================================
// SLUG ASSIGNMENT
// =============================================================================

// assignSlug picks the next free slug for base among the rows of model.
// It runs on a fresh statement over the hook's connection, which keeps it
// inside the caller's transaction.
func assignSlug(tx *gorm.DB, model any, dst *string, base string) error {
	if *dst != "" {
		return nil
	}

	var taken []string
	err := tx.Session(&gorm.Session{NewDB: true}).
		Model(model).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &taken).Error
	if err != nil {
		return fmt.Errorf("failed to look up slugs for %q: %w", base, err)
	}

	*dst = slug.Next(base, taken)
	return nil
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
