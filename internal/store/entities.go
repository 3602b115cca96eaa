package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

// =============================================================================
// GET-OR-CREATE
// =============================================================================

// FindOrCreateLobbyist returns the lobbyist with exactly this name, creating
// it when absent. created reports whether a row was inserted.
func (s *Store) FindOrCreateLobbyist(ctx context.Context, first, last string) (*Lobbyist, bool, error) {
	var l Lobbyist
	created, err := s.findOrCreate(ctx, &l,
		func(db *gorm.DB) *gorm.DB { return db.Where("first_name = ? AND last_name = ?", first, last) },
		func() { l = Lobbyist{FirstName: first, LastName: last} })
	if err != nil {
		return nil, false, fmt.Errorf("lobbyist %q %q: %w", first, last, err)
	}
	return &l, created, nil
}

// FindOrCreateGroup returns the group with exactly this name, creating it
// when absent.
func (s *Store) FindOrCreateGroup(ctx context.Context, name string) (*Group, bool, error) {
	var g Group
	created, err := s.findOrCreate(ctx, &g,
		func(db *gorm.DB) *gorm.DB { return db.Where("name = ?", name) },
		func() { g = Group{Name: name} })
	if err != nil {
		return nil, false, fmt.Errorf("group %q: %w", name, err)
	}
	return &g, created, nil
}

// FindOrCreateOrganization returns the organization with this canonical
// name. The category is only used when the row is created.
func (s *Store) FindOrCreateOrganization(ctx context.Context, name, category string) (*Organization, bool, error) {
	var o Organization
	created, err := s.findOrCreate(ctx, &o,
		func(db *gorm.DB) *gorm.DB { return db.Where("name = ?", name) },
		func() { o = Organization{Name: name, Category: category} })
	if err != nil {
		return nil, false, fmt.Errorf("organization %q: %w", name, err)
	}
	return &o, created, nil
}

// FindOrCreateLegislator returns the roster seat matching leg, inserting leg
// when absent. Sitting legislators match on (ethics name, office); vacant
// seats match on (office, district).
func (s *Store) FindOrCreateLegislator(ctx context.Context, leg Legislator) (*Legislator, bool, error) {
	var l Legislator
	created, err := s.findOrCreate(ctx, &l,
		func(db *gorm.DB) *gorm.DB {
			if leg.Vacant {
				return db.Where("vacant = ? AND office = ? AND district = ?", true, leg.Office, leg.District)
			}
			return db.Where("vacant = ? AND ethics_name = ? AND office = ?", false, leg.EthicsName, leg.Office)
		},
		func() { l = leg })
	if err != nil {
		return nil, false, fmt.Errorf("legislator %q: %w", leg.EthicsName, err)
	}
	return &l, created, nil
}

// findOrCreate loads the first row matching scope into dst, or resets dst
// with fill and inserts it.
func (s *Store) findOrCreate(ctx context.Context, dst any, scope func(*gorm.DB) *gorm.DB, fill func()) (bool, error) {
	db := s.db.WithContext(ctx)

	err := scope(db).First(dst).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	fill()
	if err := db.Create(dst).Error; err != nil {
		return false, err
	}
	return true, nil
}

// =============================================================================
// STRICT LOOKUPS
// =============================================================================

// FindLegislator looks up a sitting legislator by ethics name. Office only
// breaks a tie between sitting legislators sharing an ethics name, so a
// member who changed chambers is still found under the old office. It
// returns ErrNotFound on a miss or an unbreakable tie; it never creates.
func (s *Store) FindLegislator(ctx context.Context, ethicsName string, office types.Office) (*Legislator, error) {
	var matches []Legislator
	err := s.db.WithContext(ctx).
		Where("vacant = ? AND ethics_name = ?", false, ethicsName).
		Order("id").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("legislator %q: %w", ethicsName, err)
	}

	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &matches[0], nil
	}
	for i := range matches {
		if matches[i].Office == office {
			return &matches[i], nil
		}
	}
	return nil, ErrNotFound
}

// FindOrganization looks up an organization by canonical name.
func (s *Store) FindOrganization(ctx context.Context, name string) (*Organization, error) {
	var o Organization
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("organization %q: %w", name, err)
	}
	return &o, nil
}

// Legislators returns every seat, ordered by office and district.
func (s *Store) Legislators(ctx context.Context) ([]Legislator, error) {
	var out []Legislator
	if err := s.db.WithContext(ctx).Order("office, district, last_name, first_name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list legislators: %w", err)
	}
	return out, nil
}

// Organizations returns every canonical organization ordered by name.
func (s *Store) Organizations(ctx context.Context) ([]Organization, error) {
	var out []Organization
	if err := s.db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return out, nil
}

// =============================================================================
// BATCH COMMIT
// =============================================================================

// CommitExpenditures inserts every pending expenditure in one transaction.
// Either all rows are stored or none are. Associations are not upserted;
// the referenced entities already exist.
func (s *Store) CommitExpenditures(ctx context.Context, pending []Expenditure, batchSize int) error {
	if len(pending) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = len(pending)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(pending, batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("commit %d expenditures: %w", len(pending), err)
	}

	s.log.Info().Int("expenditures", len(pending)).Msg("expenditures committed")
	return nil
}
