// =============================================================================
// Missouri Lobbying Ledger - Row Classifier & Validator
// =============================================================================
//
// This module decides what happens to each expenditure row. Every row ends in
// exactly one outcome:
//
//   accepted  a pending expenditure, committed at the end of the run
//   amended   supersedes an earlier filing; counted and dropped
//   skipped   deliberately out of scope (informational)
//   warning   anomalous but recoverable; dropped and reported
//   error     needs attention; dropped and reported
//
// CLASSIFICATION ORDER:
//   1. Amendment flag
//   2. Recipient (individual and solicitation sheets only):
//        Senator / Representative -> strict legislator lookup
//        Employee or Staff / Spouse or Child -> lookup of the associated
//          public official named in the second compound column
//        configured skip-set -> skipped
//        anything else -> error
//   3. Report period, event date, plausible date window
//   4. Cost (non-negative)
//   5. Organization through the canonicalization table
//   6. Ethics board id, lobbyist name
//   7. Lobbyist and group get-or-create
//
// Entities are only created once every check has passed, so a dropped row
// leaves no lobbyist or group behind.
//
// ERROR HANDLING:
//   Row conditions are returned as a Result, never as an error. The error
//   return is reserved for store faults, which abort the run.
//
// =============================================================================

package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/missouri-lobbying/internal/config"
	"github.com/ginjaninja78/missouri-lobbying/internal/normalize"
	"github.com/ginjaninja78/missouri-lobbying/internal/resolver"
	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
	"github.com/ginjaninja78/missouri-lobbying/internal/xlsxparser"
)

const dateLayout = "2006-01-02"

// Resolver is the subset of the entity resolver used by the validator.
type Resolver interface {
	Lobbyist(ctx context.Context, first, last string) (*store.Lobbyist, bool, error)
	Group(ctx context.Context, name string) (*store.Group, bool, error)
	Legislator(ctx context.Context, ethicsName string, office types.Office) (*store.Legislator, error)
	Organization(ctx context.Context, raw string) (*store.Organization, error)
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the classification of one row.
type Result struct {
	Outcome types.Outcome

	// Sheet and Line locate the source row.
	Sheet types.SheetKind
	Line  int

	// Message explains a dropped row. Empty for accepted rows.
	Message string

	// Expenditure is set for accepted rows only.
	Expenditure *store.Expenditure

	// Created lists the entities created while accepting the row.
	Created []types.EntityKind
}

// Accepted reports whether the row produced a pending expenditure.
func (r Result) Accepted() bool {
	return r.Outcome == types.OutcomeAccepted
}

func (r Result) String() string {
	if r.Message == "" {
		return fmt.Sprintf("%s row %d: %s", r.Sheet, r.Line, r.Outcome)
	}
	return fmt.Sprintf("%s row %d: %s: %s", r.Sheet, r.Line, r.Outcome, r.Message)
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator classifies rows for one run.
type Validator struct {
	resolver Resolver

	skip           map[string]bool
	earliest       time.Time
	latest         time.Time
	orgOutcome     types.Outcome
	attributeStaff bool
	stripNicknames bool
}

// NewValidator creates a validator from the configured rules.
func NewValidator(r Resolver, rules config.RulesConfig) (*Validator, error) {
	v := &Validator{
		resolver:       r,
		skip:           make(map[string]bool, len(rules.SkipRecipientTypes)),
		earliest:       rules.Earliest,
		latest:         rules.Latest,
		orgOutcome:     types.OutcomeError,
		attributeStaff: rules.AttributeStaffToLegislator == nil || *rules.AttributeStaffToLegislator,
		stripNicknames: rules.StripNicknames == nil || *rules.StripNicknames,
	}

	for _, t := range rules.SkipRecipientTypes {
		v.skip[skipKey(t)] = true
	}

	if rules.UnresolvedOrganization != "" {
		sev, ok := types.ParseSeverity(rules.UnresolvedOrganization)
		if !ok {
			return nil, fmt.Errorf("invalid unresolved_organization severity %q", rules.UnresolvedOrganization)
		}
		if sev == types.SeverityWarning {
			v.orgOutcome = types.OutcomeWarning
		}
	}

	return v, nil
}

func skipKey(t string) string {
	return strings.ToLower(strings.Join(strings.Fields(t), " "))
}

// Skipped reports whether a recipient type is in the configured skip-set.
func (v *Validator) Skipped(recipientType string) bool {
	return v.skip[skipKey(recipientType)]
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// ClassifyRecipient classifies a row of the individual or solicitation sheet.
func (v *Validator) ClassifyRecipient(ctx context.Context, batch string, epoch normalize.Epoch, row xlsxparser.RecipientRow) (Result, error) {
	res := Result{Sheet: row.Sheet, Line: row.Line}
	if normalize.Flag(row.Amended) {
		res.Outcome = types.OutcomeAmended
		return res, nil
	}

	name, kind, err := normalize.SplitCompound(row.Recipient)
	if err != nil {
		return res.drop(types.OutcomeWarning, "malformed recipient %q", normalize.Clean(row.Recipient)), nil
	}
	name = v.name(name)

	var legislator *store.Legislator
	rt := types.ParseRecipientType(kind)
	switch {
	case rt.IsLegislator():
		legislator, err = v.resolver.Legislator(ctx, name, rt.Office())
		if errors.Is(err, resolver.ErrUnknownLegislator) {
			return res.drop(types.OutcomeSkipped, "%s %q is not a sitting legislator", rt, name), nil
		}
		if err != nil {
			return res, err
		}

	case rt.IsAssociate():
		official, officialKind, err := normalize.SplitCompound(row.PublicOfficial)
		if err != nil {
			return res.drop(types.OutcomeWarning, "malformed public official %q for %s %q",
				normalize.Clean(row.PublicOfficial), rt, name), nil
		}
		official = v.name(official)

		ot := types.ParseRecipientType(officialKind)
		switch {
		case v.Skipped(officialKind):
			return res.drop(types.OutcomeSkipped, "%s of %s %q", rt, officialKind, official), nil
		case ot.IsLegislator():
			leg, err := v.resolver.Legislator(ctx, official, ot.Office())
			if errors.Is(err, resolver.ErrUnknownLegislator) {
				return res.drop(types.OutcomeSkipped, "%s of %s %q who is not a sitting legislator", rt, ot, official), nil
			}
			if err != nil {
				return res, err
			}
			if v.attributeStaff {
				legislator = leg
			}
		default:
			return res.drop(types.OutcomeError, "unknown public official type %q for %s %q", officialKind, rt, name), nil
		}

	case v.Skipped(kind):
		return res.drop(types.OutcomeSkipped, "recipient type %q is out of scope", kind), nil

	default:
		return res.drop(types.OutcomeError, "unknown recipient type %q", kind), nil
	}

	exp, dropped, err := v.validate(ctx, batch, epoch, row.Common, &res)
	if err != nil || dropped {
		return res, err
	}

	exp.RecipientName = name
	exp.RecipientType = kind
	exp.IsSolicitation = row.Sheet == types.SheetSolicitation
	if legislator != nil {
		id := legislator.ID
		exp.LegislatorID = &id
	}

	return res.accept(exp), nil
}

// ClassifyGroup classifies a row of the group sheet.
func (v *Validator) ClassifyGroup(ctx context.Context, batch string, epoch normalize.Epoch, row xlsxparser.GroupRow) (Result, error) {
	res := Result{Sheet: row.Sheet, Line: row.Line}
	if normalize.Flag(row.Amended) {
		res.Outcome = types.OutcomeAmended
		return res, nil
	}

	name := normalize.Clean(row.Group)
	if name == "" {
		return res.drop(types.OutcomeError, "missing group name"), nil
	}

	exp, dropped, err := v.validate(ctx, batch, epoch, row.Common, &res)
	if err != nil || dropped {
		return res, err
	}

	group, created, err := v.resolver.Group(ctx, name)
	if err != nil {
		return res, fmt.Errorf("failed to resolve group %q: %w", name, err)
	}
	if created {
		res.Created = append(res.Created, types.EntityGroup)
	}
	id := group.ID
	exp.GroupID = &id

	return res.accept(exp), nil
}

// validate runs the checks shared by every sheet kind and resolves the
// lobbyist. A dropped row has res filled in and a nil expenditure.
func (v *Validator) validate(ctx context.Context, batch string, epoch normalize.Epoch, row xlsxparser.Common, res *Result) (*store.Expenditure, bool, error) {
	drop := func(outcome types.Outcome, format string, args ...any) (*store.Expenditure, bool, error) {
		*res = res.drop(outcome, format, args...)
		return nil, true, nil
	}

	report := normalize.Clean(row.Report)
	if report == "" {
		return drop(types.OutcomeWarning, "missing report period")
	}
	period, err := normalize.ReportPeriod(report, epoch)
	if err != nil {
		return drop(types.OutcomeWarning, "unparsable report period %q", report)
	}

	date, err := normalize.EventDate(row.Date, epoch)
	if err != nil {
		return drop(types.OutcomeWarning, "unparsable event date %q", normalize.Clean(row.Date))
	}

	if !v.inWindow(period) {
		return drop(types.OutcomeWarning, "report period %s outside %s", period.Format(dateLayout), v.window())
	}
	if !v.inWindow(date) {
		return drop(types.OutcomeWarning, "event date %s outside %s", date.Format(dateLayout), v.window())
	}

	cost, err := normalize.Cost(row.Cost)
	if err != nil {
		return drop(types.OutcomeError, "invalid cost %q", normalize.Clean(row.Cost))
	}
	if cost.IsNegative() {
		return drop(types.OutcomeError, "negative cost %q", normalize.Clean(row.Cost))
	}
	if normalize.HasSubCent(cost) {
		return drop(types.OutcomeWarning, "sub-cent cost %q", normalize.Clean(row.Cost))
	}

	principal := normalize.Clean(row.Principal)
	org, err := v.resolver.Organization(ctx, principal)
	if errors.Is(err, resolver.ErrUnknownOrganization) {
		return drop(v.orgOutcome, "unresolved organization %q", principal)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve organization %q: %w", principal, err)
	}

	var ethicsID int64
	if raw := normalize.Clean(row.EthicsID); raw != "" {
		if ethicsID, err = normalize.Integer(raw); err != nil {
			return drop(types.OutcomeWarning, "invalid ethics board id %q", raw)
		}
	}

	first, last := normalize.Clean(row.LobbyistFirst), normalize.Clean(row.LobbyistLast)
	if first == "" || last == "" {
		return drop(types.OutcomeError, "missing lobbyist name %q %q", first, last)
	}

	lobbyist, created, err := v.resolver.Lobbyist(ctx, first, last)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve lobbyist %s %s: %w", first, last, err)
	}
	if created {
		res.Created = append(res.Created, types.EntityLobbyist)
	}

	return &store.Expenditure{
		LobbyistID:     lobbyist.ID,
		ReportPeriod:   period,
		EventDate:      date,
		Category:       normalize.Clean(row.Type),
		Description:    normalize.Clean(row.Description),
		Cost:           cost.Round(2),
		OrganizationID: org.ID,
		EthicsBoardID:  ethicsID,
		Batch:          batch,
	}, false, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (v *Validator) name(raw string) string {
	if v.stripNicknames {
		return normalize.StripNickname(raw)
	}
	return normalize.Clean(raw)
}

func (v *Validator) inWindow(t time.Time) bool {
	if !v.earliest.IsZero() && t.Before(v.earliest) {
		return false
	}
	if !v.latest.IsZero() && t.After(v.latest) {
		return false
	}
	return true
}

func (v *Validator) window() string {
	return fmt.Sprintf("%s..%s", v.earliest.Format(dateLayout), v.latest.Format(dateLayout))
}

func (r Result) drop(outcome types.Outcome, format string, args ...any) Result {
	r.Outcome = outcome
	r.Message = fmt.Sprintf(format, args...)
	r.Expenditure = nil
	r.Created = nil
	return r
}

func (r Result) accept(exp *store.Expenditure) Result {
	r.Outcome = types.OutcomeAccepted
	r.Expenditure = exp
	return r
}
