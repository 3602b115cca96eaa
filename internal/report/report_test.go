package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/missouri-lobbying/internal/config"
	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

type fixture struct {
	reporter *Reporter
	lobbyist *store.Lobbyist
	smith    *store.Legislator
	doe      *store.Legislator
	acme     *store.Organization
	bank     *store.Organization
	caucus   *store.Group
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// seed builds a small store:
//
//	2014-03 acme -> smith   100
//	2015-01 acme -> smith   250.50
//	2015-02 bank -> doe     400
//	2015-02 acme -> caucus   75
func seed(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "report.db")}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Reset(ctx); err != nil {
		t.Fatal(err)
	}

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	var f fixture
	lob, _, err := st.FindOrCreateLobbyist(ctx, "Jane", "Doe")
	must(err)
	f.lobbyist = lob
	f.smith, _, err = st.FindOrCreateLegislator(ctx, store.Legislator{
		FirstName: "Jane", LastName: "Smith", EthicsName: "SMITH, JANE",
		Office: types.OfficeSenator, District: 4, Party: types.PartyDemocratic,
	})
	must(err)
	f.doe, _, err = st.FindOrCreateLegislator(ctx, store.Legislator{
		FirstName: "John", LastName: "Doe", EthicsName: "DOE, JOHN",
		Office: types.OfficeRepresentative, District: 42, Party: types.PartyRepublican,
	})
	must(err)
	_, _, err = st.FindOrCreateLegislator(ctx, store.Legislator{
		Office: types.OfficeRepresentative, District: 7, Vacant: true,
	})
	must(err)
	f.acme, _, err = st.FindOrCreateOrganization(ctx, "ACME CORPORATION", "Manufacturing")
	must(err)
	f.bank, _, err = st.FindOrCreateOrganization(ctx, "MISSOURI BANKERS", "Finance")
	must(err)
	f.caucus, _, err = st.FindOrCreateGroup(ctx, "Senate Caucus")
	must(err)

	exp := func(period time.Time, org *store.Organization, leg *store.Legislator, grp *store.Group, cost string, id int64) store.Expenditure {
		e := store.Expenditure{
			LobbyistID:     lob.ID,
			ReportPeriod:   period,
			EventDate:      period.AddDate(0, 0, 9),
			Category:       "Meals",
			Description:    "Dinner",
			Cost:           decimal.RequireFromString(cost),
			OrganizationID: org.ID,
			EthicsBoardID:  id,
			Batch:          period.Format("2006"),
		}
		if leg != nil {
			legID := leg.ID
			e.LegislatorID = &legID
			e.RecipientName, e.RecipientType = leg.EthicsName, leg.Office.String()
		}
		if grp != nil {
			grpID := grp.ID
			e.GroupID = &grpID
		}
		return e
	}

	must(st.CommitExpenditures(ctx, []store.Expenditure{
		exp(month(2014, time.March), f.acme, f.smith, nil, "100", 1),
		exp(month(2015, time.January), f.acme, f.smith, nil, "250.50", 2),
		exp(month(2015, time.February), f.bank, f.doe, nil, "400", 3),
		exp(month(2015, time.February), f.acme, nil, f.caucus, "75", 0),
	}, 2))

	f.reporter = New(st)
	return f
}

func TestRecentSince(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2015, time.June, 18, 0, 0, 0, 0, time.UTC), month(2013, time.July)},
		{time.Date(2015, time.December, 3, 0, 0, 0, 0, time.UTC), month(2014, time.January)},
	}
	for _, tt := range tests {
		if got := RecentSince(tt.now); !got.Equal(tt.want) {
			t.Errorf("RecentSince(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestTotals(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query Query
		want  string
		count int64
	}{
		{"all", Query{}, "825.50", 4},
		{"since", Query{Since: month(2015, time.January)}, "725.50", 3},
		{"until", Query{Until: month(2015, time.February)}, "350.50", 2},
		{"legislator", Query{LegislatorID: f.smith.ID}, "350.50", 2},
		{"organization", Query{OrganizationID: f.acme.ID, Since: month(2015, time.January)}, "325.50", 2},
		{"lobbyist", Query{LobbyistID: f.lobbyist.ID, Since: month(2015, time.January)}, "725.50", 3},
		{"group", Query{GroupID: f.caucus.ID}, "75", 1},
		{"unknown lobbyist", Query{LobbyistID: f.lobbyist.ID + 100}, "0", 0},
		{"empty", Query{Since: month(2020, time.January)}, "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.reporter.Totals(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Spending.Equal(decimal.RequireFromString(tt.want)) || got.Expenditures != tt.count {
				t.Errorf("Totals() = %s / %d, want %s / %d", got.Spending, got.Expenditures, tt.want, tt.count)
			}
		})
	}
}

func TestTop(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	legs, err := f.reporter.Top(ctx, ByLegislator, Query{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(legs) != 2 || legs[0].ID != f.doe.ID || legs[1].ID != f.smith.ID {
		t.Fatalf("legislators = %+v", legs)
	}
	if legs[0].Name != "John Doe" || legs[0].Slug != f.doe.Slug || !legs[0].Spending.Equal(decimal.NewFromInt(400)) {
		t.Errorf("top legislator = %+v", legs[0])
	}
	if legs[1].Expenditures != 2 {
		t.Errorf("smith expenditures = %d, want 2", legs[1].Expenditures)
	}

	orgs, err := f.reporter.Top(ctx, ByOrganization, Query{}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(orgs) != 1 || orgs[0].ID != f.acme.ID || !orgs[0].Spending.Equal(decimal.RequireFromString("425.50")) {
		t.Errorf("top organization = %+v", orgs)
	}

	cats, err := f.reporter.Top(ctx, ByCategory, Query{Since: month(2015, time.January)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0].Name != "Finance" || cats[1].Name != "Manufacturing" || cats[0].ID != 0 {
		t.Errorf("categories = %+v", cats)
	}

	groups, err := f.reporter.Top(ctx, ByGroup, Query{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 || groups[0].Name != "Senate Caucus" {
		t.Errorf("groups = %+v", groups)
	}

	byOrg, err := f.reporter.Top(ctx, ByLegislator, Query{OrganizationID: f.acme.ID}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(byOrg) != 1 || byOrg[0].ID != f.smith.ID {
		t.Errorf("legislators funded by acme = %+v", byOrg)
	}
}

func TestRank(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		dim   Dimension
		id    uint
		query Query
		want  int
	}{
		{"top legislator", ByLegislator, f.doe.ID, Query{}, 1},
		{"second legislator", ByLegislator, f.smith.ID, Query{}, 2},
		{"no spending in window", ByLegislator, f.smith.ID, Query{Since: month(2015, time.February)}, 0},
		{"organization", ByOrganization, f.bank.ID, Query{}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.reporter.Rank(ctx, tt.dim, tt.id, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Rank() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := f.reporter.Rank(ctx, ByCategory, 0, Query{}); err == nil {
		t.Error("expected an error ranking categories")
	}
}

func TestCountDistinct(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	tests := []struct {
		dim   Dimension
		query Query
		want  int64
	}{
		{ByLegislator, Query{}, 2},
		{ByOrganization, Query{}, 2},
		{ByCategory, Query{}, 2},
		{ByLobbyist, Query{}, 1},
		{ByGroup, Query{}, 1},
		{ByOrganization, Query{Until: month(2015, time.January)}, 1},
	}
	for _, tt := range tests {
		got, err := f.reporter.CountDistinct(ctx, tt.dim, tt.query)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("CountDistinct(%s, %+v) = %d, want %d", tt.dim, tt.query, got, tt.want)
		}
	}
}

func TestBySlug(t *testing.T) {
	f := seed(t)
	ctx := context.Background()

	leg, err := f.reporter.LegislatorBySlug(ctx, f.smith.Slug)
	if err != nil || leg.ID != f.smith.ID {
		t.Errorf("LegislatorBySlug() = %+v, %v", leg, err)
	}
	org, err := f.reporter.OrganizationBySlug(ctx, "acme-corporation")
	if err != nil || org.ID != f.acme.ID {
		t.Errorf("OrganizationBySlug() = %+v, %v", org, err)
	}
	lob, err := f.reporter.LobbyistBySlug(ctx, "jane-doe")
	if err != nil || lob.DisplayName() != "Jane Doe" {
		t.Errorf("LobbyistBySlug() = %+v, %v", lob, err)
	}
	grp, err := f.reporter.GroupBySlug(ctx, "senate-caucus")
	if err != nil || grp.ID != f.caucus.ID {
		t.Errorf("GroupBySlug() = %+v, %v", grp, err)
	}

	if _, err := f.reporter.OrganizationBySlug(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing slug error = %v, want ErrNotFound", err)
	}
}

func TestLegislators(t *testing.T) {
	f := seed(t)

	house, err := f.reporter.Legislators(context.Background(), types.OfficeRepresentative)
	if err != nil {
		t.Fatal(err)
	}
	if len(house) != 2 || !house[0].Vacant || house[0].District != 7 || house[1].ID != f.doe.ID {
		t.Errorf("house = %+v", house)
	}
}

func TestExportCSV(t *testing.T) {
	f := seed(t)

	var buf bytes.Buffer
	n, err := f.reporter.ExportCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if n != 4 {
		t.Errorf("rows = %d, want 4", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 || len(records[0]) != len(ExportHeader) {
		t.Fatalf("records = %d x %d", len(records), len(records[0]))
	}

	col := make(map[string]int, len(ExportHeader))
	for i, name := range ExportHeader {
		col[name] = i
	}

	second := records[2]
	want := map[string]string{
		"lobbyist_last_name":    "Doe",
		"report_period":         "2015-01-01",
		"recipient_name":        "SMITH, JANE",
		"legislator_last_name":  "Smith",
		"legislator_office":     "Senator",
		"legislator_party":      "Democratic",
		"legislator_district":   "4",
		"event_date":            "2015-01-10",
		"cost":                  "250.50",
		"organization_name":     "ACME CORPORATION",
		"organization_industry": "Manufacturing",
		"group":                 "",
		"ethics_board_id":       "2",
		"is_solicitation":       "false",
	}
	for name, value := range want {
		if got := second[col[name]]; got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}

	group := records[4]
	if group[col["group"]] != "Senate Caucus" || group[col["legislator_last_name"]] != "" || group[col["ethics_board_id"]] != "" {
		t.Errorf("group row = %v", group)
	}
}

func TestParseDimension(t *testing.T) {
	for _, d := range Dimensions {
		got, err := ParseDimension(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDimension(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDimension("weather"); err == nil {
		t.Error("expected an error for an unknown dimension")
	}
}
