package reference

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/missouri-lobbying/internal/config"
	"github.com/ginjaninja78/missouri-lobbying/internal/ledger"
	"github.com/ginjaninja78/missouri-lobbying/internal/store"
	"github.com/ginjaninja78/missouri-lobbying/internal/types"
)

const organizationsCSV = `Ethics Name,Name,Category
Acme Corp,ACME CORPORATION,Manufacturing
ACME CORP.,ACME CORPORATION,Manufacturing
Missouri Bankers Assn,,Finance
Solo Industries,,
,Orphan,Other
Acme Corp,SOMETHING ELSE,Retail
`

const legislatorsCSV = `First,Last,Office,District,Party,Ethics Name,Phone,Year Elected,Hometown
Jane,Smith,Senator,4,D,"SMITH, JANE",573-555-0100,2012,Kirkwood
John,Doe,Representative,42,R,,573-555-0101,,Joplin
,Vacant,Representative,99,,,,,
Ann,Roe,Governor,1,R,"ROE, ANN",,,
Bob,Poe,Representative,abc,R,"POE, BOB",,,
`

func setup(t *testing.T) (*store.Store, string, string) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(config.DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(dir, "ref.db")}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}

	orgs := filepath.Join(dir, "organizations.csv")
	legs := filepath.Join(dir, "legislators.csv")
	if err := os.WriteFile(orgs, []byte(organizationsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(legs, []byte(legislatorsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return st, orgs, legs
}

func TestLoadOrganizations(t *testing.T) {
	st, orgs, _ := setup(t)
	ctx := context.Background()
	l := ledger.New("test")

	lookup, err := LoadOrganizations(ctx, st, orgs, l, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadOrganizations() error = %v", err)
	}

	tests := []struct {
		raw  string
		want string
	}{
		{"Acme Corp", "ACME CORPORATION"},
		{"acme   corp", "ACME CORPORATION"},
		{"ACME CORP.", "ACME CORPORATION"},
		{"ACME CORPORATION", "ACME CORPORATION"},
		{"Missouri Bankers Assn", "Missouri Bankers Assn"},
	}
	for _, tt := range tests {
		got, ok := lookup.Canonical(tt.raw)
		if !ok || got != tt.want {
			t.Errorf("Canonical(%q) = %q, %v; want %q", tt.raw, got, ok, tt.want)
		}
	}
	if _, ok := lookup.Canonical("Unknown LLC"); ok {
		t.Error("unexpected mapping for an unknown name")
	}

	all, err := st.Organizations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("organizations = %d, want 3", len(all))
	}
	for _, org := range all {
		if org.Name == "Solo Industries" && org.Category != store.DefaultCategory {
			t.Errorf("blank category = %q, want %q", org.Category, store.DefaultCategory)
		}
	}
	if l.Created(types.EntityOrganization) != 3 {
		t.Errorf("created = %d, want 3", l.Created(types.EntityOrganization))
	}
	// Blank raw name and conflicting remap.
	if len(l.Warnings()) != 2 {
		t.Errorf("warnings = %v", l.Warnings())
	}
}

func TestLoadOrganizations_Idempotent(t *testing.T) {
	st, orgs, _ := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := LoadOrganizations(ctx, st, orgs, ledger.New("test"), zerolog.Nop()); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := st.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[types.EntityOrganization] != 3 {
		t.Errorf("organizations = %d after two loads, want 3", counts[types.EntityOrganization])
	}
}

func TestLoadLegislators(t *testing.T) {
	st, _, legs := setup(t)
	ctx := context.Background()
	l := ledger.New("test")

	n, err := LoadLegislators(ctx, st, legs, l, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadLegislators() error = %v", err)
	}
	if n != 3 {
		t.Errorf("loaded = %d, want 3", n)
	}
	if len(l.Warnings()) != 2 {
		t.Errorf("warnings = %v, want office and district problems", l.Warnings())
	}

	smith, err := st.FindLegislator(ctx, "SMITH, JANE", types.OfficeSenator)
	if err != nil {
		t.Fatalf("FindLegislator(SMITH, JANE) error = %v", err)
	}
	if smith.Party != types.PartyDemocratic || smith.YearElected == nil || *smith.YearElected != 2012 {
		t.Errorf("smith = %+v", smith)
	}

	doe, err := st.FindLegislator(ctx, "DOE, JOHN", types.OfficeRepresentative)
	if err != nil {
		t.Fatalf("derived ethics name not found: %v", err)
	}
	if doe.YearElected != nil {
		t.Errorf("YearElected = %v, want nil", *doe.YearElected)
	}

	all, err := st.Legislators(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var vacant int
	for _, leg := range all {
		if leg.Vacant {
			vacant++
			if leg.District != 99 || leg.Slug != "vacant-representative-99" {
				t.Errorf("vacant seat = %+v", leg)
			}
		}
	}
	if vacant != 1 {
		t.Errorf("vacant seats = %d, want 1", vacant)
	}

	// Second load finds every seat again.
	again := ledger.New("test")
	if _, err := LoadLegislators(ctx, st, legs, again, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	if again.Created(types.EntityLegislator) != 0 {
		t.Errorf("second load created %d legislators", again.Created(types.EntityLegislator))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	st, _, _ := setup(t)
	missing := filepath.Join(t.TempDir(), "nope.csv")

	if _, err := LoadOrganizations(context.Background(), st, missing, ledger.New("t"), zerolog.Nop()); err == nil {
		t.Error("expected an error for a missing organizations file")
	}
	if _, err := LoadLegislators(context.Background(), st, missing, ledger.New("t"), zerolog.Nop()); err == nil {
		t.Error("expected an error for a missing roster file")
	}
}

func TestKey(t *testing.T) {
	if Key("  acme\u00a0  corp ") != "ACME CORP" {
		t.Errorf("Key() = %q", Key("  acme\u00a0  corp "))
	}
}
