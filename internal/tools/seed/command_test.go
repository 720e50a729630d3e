package seed

import (
	"strings"
	"testing"

	"github.com/sandeepkv93/bazar-universal-api/internal/database"
)

func TestApplyDetails(t *testing.T) {
	got := applyDetails(&database.SeedReport{CreatedProducts: 10, CreatedSales: 3})
	if len(got) != 2 || got[0] != "created products=10" || got[1] != "created sales=3" {
		t.Fatalf("unexpected details %v", got)
	}
	got = applyDetails(&database.SeedReport{ExistingProducts: 4, Noop: true})
	if len(got) != 1 || !strings.Contains(got[0], "already has 4 products") {
		t.Fatalf("unexpected noop details %v", got)
	}
}

func TestDryRunDetails(t *testing.T) {
	got := dryRunDetails(&database.SeedReport{CreatedProducts: 10, CreatedSales: 3})
	if got[len(got)-1] != "no mutation executed in dry-run mode" {
		t.Fatalf("expected dry-run marker, got %v", got)
	}
	got = dryRunDetails(&database.SeedReport{ExistingProducts: 10, Noop: true})
	if !strings.Contains(got[0], "no-op") {
		t.Fatalf("unexpected noop plan %v", got)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"apply", "dry-run", "status"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Fatalf("missing subcommand %s: %v", name, err)
		}
	}
}
