package postgres

import "testing"

func TestMigrateURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"postgres://u:p@localhost:5432/db?sslmode=disable": "pgx5://u:p@localhost:5432/db?sslmode=disable",
		"postgresql://localhost/db":                        "pgx5://localhost/db",
		"pgx5://localhost/db":                              "pgx5://localhost/db",
	}
	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	t.Parallel()

	if err := MigrateDown("postgres://localhost/db", 0); err == nil {
		t.Fatalf("MigrateDown(0) err=nil, want error")
	}
}
