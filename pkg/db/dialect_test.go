package db

import "testing"

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    Dialect
		wantErr bool
	}{
		{"sqlite3", DialectSQLite, false},
		{"postgres", DialectPostgres, false},
		{"pgx", DialectPostgres, false},
		{"mysql", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := DialectFor(tt.driver)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("DialectFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDialect_Rebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{
			name:    "sqlite untouched",
			dialect: DialectSQLite,
			query:   "UPDATE todos SET completed = ? WHERE id = ?",
			want:    "UPDATE todos SET completed = ? WHERE id = ?",
		},
		{
			name:    "postgres numbered",
			dialect: DialectPostgres,
			query:   "UPDATE todos SET completed = ? WHERE id = ?",
			want:    "UPDATE todos SET completed = $1 WHERE id = $2",
		},
		{
			name:    "literal kept",
			dialect: DialectPostgres,
			query:   "SELECT '?' FROM todos WHERE id = ?",
			want:    "SELECT '?' FROM todos WHERE id = $1",
		},
		{
			name:    "no placeholders",
			dialect: DialectPostgres,
			query:   "SELECT id, task, completed FROM todos ORDER BY id",
			want:    "SELECT id, task, completed FROM todos ORDER BY id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Rebind(tt.query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialect_AutoIncrementPK(t *testing.T) {
	if got := DialectSQLite.AutoIncrementPK(); got != "INTEGER PRIMARY KEY AUTOINCREMENT" {
		t.Errorf("sqlite AutoIncrementPK() = %v", got)
	}
	if got := DialectPostgres.AutoIncrementPK(); got != "SERIAL PRIMARY KEY" {
		t.Errorf("postgres AutoIncrementPK() = %v", got)
	}
}
