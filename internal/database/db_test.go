package database

import "testing"

func TestDSN(t *testing.T) {
	tests := []struct {
		name                       string
		user, pass, host, port, db string
		want                       string
	}{
		{
			name: "with password",
			user: "app", pass: "secret", host: "127.0.0.1", port: "3306", db: "tickets",
			want: "app:secret@tcp(127.0.0.1:3306)/tickets?charset=utf8mb4&parseTime=true&loc=UTC",
		},
		{
			name: "without password",
			user: "root", host: "db", port: "3307", db: "radical",
			want: "root@tcp(db:3307)/radical?charset=utf8mb4&parseTime=true&loc=UTC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(tt.user, tt.pass, tt.host, tt.port, tt.db); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}
