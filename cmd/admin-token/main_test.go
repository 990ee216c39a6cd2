package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestRunMintsAdminToken(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"--secret", "k", "--subject", "bench", "--ttl", "5m", "--print-expiry"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q", out.String())
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(lines[0], claims, func(*jwt.Token) (interface{}, error) { return []byte("k"), nil }); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["sub"] != "bench" || claims["role"] != "ADMIN" {
		t.Errorf("claims = %v", claims)
	}
}

func TestRunErrors(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")
	tests := [][]string{
		{},
		{"--secret", "k", "--ttl", "0s"},
		{"--secret", "k", "extra"},
		{"--bogus"},
	}
	for _, args := range tests {
		if err := run(args, &bytes.Buffer{}); err == nil {
			t.Errorf("run(%q) succeeded", args)
		}
	}
}

func TestRunSecretFromEnv(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "from-env")
	var out bytes.Buffer
	if err := run(nil, &out); err != nil {
		t.Fatal(err)
	}
	if _, err := jwt.Parse(strings.TrimSpace(out.String()), func(*jwt.Token) (interface{}, error) { return []byte("from-env"), nil }); err != nil {
		t.Errorf("token not signed with env secret: %v", err)
	}
}

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"--help"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "--secret") {
		t.Errorf("help output = %q", out.String())
	}
}
