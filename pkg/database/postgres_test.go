package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srbenoit/mathops-db-sub013/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "mathops",
		Password: "it's secret",
		Name:     "math",
	})

	assert.Equal(t,
		`host=db.internal port=5432 user=mathops password='it\'s secret' dbname=math sslmode=disable application_name=mathops-deadlines`,
		dsn)
}

func TestDSNKeepsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "h", Port: 1, User: "u", Password: "p", Name: "n", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "password=p ")
}

func TestQuoteEmpty(t *testing.T) {
	assert.Equal(t, "''", quote(""))
}
