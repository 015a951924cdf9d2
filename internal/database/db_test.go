package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	got := DSN("vote", "s3cret", "db.internal", "3306", "election")
	assert.Equal(t,
		"vote:s3cret@tcp(db.internal:3306)/election?charset=utf8mb4&parseTime=true&loc=UTC",
		got)
}

func TestDSN_EmptyPassword(t *testing.T) {
	// Local development databases often run without a password; the
	// credential part must then be the bare user, not "user:".
	got := DSN("root", "", "localhost", "3306", "election")
	assert.Equal(t,
		"root@tcp(localhost:3306)/election?charset=utf8mb4&parseTime=true&loc=UTC",
		got)
}
