package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			"mysql duplicate-key error",
			errors.New("Error 1062 (23000): Duplicate entry '7-10' for key 'votes.uniq_voter_office'"),
			true,
		},
		{"nil error", nil, false},
		{"unrelated error", errors.New("Error 1452 (23000): foreign key constraint fails"), false},
		{"connection error", errors.New("invalid connection"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isDuplicate(tc.err))
		})
	}
}
