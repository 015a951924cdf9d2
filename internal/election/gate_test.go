package election

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kolade/campus-election/internal/model"
)

func TestCheckGate(t *testing.T) {
	tests := []struct {
		name         string
		settings     model.ElectionSettings
		departmentID uint64
		wantErr      error
	}{
		{
			"active election, participating department",
			model.ElectionSettings{IsElectionActive: true, AllowedDepartmentIDs: []uint64{1, 2}},
			1,
			nil,
		},
		{
			"inactive election",
			model.ElectionSettings{IsElectionActive: false, AllowedDepartmentIDs: []uint64{1}},
			1,
			ErrElectionInactive,
		},
		{
			"department not participating",
			model.ElectionSettings{IsElectionActive: true, AllowedDepartmentIDs: []uint64{2, 3}},
			1,
			ErrDepartmentNotParticipating,
		},
		{
			"inactive wins over non-participation",
			model.ElectionSettings{IsElectionActive: false, AllowedDepartmentIDs: nil},
			1,
			ErrElectionInactive,
		},
		{
			"empty allowed set blocks everyone",
			model.ElectionSettings{IsElectionActive: true},
			1,
			ErrDepartmentNotParticipating,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantErr, CheckGate(tc.settings, tc.departmentID))
		})
	}
}

func TestResultsVisible(t *testing.T) {
	tests := []struct {
		name     string
		settings model.ElectionSettings
		isAdmin  bool
		want     bool
	}{
		{"hidden for students", model.ElectionSettings{ResultVisibility: model.ResultsHidden}, false, false},
		{"hidden still visible to admins", model.ElectionSettings{ResultVisibility: model.ResultsHidden}, true, true},
		{"live during election", model.ElectionSettings{ResultVisibility: model.ResultsLive, IsElectionActive: true}, false, true},
		{"post-election while voting runs", model.ElectionSettings{ResultVisibility: model.ResultsPostElection, IsElectionActive: true}, false, false},
		{"post-election after close", model.ElectionSettings{ResultVisibility: model.ResultsPostElection, IsElectionActive: false}, false, true},
		{"unknown mode defaults to hidden", model.ElectionSettings{ResultVisibility: "whenever"}, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResultsVisible(tc.settings, tc.isAdmin))
		})
	}
}
