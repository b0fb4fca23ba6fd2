package scheduler

import (
	"testing"

	"github.com/alexanderramin/gradeplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", PolicyLeastLoaded, false},
		{"least-loaded", PolicyLeastLoaded, false},
		{"round-robin", PolicyRoundRobin, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestRoundRobin_CyclesIgnoringLoad(t *testing.T) {
	tr := NewTracker([]*domain.Employee{makeEmployee("a", 480), makeEmployee("b", 480), makeEmployee("c", 480)})
	tr.Record("a", 400, at(9, 0))

	p := &RoundRobin{}
	var got []string
	for i := 0; i < 5; i++ {
		got = append(got, p.Select(tr).ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "a", "b"}, got)
}

func TestRoundRobin_EmptyRoster(t *testing.T) {
	p := &RoundRobin{}
	assert.Nil(t, p.Select(NewTracker(nil)))
}

func TestLeastLoaded_FollowsTracker(t *testing.T) {
	tr := NewTracker([]*domain.Employee{makeEmployee("a", 480), makeEmployee("b", 480)})
	tr.Record("a", 10, at(9, 0))

	p := &LeastLoaded{}
	assert.Equal(t, "b", p.Select(tr).ID)
}
