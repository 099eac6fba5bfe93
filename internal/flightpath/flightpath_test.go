package flightpath

import (
	"fmt"
	"testing"

	"flight-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legs(pairs ...[2]string) []models.Leg {
	out := make([]models.Leg, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.Leg{Origin: p[0], Destination: p[1]})
	}
	return out
}

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name string
		in   []models.Leg
		want []models.Leg
	}{
		{
			name: "empty",
			in:   nil,
			want: []models.Leg{},
		},
		{
			name: "single leg",
			in:   legs([2]string{"SFO", "ATL"}),
			want: legs([2]string{"SFO", "ATL"}),
		},
		{
			name: "two legs in order",
			in:   legs([2]string{"SFO", "ATL"}, [2]string{"ATL", "EWR"}),
			want: legs([2]string{"SFO", "ATL"}, [2]string{"ATL", "EWR"}),
		},
		{
			name: "two legs reversed",
			in:   legs([2]string{"ATL", "EWR"}, [2]string{"SFO", "ATL"}),
			want: legs([2]string{"SFO", "ATL"}, [2]string{"ATL", "EWR"}),
		},
		{
			name: "three legs one out of order",
			in:   legs([2]string{"MIA", "LGA"}, [2]string{"SEA", "DEN"}, [2]string{"DEN", "MIA"}),
			want: legs([2]string{"SEA", "DEN"}, [2]string{"DEN", "MIA"}, [2]string{"MIA", "LGA"}),
		},
		{
			name: "cycle only",
			in:   legs([2]string{"A", "B"}, [2]string{"B", "A"}),
			want: []models.Leg{},
		},
		{
			name: "duplicate origin keeps later leg",
			in:   legs([2]string{"A", "B"}, [2]string{"A", "C"}),
			want: legs([2]string{"A", "C"}),
		},
		{
			name: "disjoint chains keep the first start",
			in:   legs([2]string{"LAX", "ORD"}, [2]string{"SFO", "ATL"}, [2]string{"ORD", "JFK"}),
			want: legs([2]string{"LAX", "ORD"}, [2]string{"ORD", "JFK"}),
		},
		{
			name: "cycle reachable from start stops",
			in:   legs([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "B"}),
			want: legs([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "B"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconstruct(tt.in))
		})
	}
}

func TestReconstruct_AnyPermutation(t *testing.T) {
	codes := []string{"SEA", "DEN", "MIA", "LGA", "BOS", "ORD"}
	chain := make([]models.Leg, 0, len(codes)-1)
	for i := 0; i+1 < len(codes); i++ {
		chain = append(chain, models.Leg{Origin: codes[i], Destination: codes[i+1]})
	}

	count := 0
	permute(append([]models.Leg(nil), chain...), 0, func(p []models.Leg) {
		count++
		got := Reconstruct(p)
		require.Equal(t, chain, got, "permutation %v", p)
	})
	assert.Equal(t, 120, count)
}

func TestReconstruct_DoesNotMutateInput(t *testing.T) {
	in := legs([2]string{"ATL", "EWR"}, [2]string{"SFO", "ATL"})
	snapshot := append([]models.Leg(nil), in...)
	Reconstruct(in)
	assert.Equal(t, snapshot, in)
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(legs([2]string{"SEA", "DEN"}, [2]string{"DEN", "MIA"}, [2]string{"MIA", "LGA"}))
	require.NoError(t, err)
	assert.Equal(t, models.Leg{Origin: "SEA", Destination: "LGA"}, summary)

	summary, err = Summarize(legs([2]string{"A", "B"}))
	require.NoError(t, err)
	assert.Equal(t, models.Leg{Origin: "A", Destination: "B"}, summary)

	_, err = Summarize(nil)
	assert.ErrorIs(t, err, ErrNoPath)
}

func permute(l []models.Leg, k int, visit func([]models.Leg)) {
	if k == len(l) {
		visit(append([]models.Leg(nil), l...))
		return
	}
	for i := k; i < len(l); i++ {
		l[k], l[i] = l[i], l[k]
		permute(l, k+1, visit)
		l[k], l[i] = l[i], l[k]
	}
}

func BenchmarkReconstruct(b *testing.B) {
	in := make([]models.Leg, 0, 1000)
	for i := 999; i >= 0; i-- {
		in = append(in, models.Leg{Origin: fmt.Sprintf("N%04d", i), Destination: fmt.Sprintf("N%04d", i+1)})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Reconstruct(in)
	}
}
