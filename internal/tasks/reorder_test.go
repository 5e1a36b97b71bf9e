package tasks

import (
	"errors"
	"slices"
	"testing"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		seq      []string
		from, to int
		want     []string
		wantErr  error
	}{
		{name: "forward", seq: []string{"A", "B", "C", "D"}, from: 0, to: 2, want: []string{"B", "C", "A", "D"}},
		{name: "backward", seq: []string{"A", "B", "C", "D"}, from: 3, to: 1, want: []string{"A", "D", "B", "C"}},
		{name: "to end", seq: []string{"A", "B", "C"}, from: 0, to: 2, want: []string{"B", "C", "A"}},
		{name: "adjacent", seq: []string{"A", "B"}, from: 1, to: 0, want: []string{"B", "A"}},
		{name: "same index", seq: []string{"A", "B"}, from: 1, to: 1, wantErr: errSameIndex},
		{name: "negative", seq: []string{"A", "B"}, from: -1, to: 1, wantErr: errIndexRange},
		{name: "past end", seq: []string{"A", "B"}, from: 0, to: 2, wantErr: errIndexRange},
		{name: "empty", seq: nil, from: 0, to: 0, wantErr: errIndexRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := slices.Clone(tt.seq)
			got, err := Move(tt.seq, tt.from, tt.to)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if !slices.Equal(tt.seq, original) {
				t.Errorf("input modified: %v", tt.seq)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		full    []string
		before  []string
		after   []string
		want    []string
		wantErr error
	}{
		{
			name:   "everything visible",
			full:   []string{"A", "B", "C", "D"},
			before: []string{"A", "B", "C", "D"},
			after:  []string{"B", "C", "A", "D"},
			want:   []string{"B", "C", "A", "D"},
		},
		{
			name:   "hidden tasks keep their slots",
			full:   []string{"A", "x", "B", "y", "C"},
			before: []string{"A", "B", "C"},
			after:  []string{"C", "A", "B"},
			want:   []string{"C", "x", "A", "y", "B"},
		},
		{
			name:   "unchanged",
			full:   []string{"A", "x", "B"},
			before: []string{"A", "B"},
			after:  []string{"A", "B"},
			want:   []string{"A", "x", "B"},
		},
		{
			name:    "length mismatch",
			full:    []string{"A", "B"},
			before:  []string{"A", "B"},
			after:   []string{"A"},
			wantErr: errMismatch,
		},
		{
			name:    "foreign id",
			full:    []string{"A", "B"},
			before:  []string{"A", "B"},
			after:   []string{"A", "Z"},
			wantErr: errMismatch,
		},
		{
			name:    "duplicate visible id",
			full:    []string{"A", "B"},
			before:  []string{"A", "A"},
			after:   []string{"A", "A"},
			wantErr: errDuplicate,
		},
		{
			name:    "visible id missing from full",
			full:    []string{"A"},
			before:  []string{"A", "B"},
			after:   []string{"B", "A"},
			wantErr: errMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.full, tt.before, tt.after)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
