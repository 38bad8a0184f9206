package ids

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	names := []string{"report.pdf", "report (1).pdf", "notes.txt", "n"}

	tests := []struct {
		name      string
		input     string
		want      string
		wantErr   error // nil, *ErrNotFound, or *ErrAmbiguous
		wantCands []string
	}{
		{name: "exact match", input: "notes.txt", want: "notes.txt"},
		{name: "exact wins over prefix ambiguity", input: "n", want: "n"},
		{name: "unique prefix resolves", input: "note", want: "notes.txt"},
		{name: "whitespace trimmed", input: "  notes.txt\n", want: "notes.txt"},
		{
			name:      "ambiguous prefix errors",
			input:     "report",
			wantErr:   &ErrAmbiguous{},
			wantCands: []string{"report (1).pdf", "report.pdf"},
		},
		{name: "not found errors", input: "zzz", wantErr: &ErrNotFound{}},
		{name: "empty input", input: "   ", wantErr: &ErrNotFound{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, names)

			switch tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("got %q, want %q", got, tt.want)
				}
			case *ErrNotFound:
				var nf *ErrNotFound
				if !errors.As(err, &nf) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
			case *ErrAmbiguous:
				var amb *ErrAmbiguous
				if !errors.As(err, &amb) {
					t.Fatalf("expected ErrAmbiguous, got %v", err)
				}
				if !reflect.DeepEqual(amb.Candidates, tt.wantCands) {
					t.Errorf("candidates = %v, want %v", amb.Candidates, tt.wantCands)
				}
			}
		})
	}
}

func TestResolveNoNames(t *testing.T) {
	var nf *ErrNotFound
	if _, err := Resolve("a", nil); !errors.As(err, &nf) {
		t.Errorf("err = %v", err)
	}
}

func TestErrAmbiguousMessage(t *testing.T) {
	err := &ErrAmbiguous{Input: "a", Candidates: []string{"a1", "a2"}}
	if err.Error() != `ambiguous name "a" matches: a1, a2` {
		t.Errorf("Error() = %q", err.Error())
	}
}
