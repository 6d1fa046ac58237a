package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomy_Matching(t *testing.T) {
	t.Run("wrapped persistence error unwraps to cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := fmt.Errorf("save categories: %w", &PersistenceError{Cause: cause})

		var perr *PersistenceError
		if !errors.As(err, &perr) {
			t.Fatal("errors.As failed to find *PersistenceError")
		}
		if !errors.Is(err, cause) {
			t.Error("errors.Is failed to reach the wrapped cause")
		}
	})

	t.Run("artifact error unwraps to cause", func(t *testing.T) {
		cause := errors.New("encode failed")
		var aerr *ArtifactError
		err := fmt.Errorf("render nota: %w", &ArtifactError{Cause: cause})
		if !errors.As(err, &aerr) {
			t.Fatal("errors.As failed to find *ArtifactError")
		}
		if aerr.Unwrap() != cause {
			t.Error("Unwrap() did not return the cause")
		}
	})

	t.Run("messages name the offending value", func(t *testing.T) {
		tests := []struct {
			err  error
			want string
		}{
			{&ValidationError{Field: "amount", Reason: "must not be negative"}, "invalid amount: must not be negative"},
			{&NotFoundError{ID: "tx-9"}, "transaction tx-9 not found"},
			{&DuplicateError{Value: "Donasi"}, `"Donasi" already exists`},
			{&ProtectedError{Value: "Lainnya"}, `"Lainnya" is a default category and cannot be deleted`},
		}
		for _, tt := range tests {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		}
	})
}
