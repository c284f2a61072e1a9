package auth

import "testing"

func TestVerifyBearer(t *testing.T) {
	if err := VerifyBearer("s3cret", "Bearer s3cret"); err != nil {
		t.Fatalf("valid credential rejected: %v", err)
	}
	if err := VerifyBearer("s3cret", "Bearer wrong"); err != ErrMismatch {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if err := VerifyBearer("s3cret", ""); err != ErrMissing {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if err := VerifyBearer("s3cret", "Basic s3cret"); err != ErrMissing {
		t.Fatalf("expected ErrMissing for non-bearer scheme, got %v", err)
	}
	if err := VerifyBearer("", "Bearer anything"); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
