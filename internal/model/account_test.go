package model

import (
	"errors"
	"testing"
)

func TestSignupValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Signup
		ok   bool
	}{
		{"complete", Signup{UserName: "Kim", Email: "kim@example.com", Password: "pw", Confirm: "pw"}, true},
		{"missing name", Signup{Email: "kim@example.com", Password: "pw", Confirm: "pw"}, false},
		{"bad email", Signup{UserName: "Kim", Email: "kim", Password: "pw", Confirm: "pw"}, false},
		{"mismatch", Signup{UserName: "Kim", Email: "kim@example.com", Password: "pw", Confirm: "pw2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err == nil) != tt.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			var ve *ValidationError
			if err != nil && !errors.As(err, &ve) {
				t.Errorf("err = %T, want *ValidationError", err)
			}
		})
	}
}

func TestPasswordResetValidate(t *testing.T) {
	ok := PasswordReset{Email: "kim@example.com", Code: "123456", NewPassword: "n", Confirm: "n"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	missing := PasswordReset{Email: "kim@example.com"}
	var ve *ValidationError
	if err := missing.Validate(); !errors.As(err, &ve) || len(ve.Fields) != 2 {
		t.Errorf("Validate() = %v, want code and new password missing", err)
	}
	mismatch := ok
	mismatch.Confirm = "x"
	if err := mismatch.Validate(); err == nil {
		t.Error("mismatched passwords should fail")
	}
}

func TestProfileUpdateValidate(t *testing.T) {
	if err := (ProfileUpdate{UserName: "Kim", CurrentPassword: "pw"}).Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := (ProfileUpdate{UserName: " ", NewPassword: "n"}).Validate(); err == nil {
		t.Error("blank name and missing current password should fail")
	}
}
