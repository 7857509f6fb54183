package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"testing"

	"github.com/gagyelog/gagyelog/internal/model"
)

func TestSignup(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/signup" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req signupRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.UserName != "Kim" || req.Email != "kim@example.com" || req.Password != "pw" {
			t.Errorf("body = %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
	})
	sess.Token = ""

	err := client.Signup(context.Background(), sess, model.Signup{UserName: " Kim ", Email: "kim@example.com", Password: "pw", Confirm: "pw"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
}

func TestSignup_ValidatesFirst(t *testing.T) {
	client, sess := newTestServer(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("request sent for an invalid signup")
	})
	var ve *model.ValidationError
	err := client.Signup(context.Background(), sess, model.Signup{UserName: "Kim", Email: "kim@example.com", Password: "a", Confirm: "b"})
	if !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestFindID(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   []string
		err    error
	}{
		{"single", http.StatusOK, `{"multiple":false,"email":"kim@example.com"}`, []string{"kim@example.com"}, nil},
		{"multiple", http.StatusOK, `{"multiple":true,"emailList":["a@x.com","b@x.com"]}`, []string{"a@x.com", "b@x.com"}, nil},
		{"empty", http.StatusOK, `{"multiple":false}`, nil, ErrNoAccount},
		{"bad request", http.StatusBadRequest, `{"message":"없음"}`, nil, ErrNoAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/user/find-id" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := client.FindID(context.Background(), sess, "Kim")
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindID = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPasswordResetFlow(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/user/send-reset-code":
			_, _ = io.WriteString(w, `{"success":true,"message":"sent"}`)
		case "/user/verify-reset-code":
			if body["code"] == "123456" {
				_, _ = io.WriteString(w, `{"verified":true}`)
				return
			}
			_, _ = io.WriteString(w, `{"verified":false,"message":"mismatch"}`)
		case "/user/reset-password-by-code":
			if body["email"] != "kim@example.com" || body["code"] != "123456" || body["newPassword"] != "new" {
				t.Errorf("reset body = %v", body)
			}
			_, _ = io.WriteString(w, `{"success":true,"message":"changed"}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	sess.Token = ""
	ctx := context.Background()

	msg, err := client.SendResetCode(ctx, sess, "kim@example.com")
	if err != nil || msg != "sent" {
		t.Fatalf("SendResetCode = %q, %v", msg, err)
	}
	if err := client.VerifyResetCode(ctx, sess, "kim@example.com", "000000"); err == nil {
		t.Error("wrong code should fail")
	}
	if err := client.VerifyResetCode(ctx, sess, "kim@example.com", "123456"); err != nil {
		t.Fatalf("VerifyResetCode: %v", err)
	}
	msg, err = client.ResetPassword(ctx, sess, model.PasswordReset{Email: "kim@example.com", Code: "123456", NewPassword: "new", Confirm: "new"})
	if err != nil || msg != "changed" {
		t.Errorf("ResetPassword = %q, %v", msg, err)
	}
}

func TestSendResetCode_Unsuccessful(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"unknown email"}`)
	})
	if _, err := client.SendResetCode(context.Background(), sess, "x@y.z"); err == nil {
		t.Error("success:false should be an error")
	}
}

func TestUpdateProfile(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/user/update" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if raw["userId"] != float64(7) || raw["userName"] != "Lee" || raw["currentPassword"] != "pw" {
			t.Errorf("body = %v", raw)
		}
		if v, ok := raw["newPassword"]; !ok || v != nil {
			t.Errorf("newPassword = %v, want explicit null", v)
		}
	})

	got, err := client.UpdateProfile(context.Background(), sess, model.ProfileUpdate{UserName: "Lee", CurrentPassword: "pw"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.UserName != "Lee" || got.Token != "tok" {
		t.Errorf("session = %+v", got)
	}
}

func TestUpdateProfile_WrongPassword(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"현재 비밀번호가 일치하지 않습니다."}`)
	})
	_, err := client.UpdateProfile(context.Background(), sess, model.ProfileUpdate{UserName: "Lee", CurrentPassword: "bad", NewPassword: "n"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("err = %v, want ErrWrongPassword", err)
	}
}

func TestUpdateProfile_RequiresLogin(t *testing.T) {
	client, sess := newTestServer(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("request sent without a session")
	})
	sess.Token = ""
	if _, err := client.UpdateProfile(context.Background(), sess, model.ProfileUpdate{UserName: "Lee", CurrentPassword: "pw"}); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("err = %v, want ErrNotLoggedIn", err)
	}
}
