package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagyelog/gagyelog/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, model.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	sess := model.Session{BaseURL: srv.URL, Token: "tok", UserID: 7}
	return NewClient(srv.Client()), sess
}

func TestLogin(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/user/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "a@b.c" || req.Password != "pw" {
			t.Errorf("body = %+v", req)
		}
		_, _ = io.WriteString(w, `{"userId":42,"token":"jwt","userName":"Kim"}`)
	})
	sess.Token = ""
	sess.UserID = 0

	got, err := client.Login(context.Background(), sess, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.Token != "jwt" || got.UserID != 42 || got.UserName != "Kim" || got.Email != "a@b.c" {
		t.Errorf("session = %+v", got)
	}
	if got.BaseURL != sess.BaseURL {
		t.Errorf("BaseURL = %q, want preserved", got.BaseURL)
	}
}

func TestLogin_RejectsMissingUserID(t *testing.T) {
	for _, body := range []string{
		`{"token":"jwt","userName":"Kim"}`,
		`{"userId":"abc","token":"jwt"}`,
		`{"userId":0,"token":"jwt"}`,
	} {
		client, sess := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		sess.Token = ""
		sess.UserID = 0

		got, err := client.Login(context.Background(), sess, "a@b.c", "pw")
		if err == nil {
			t.Errorf("Login(%s) = %+v, want error", body, got)
		}
		if got.Token != "" {
			t.Errorf("Login(%s) stored token %q on failure", body, got.Token)
		}
	}
}

func TestLogin_ErrorMessage(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"비밀번호가 틀렸습니다."}`)
	})

	_, err := client.Login(context.Background(), sess, "a@b.c", "bad")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "비밀번호가 틀렸습니다." {
		t.Errorf("APIError = %+v, want backend message", apiErr)
	}
}

func TestLedger_HeadersAndQuery(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		q := r.URL.Query()
		if q.Get("userId") != "7" || q.Get("year") != "2024" || q.Get("month") != "3" {
			t.Errorf("query = %v", q)
		}
		_, _ = io.WriteString(w, `[
			{"receiptId":1,"date":"2024-03-10","shop":"A","totalPrice":5000,"keywordId":1},
			{"receiptId":2,"date":"2024-03-10","shop":"B","totalPrice":"x","keywordId":1}
		]`)
	})

	result, err := client.Ledger(context.Background(), sess, 2024, time.March)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	if len(result.Transactions) != 2 || result.Malformed != 1 {
		t.Errorf("got %d transactions, %d malformed", len(result.Transactions), result.Malformed)
	}
}

func TestLedger_AllMonthsOmitsPeriod(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("year") {
			t.Errorf("year should be omitted, query = %v", r.URL.Query())
		}
		_, _ = io.WriteString(w, `[]`)
	})
	if _, err := client.Ledger(context.Background(), sess, 0, 0); err != nil {
		t.Fatalf("Ledger: %v", err)
	}
}

func TestNotLoggedIn_NoRequest(t *testing.T) {
	var calls atomic.Int32
	client, sess := newTestServer(t, func(_ http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	})
	sess.Token = ""

	if _, err := client.Challenges(context.Background(), sess); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("err = %v, want ErrNotLoggedIn", err)
	}
	if calls.Load() != 0 {
		t.Errorf("made %d requests, want 0", calls.Load())
	}
}

func TestCreateReceipt_ValidatesFirst(t *testing.T) {
	var calls atomic.Int32
	var got createReceiptRequest
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	})

	err := client.CreateReceipt(context.Background(), sess, model.EntryInput{Date: "2024-03-10"})
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if calls.Load() != 0 {
		t.Fatal("invalid entry should not reach the backend")
	}

	in := model.EntryInput{Date: "2024-03-10", CategoryID: model.CategoryTransport, Amount: 1450}
	if err := client.CreateReceipt(context.Background(), sess, in); err != nil {
		t.Fatalf("CreateReceipt: %v", err)
	}
	if got.UserID != 7 || got.KeywordID != 2 || got.TotalPrice != 1450 || got.Shop != "교통" {
		t.Errorf("request = %+v", got)
	}
}

func TestBudget(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   int64
		errIs  error
	}{
		{"set", http.StatusOK, `{"budget":300000}`, 300000, nil},
		{"null budget", http.StatusOK, `{"budget":null}`, 0, nil},
		{"not found defaults to zero", http.StatusNotFound, ``, 0, nil},
		{"server error", http.StatusInternalServerError, `{"message":"db down"}`, 0, errors.New("any")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, sess := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := client.Budget(context.Background(), sess, 2024, time.March)
			if (err != nil) != (tt.errIs != nil) {
				t.Fatalf("err = %v", err)
			}
			if got != tt.want {
				t.Errorf("Budget = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMonthlyTotal_PlainNumber(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "123450\n")
	})
	got, err := client.MonthlyTotal(context.Background(), sess)
	if err != nil {
		t.Fatalf("MonthlyTotal: %v", err)
	}
	if got != 123450 {
		t.Errorf("MonthlyTotal = %d, want 123450", got)
	}
}

func TestChallenges(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":1,"type":"SAVING","startDate":"2024-03-01","endDate":"2024-03-31","success":false,"evaluated":false},
			{"id":2,"type":"CATEGORY_LIMIT","targetAmount":50000,"targetCategory":"외식","startDate":"2024-03-04","endDate":"2024-03-10","success":true,"evaluated":true}
		]`)
	})

	got, err := client.Challenges(context.Background(), sess)
	if err != nil {
		t.Fatalf("Challenges: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d challenges", len(got))
	}
	if got[0].TargetAmount != nil {
		t.Error("SAVING challenge should have no target amount")
	}
	if got[1].TargetAmount == nil || *got[1].TargetAmount != 50000 || !got[1].Success {
		t.Errorf("second = %+v", got[1])
	}

	one, err := client.Challenge(context.Background(), sess, 2)
	if err != nil || one.ID != 2 {
		t.Errorf("Challenge(2) = %+v, %v", one, err)
	}
	if _, err := client.Challenge(context.Background(), sess, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("Challenge(99) err = %v, want ErrNotFound", err)
	}
}

func TestDeleteReceipt_Path(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/receipt/15" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := client.DeleteReceipt(context.Background(), sess, 15); err != nil {
		t.Fatalf("DeleteReceipt: %v", err)
	}
}

func TestOAuthLogin_RequiresConsent(t *testing.T) {
	client, sess := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/oauth/kakao" || r.URL.Query().Get("code") != "abc" {
			t.Errorf("unexpected request %s", r.URL)
		}
		_, _ = io.WriteString(w, `{"email":"k@kakao.com","userName":"Lee","requiresConsent":true}`)
	})
	sess.Token = ""

	res, err := client.OAuthLogin(context.Background(), sess, ProviderKakao, "abc")
	if err != nil {
		t.Fatalf("OAuthLogin: %v", err)
	}
	if !res.RequiresConsent || res.LoginType != "KAKAO" || res.Session.Email != "k@kakao.com" {
		t.Errorf("result = %+v", res)
	}
	if res.Session.LoggedIn() {
		t.Error("pending consent should not produce a usable session")
	}
}
