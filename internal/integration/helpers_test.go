package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func truncateTables(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(),
		"TRUNCATE food_orders, food_items, booked_seats, payments, bookings, showtimes, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func createTestUser(t testing.TB, db *pgxpool.Pool) int {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestUserPassword), bcrypt.MinCost)
	require.NoError(t, err)

	var id int
	err = db.QueryRow(context.Background(), `
		INSERT INTO users (first_name, last_name, email, password_hash, activated)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`, TestUserFirstName, TestUserLastName, TestUserEmail, hash).Scan(&id)
	require.NoError(t, err)

	return id
}

// serve runs a single request through the application's router.
func serve(app *TestApp, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, prepareRequest(method, path, reader, nil, cookies))

	return rec
}

// login opens a session for the test user and returns its cookie.
func login(t testing.TB, app *TestApp) *http.Cookie {
	body := `{"email":"` + TestUserEmail + `","password":"` + TestUserPassword + `"}`

	rec := serve(app, http.MethodPost, "/sessions", body)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}

	t.Fatal("login did not set a session cookie")
	return nil
}

// showDate is tomorrow in the cinema's timezone, so evening showtimes on it
// are always bookable and cancellable.
func showDate(t testing.TB) string {
	loc, err := time.LoadLocation(TestTimezone)
	require.NoError(t, err)

	return time.Now().In(loc).AddDate(0, 0, 1).Format(domain.DateLayout)
}

func countRows(t testing.TB, db *pgxpool.Pool, table string) int {
	var n int
	err := db.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n)
	require.NoError(t, err)

	return n
}
