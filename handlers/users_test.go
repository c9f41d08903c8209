// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/goodreads/auth"
	"github.com/danielhkuo/goodreads/cliparse"
	"github.com/danielhkuo/goodreads/forms"
	"github.com/danielhkuo/goodreads/middleware"
	"github.com/danielhkuo/goodreads/models"
	"github.com/danielhkuo/goodreads/templates"
	"github.com/danielhkuo/goodreads/testutil"
)

type testEnv struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *auth.Sessions
	users    *UserHandler
	books    *BookHandler
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	tmpl, err := templates.New()
	require.NoError(t, err)
	sessions := auth.NewSessions(db, cfg.SecretKey, cfg.SessionTTL)

	return &testEnv{
		db:       db,
		cfg:      cfg,
		sessions: sessions,
		users:    NewUserHandler(db, cfg, tmpl, sessions),
		books:    NewBookHandler(db, cfg, tmpl),
	}
}

// serve runs h behind the session middleware, the way the router mounts it
func (e *testEnv) serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	middleware.WithSession(e.sessions, false, h).ServeHTTP(w, req)
	return w
}

func (e *testEnv) createUser(t *testing.T) *models.User {
	t.Helper()
	return testutil.CreateTestUser(t, e.db, models.User{
		Username:  "hamidbek2669",
		FirstName: "Hamid",
		LastName:  "Esbergenov",
		Email:     "hamidesbergenov@gmail.com",
	}, "somepass")
}

func registrationForm() url.Values {
	return url.Values{
		"username":   {"hamidbek2669"},
		"first_name": {"Hamid"},
		"last_name":  {"Esbergenov"},
		"email":      {"hamidesbergenov@gmail.com"},
		"password":   {"somepassword"},
	}
}

func TestRegisterForm(t *testing.T) {
	env := setup(t)

	w := env.serve(env.users.RegisterForm, testutil.MakeFormRequest("GET", "/users/register/", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `name="username"`)
	assert.Contains(t, w.Body.String(), `name="password"`)
}

func TestRegister_CreatesAccount(t *testing.T) {
	env := setup(t)

	w := env.serve(env.users.Register, testutil.MakeFormRequest("POST", "/users/register/", registrationForm()))

	testutil.AssertStatus(t, w, http.StatusFound)
	assert.Equal(t, "/users/login/", w.Header().Get("Location"))
	assert.Equal(t, 1, testutil.CountUsers(t, env.db))

	u, err := auth.GetUserByUsername(context.Background(), env.db, "hamidbek2669")
	require.NoError(t, err)
	assert.Equal(t, "Hamid", u.FirstName)
	assert.Equal(t, "Esbergenov", u.LastName)
	assert.Equal(t, "hamidesbergenov@gmail.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "somepassword", u.Password)
	assert.True(t, auth.CheckPassword(u.Password, "somepassword"))
}

func TestRegister_RequiredFields(t *testing.T) {
	env := setup(t)

	form := url.Values{
		"first_name": {"Hamid"},
		"email":      {"hamidesbergenov@gmail.com"},
	}
	w := env.serve(env.users.Register, testutil.MakeFormRequest("POST", "/users/register/", form))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, 0, testutil.CountUsers(t, env.db))
	assert.Contains(t, w.Body.String(), forms.MsgRequired)
	assert.Contains(t, w.Body.String(), `value="Hamid"`)
}

func TestRegister_InvalidEmail(t *testing.T) {
	env := setup(t)

	form := registrationForm()
	form.Set("email", "invalid-email")
	w := env.serve(env.users.Register, testutil.MakeFormRequest("POST", "/users/register/", form))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, 0, testutil.CountUsers(t, env.db))
	assert.Contains(t, w.Body.String(), forms.MsgInvalidEmail)
}

func TestRegister_UniqueUsername(t *testing.T) {
	env := setup(t)
	testutil.CreateTestUser(t, env.db, models.User{Username: "hamidbek2669", FirstName: "Hamid"}, "somepass")

	w := env.serve(env.users.Register, testutil.MakeFormRequest("POST", "/users/register/", registrationForm()))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, 1, testutil.CountUsers(t, env.db))
	assert.Contains(t, w.Body.String(), forms.MsgUsernameTaken)
}

func TestRegister_LongPassword(t *testing.T) {
	env := setup(t)

	password := strings.Repeat("a", 100)
	form := registrationForm()
	form.Set("password", password)
	w := env.serve(env.users.Register, testutil.MakeFormRequest("POST", "/users/register/", form))

	testutil.AssertStatus(t, w, http.StatusFound)
	require.Equal(t, 1, testutil.CountUsers(t, env.db))

	login := url.Values{"username": {"hamidbek2669"}, "password": {password}}
	w = env.serve(env.users.Login, testutil.MakeFormRequest("POST", "/users/login/", login))
	testutil.AssertStatus(t, w, http.StatusFound)
	assert.NotNil(t, testutil.SessionCookie(w))
}

func TestRegister_ConcurrentDuplicates(t *testing.T) {
	env := setup(t)

	const attempts = 8
	codes := make([]int, attempts)
	bodies := make([]string, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := env.serve(env.users.Register, testutil.MakeFormRequest("POST", "/users/register/", registrationForm()))
			codes[i] = w.Code
			bodies[i] = w.Body.String()
		}(i)
	}
	wg.Wait()

	created := 0
	for i, code := range codes {
		switch code {
		case http.StatusFound:
			created++
		case http.StatusOK:
			assert.Contains(t, bodies[i], forms.MsgUsernameTaken)
		default:
			t.Errorf("attempt %d: unexpected status %d: %s", i, code, bodies[i])
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, testutil.CountUsers(t, env.db))
}

func TestRegister_InsertLosesRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tmpl, err := templates.New()
	require.NoError(t, err)
	cfg := testutil.GetTestConfig()
	h := NewUserHandler(db, cfg, tmpl, auth.NewSessions(db, cfg.SecretKey, cfg.SessionTTL))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	w := httptest.NewRecorder()
	h.Register(w, testutil.MakeFormRequest("POST", "/users/register/", registrationForm()))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), forms.MsgUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileEdit_UpdateLosesRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tmpl, err := templates.New()
	require.NoError(t, err)
	cfg := testutil.GetTestConfig()
	h := NewUserHandler(db, cfg, tmpl, auth.NewSessions(db, cfg.SecretKey, cfg.SessionTTL))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE users").
		WillReturnError(&pq.Error{Code: "23505"})

	form := url.Values{"username": {"newname"}, "email": {"hamidesbergenov@gmail.com"}}
	req := testutil.MakeFormRequest("POST", "/users/profile/edit/", form)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: "u1", Username: "hamidbek2669"}))

	w := httptest.NewRecorder()
	h.ProfileEdit(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), forms.MsgUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginForm_KeepsSafeNext(t *testing.T) {
	env := setup(t)

	w := env.serve(env.users.LoginForm, testutil.MakeFormRequest("GET", "/users/login/?next=/users/profile/", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `name="next" value="/users/profile/"`)

	w = env.serve(env.users.LoginForm, testutil.MakeFormRequest("GET", "/users/login/?next=https://evil.example/", nil))
	assert.Contains(t, w.Body.String(), `name="next" value=""`)
}

func TestLogin_Success(t *testing.T) {
	env := setup(t)
	user := env.createUser(t)

	form := url.Values{"username": {"hamidbek2669"}, "password": {"somepass"}}
	w := env.serve(env.users.Login, testutil.MakeFormRequest("POST", "/users/login/", form))

	testutil.AssertStatus(t, w, http.StatusFound)
	assert.Equal(t, "/home/", w.Header().Get("Location"))

	cookie := testutil.SessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	got := testutil.SessionUser(t, env.db, env.cfg, cookie)
	require.NotNil(t, got, "session should be authenticated")
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.LastLogin)
}

func TestLogin_RedirectsToNext(t *testing.T) {
	env := setup(t)
	env.createUser(t)

	tests := []struct {
		next string
		want string
	}{
		{"/users/profile/", "/users/profile/"},
		{"https://evil.example/", "/home/"},
		{"//evil.example/", "/home/"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			form := url.Values{"username": {"hamidbek2669"}, "password": {"somepass"}, "next": {tt.next}}
			w := env.serve(env.users.Login, testutil.MakeFormRequest("POST", "/users/login/", form))

			testutil.AssertStatus(t, w, http.StatusFound)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	env := setup(t)
	env.createUser(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong username", "wrong_username", "somepass"},
		{"wrong username and password", "wrong_username", "wrong_password"},
		{"wrong password", "hamidbek2669", "wrong_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"username": {tt.username}, "password": {tt.password}}
			w := env.serve(env.users.Login, testutil.MakeFormRequest("POST", "/users/login/", form))

			testutil.AssertStatus(t, w, http.StatusOK)
			assert.Contains(t, w.Body.String(), forms.MsgInvalidLogin)
			assert.Nil(t, testutil.SessionCookie(w))
		})
	}
	assert.Equal(t, 0, testutil.CountRows(t, env.db, "sessions"))
}

func TestLogin_InactiveUser(t *testing.T) {
	env := setup(t)
	user := env.createUser(t)
	_, err := env.db.Exec(`UPDATE users SET is_active = FALSE WHERE id = $1`, user.ID)
	require.NoError(t, err)

	form := url.Values{"username": {"hamidbek2669"}, "password": {"somepass"}}
	w := env.serve(env.users.Login, testutil.MakeFormRequest("POST", "/users/login/", form))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), forms.MsgInvalidLogin)
	assert.Nil(t, testutil.SessionCookie(w))
}

func TestLogin_MissingFields(t *testing.T) {
	env := setup(t)

	w := env.serve(env.users.Login, testutil.MakeFormRequest("POST", "/users/login/", url.Values{}))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), forms.MsgRequired)
	assert.NotContains(t, w.Body.String(), forms.MsgInvalidLogin)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	env := setup(t)
	user := env.createUser(t)
	old := testutil.LoginAs(t, env.db, env.cfg, user)

	form := url.Values{"username": {"hamidbek2669"}, "password": {"somepass"}}
	w := env.serve(env.users.Login, testutil.MakeFormRequest("POST", "/users/login/", form, old))

	testutil.AssertStatus(t, w, http.StatusFound)
	assert.Nil(t, testutil.SessionUser(t, env.db, env.cfg, old))
	assert.NotNil(t, testutil.SessionUser(t, env.db, env.cfg, testutil.SessionCookie(w)))
	assert.Equal(t, 1, testutil.CountRows(t, env.db, "sessions"))
}

func TestLogout(t *testing.T) {
	env := setup(t)
	user := env.createUser(t)
	cookie := testutil.LoginAs(t, env.db, env.cfg, user)
	require.NotNil(t, testutil.SessionUser(t, env.db, env.cfg, cookie))

	w := env.serve(env.users.Logout, testutil.MakeFormRequest("GET", "/users/logout/", nil, cookie))

	testutil.AssertStatus(t, w, http.StatusFound)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Nil(t, testutil.SessionUser(t, env.db, env.cfg, cookie))

	cleared := testutil.SessionCookie(w)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestLogout_Anonymous(t *testing.T) {
	env := setup(t)

	w := env.serve(env.users.Logout, testutil.MakeFormRequest("GET", "/users/logout/", nil))

	testutil.AssertStatus(t, w, http.StatusFound)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestProfile_LoginRequired(t *testing.T) {
	env := setup(t)

	w := env.serve(middleware.LoginRequired(env.users.Profile), testutil.MakeFormRequest("GET", "/users/profile/", nil))

	testutil.AssertStatus(t, w, http.StatusFound)
	assert.Equal(t, "/users/login/?next=/users/profile/", w.Header().Get("Location"))
}

func TestProfile_Details(t *testing.T) {
	env := setup(t)
	user := env.createUser(t)
	cookie := testutil.LoginAs(t, env.db, env.cfg, user)

	w := env.serve(middleware.LoginRequired(env.users.Profile), testutil.MakeFormRequest("GET", "/users/profile/", nil, cookie))

	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	assert.Contains(t, body, user.Username)
	assert.Contains(t, body, user.FirstName)
	assert.Contains(t, body, user.LastName)
	assert.Contains(t, body, user.Email)
}

func TestProfileEditForm_Prefilled(t *testing.T) {
	env := setup(t)
	user := env.createUser(t)
	cookie := testutil.LoginAs(t, env.db, env.cfg, user)

	w := env.serve(middleware.LoginRequired(env.users.ProfileEditForm), testutil.MakeFormRequest("GET", "/users/profile/edit/", nil, cookie))

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), `value="Esbergenov"`)
	assert.Contains(t, w.Body.String(), `value="hamidesbergenov@gmail.com"`)
}

func TestProfileEdit_Updates(t *testing.T) {
	env := setup(t)
	user := env.createUser(t)
	cookie := testutil.LoginAs(t, env.db, env.cfg, user)

	form := url.Values{
		"username":   {"hamidbek2669"},
		"first_name": {"Hamid"},
		"last_name":  {"Yesbergenov"},
		"email":      {"esbergenovhamid@gmail.com"},
	}
	w := env.serve(middleware.LoginRequired(env.users.ProfileEdit), testutil.MakeFormRequest("POST", "/users/profile/edit/", form, cookie))

	testutil.AssertStatus(t, w, http.StatusFound)
	assert.Equal(t, "/users/profile/", w.Header().Get("Location"))

	got, err := auth.GetUserByID(context.Background(), env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yesbergenov", got.LastName)
	assert.Equal(t, "esbergenovhamid@gmail.com", got.Email)
}

func TestProfileEdit_Errors(t *testing.T) {
	env := setup(t)
	user := env.createUser(t)
	testutil.CreateTestUser(t, env.db, models.User{Username: "taken"}, "pass")
	cookie := testutil.LoginAs(t, env.db, env.cfg, user)

	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"username taken", "username", "taken", forms.MsgUsernameTaken},
		{"username missing", "username", "", forms.MsgRequired},
		{"invalid email", "email", "nope", forms.MsgInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{
				"username":   {"hamidbek2669"},
				"first_name": {"Hamid"},
				"last_name":  {"Changed"},
				"email":      {"hamidesbergenov@gmail.com"},
			}
			form.Set(tt.field, tt.value)
			w := env.serve(middleware.LoginRequired(env.users.ProfileEdit), testutil.MakeFormRequest("POST", "/users/profile/edit/", form, cookie))

			testutil.AssertStatus(t, w, http.StatusOK)
			assert.Contains(t, w.Body.String(), tt.want)

			got, err := auth.GetUserByID(context.Background(), env.db, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "Esbergenov", got.LastName)
		})
	}
}
