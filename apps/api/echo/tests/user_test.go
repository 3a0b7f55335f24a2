package tests

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/dmorais/escolar/apps/api/echo"
	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/user"
	testutil "github.com/dmorais/escolar/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awesome", "awe@test.cd", "(awesome|pwd)", nil, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog01", "ndog@test.cd", "woof", []string{user.RoleStudent}, false)

	tests := []httpTest{
		{name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest},
		{
			name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "wrong password", body: marchallObj(t, echoapi.LoginRequest{Username: usr.Username, Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, echoapi.LoginRequest{Username: "ndog01", Password: "woof"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "login with username", body: marchallObj(t, echoapi.LoginRequest{Username: usr.Username, Password: "(awesome|pwd)"}),
			wantCode: http.StatusOK,
		},
		{
			name: "login with email", body: marchallObj(t, echoapi.LoginRequest{Username: usr.Email, Password: "(awesome|pwd)"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if resp.Token == "" {
					t.Error("expected a token")
				}
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)

	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, hero),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Get all", path: "/v1/users", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, admin, hero)},
		{name: "search (unknown)", path: "/v1/users?search=lol", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "search", path: "/v1/users?search=hero", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, hero)},
		{
			name: "role=admin:", path: "/v1/users?role=admin%3A", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, admin),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_detail(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other1", "other@test.cd", "", []string{user.RoleStudent}, true)

	adminToken := getToken(t, admin)
	heroToken := getToken(t, hero)
	path := func(id int) string { return "/v1/users/" + strconv.Itoa(id) }

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: path(hero.ID), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Own detail", method: http.MethodGet, path: path(hero.ID), token: heroToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, hero),
		},
		{
			name: "Other's detail hidden from non-admin", method: http.MethodGet, path: path(other.ID), token: heroToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Admin sees any detail", method: http.MethodGet, path: path(other.ID), token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, other),
		},
		{
			name: "Unknown user", method: http.MethodGet, path: path(999), token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "Non-admin cannot delete", method: http.MethodDelete, path: path(hero.ID), token: heroToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Admin cannot delete self", method: http.MethodDelete, path: path(admin.ID), token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Admin deletes", method: http.MethodDelete, path: path(other.ID), token: adminToken, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_refreshToken(t *testing.T) {
	app := setup(t)

	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog01", "ndog@test.cd", "", []string{user.RoleStudent}, false)
	hero := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", []string{user.RoleStudent}, true)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   strconv.Itoa(hero.ID),
			Audience:  "Escolar",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		IsStudent:    hero.IsStudent(),
		Roles:        hero.Roles,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, hero), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}
