package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/joesive47/skillnexus-lms-sub005/core/user"
)

func createTestUser(t *testing.T, name, uname, email, pwd string, roles []string) user.User {
	t.Helper()
	usr, err := usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		t.Fatalf("createTestUser(): %v", err)
	}
	return usr
}

func TestUserApi_login(t *testing.T) {
	createTestUser(t, "Login User", "loginusr", "loginusr@skillnexus.test", "s3cr3t-pwd", []string{user.RoleStudent})

	tests := []httpTest{
		{
			name:     "valid credentials",
			body:     []byte(`{"username": "loginusr", "password": "s3cr3t-pwd"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "login with email",
			body:     []byte(`{"username": "loginusr@skillnexus.test", "password": "s3cr3t-pwd"}`),
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong password",
			body:     []byte(`{"username": "loginusr", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			body:     []byte(`{"username": "ghost", "password": "s3cr3t-pwd"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "empty payload",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				// token is generated; only check that one came back
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var res LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("decoding LoginResponse: %v", err)
				}
				if res.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserApi_tokenRefresh(t *testing.T) {
	usr := createTestUser(t, "Refresh User", "refreshusr", "refreshusr@skillnexus.test", "s3cr3t-pwd", []string{user.RoleStudent})

	t.Run("no token", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/token-refresh")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("valid token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, usr))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var res LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("decoding LoginResponse: %v", err)
		}
		if res.Token == "" {
			t.Error("failed! empty token")
		}
	})
}

func TestUserApi_retrieveSelf(t *testing.T) {
	usr := createTestUser(t, "Self User", "selfusr", "selfusr@skillnexus.test", "s3cr3t-pwd", []string{user.RoleStudent})

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, usr),
	}
	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, usr))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func TestUserApi_register(t *testing.T) {
	student := createTestUser(t, "Student User", "studentusr", "studentusr@skillnexus.test", "s3cr3t-pwd", []string{user.RoleStudent})
	admin := createTestUser(t, "Admin User", "adminusr", "adminusr@skillnexus.test", "s3cr3t-pwd", user.AllRoles)

	body := []byte(`{
		"name": "New Learner",
		"username": "newlearner",
		"email": "newlearner@skillnexus.test",
		"password": "s3cr3t-pwd",
		"password_confirm": "s3cr3t-pwd",
		"roles": ["student:"]
	}`)

	tests := []httpTest{
		{
			name:     "anonymous is rejected",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "student is rejected",
			token:    getToken(t, student),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "admin creates the user",
			token:    getToken(t, admin),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate username",
			token:    getToken(t, admin),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": user.ErrUserExists.Error(),
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", tt.token, body)
			app.ServeHTTP(rec, req)

			if tt.wantData == nil {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v: %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var usr user.User
				if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
					t.Fatalf("decoding User: %v", err)
				}
				if usr.Username != "newlearner" {
					t.Errorf("failed! username = %q", usr.Username)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
