package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agamariel/storefront/internal/auth"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// checkStatus сверяет код ответа: успешный пишется в recorder, ошибочный возвращается как *echo.HTTPError.
func checkStatus(t *testing.T, rec *httptest.ResponseRecorder, err error, expected int) {
	t.Helper()
	if expected < 400 {
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if rec.Code != expected {
			t.Errorf("Expected status %d, got %d", expected, rec.Code)
		}
		return
	}
	if err == nil {
		t.Fatalf("Expected error, got nil")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("Expected *echo.HTTPError, got %T", err)
	}
	if he.Code != expected {
		t.Errorf("Expected status %d, got %d", expected, he.Code)
	}
}

func authCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	return nil
}

func TestUserHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		mockService    *MockUserService
		expectedStatus int
		checkCookie    bool
	}{
		{
			name:        "successful registration",
			requestBody: `{"login":"test@example.com","password":"password123","name":"Ana"}`,
			mockService: &MockUserService{
				RegisterFunc: func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
					if req.Name != "Ana" {
						t.Errorf("name = %q, want Ana", req.Name)
					}
					return &models.User{ID: uuid.New(), Login: req.Login, Role: models.RoleUser}, "test-token", nil
				},
			},
			expectedStatus: http.StatusOK,
			checkCookie:    true,
		},
		{
			name:           "invalid JSON",
			requestBody:    `{"login":"test@example.com"`,
			mockService:    &MockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "empty credentials",
			requestBody: `{"login":"","password":""}`,
			mockService: &MockUserService{
				RegisterFunc: func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
					return nil, "", services.ErrEmptyCredentials
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "login already exists",
			requestBody: `{"login":"existing@example.com","password":"password123"}`,
			mockService: &MockUserService{
				RegisterFunc: func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
					return nil, "", services.ErrLoginTaken
				},
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:        "internal error",
			requestBody: `{"login":"test@example.com","password":"password123"}`,
			mockService: &MockUserService{
				RegisterFunc: func(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
					return nil, "", errors.New("database error")
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(tt.requestBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := NewUserHandler(tt.mockService, time.Hour)
			err := handler.Register(c)
			checkStatus(t, rec, err, tt.expectedStatus)

			if tt.checkCookie {
				cookie := authCookie(rec)
				if cookie == nil || cookie.Value == "" {
					t.Fatal("Authorization cookie not set")
				}
				if cookie.MaxAge != 3600 {
					t.Errorf("cookie MaxAge = %d, want 3600", cookie.MaxAge)
				}
				if !strings.Contains(rec.Body.String(), `"role":"user"`) {
					t.Errorf("body = %s, want role", rec.Body.String())
				}
			}
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		mockService    *MockUserService
		expectedStatus int
		checkCookie    bool
	}{
		{
			name:        "successful login",
			requestBody: `{"login":"test@example.com","password":"password123"}`,
			mockService: &MockUserService{
				LoginFunc: func(ctx context.Context, login, password string) (*models.User, string, error) {
					return &models.User{ID: uuid.New(), Login: login}, "test-token", nil
				},
			},
			expectedStatus: http.StatusOK,
			checkCookie:    true,
		},
		{
			name:           "invalid JSON",
			requestBody:    `{"login":"test@example.com"`,
			mockService:    &MockUserService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "empty credentials",
			requestBody: `{"login":"","password":""}`,
			mockService: &MockUserService{
				LoginFunc: func(ctx context.Context, login, password string) (*models.User, string, error) {
					return nil, "", services.ErrEmptyCredentials
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "invalid credentials",
			requestBody: `{"login":"test@example.com","password":"wrongpassword"}`,
			mockService: &MockUserService{
				LoginFunc: func(ctx context.Context, login, password string) (*models.User, string, error) {
					return nil, "", services.ErrInvalidCredentials
				},
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:        "internal error",
			requestBody: `{"login":"test@example.com","password":"password123"}`,
			mockService: &MockUserService{
				LoginFunc: func(ctx context.Context, login, password string) (*models.User, string, error) {
					return nil, "", errors.New("database error")
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(tt.requestBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := NewUserHandler(tt.mockService, time.Hour)
			err := handler.Login(c)
			checkStatus(t, rec, err, tt.expectedStatus)

			if tt.checkCookie && authCookie(rec) == nil {
				t.Error("Authorization cookie not set")
			}
		})
	}
}

func TestUserHandler_Me(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		setupContext   func(c echo.Context)
		mockService    *MockUserService
		expectedStatus int
	}{
		{
			name: "profile",
			setupContext: func(c echo.Context) {
				auth.SetCaller(c, models.Caller{UserID: userID, Login: "ana@example.com", Role: models.RoleUser})
			},
			mockService: &MockUserService{
				GetProfileFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
					return &models.User{ID: id, Login: "ana@example.com", Role: models.RoleUser}, nil
				},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "user not in context",
			setupContext:   func(c echo.Context) {},
			mockService:    &MockUserService{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "user deleted",
			setupContext: func(c echo.Context) {
				auth.SetCaller(c, models.Caller{UserID: userID})
			},
			mockService:    &MockUserService{},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "internal error",
			setupContext: func(c echo.Context) {
				auth.SetCaller(c, models.Caller{UserID: userID})
			},
			mockService: &MockUserService{
				GetProfileFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
					return nil, errors.New("database error")
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			tt.setupContext(c)

			err := NewUserHandler(tt.mockService, time.Hour).Me(c)
			checkStatus(t, rec, err, tt.expectedStatus)
		})
	}
}

func TestUserHandler_Logout(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/user/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := NewUserHandler(&MockUserService{}, time.Hour).Logout(c); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	cookie := authCookie(rec)
	if cookie == nil || cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("cookie = %+v, want cleared", cookie)
	}
}

func TestSetAuthToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	token := "test-token-value"
	NewUserHandler(&MockUserService{}, 24*time.Hour).setAuthToken(c, token)

	cookie := authCookie(rec)
	if cookie == nil {
		t.Fatal("Authorization cookie not set")
	}
	if cookie.Value != token {
		t.Errorf("Cookie value = %v, want %v", cookie.Value, token)
	}
	if !cookie.HttpOnly {
		t.Error("Cookie should be HttpOnly")
	}
	if cookie.Path != "/" {
		t.Errorf("Cookie path = %v, want /", cookie.Path)
	}
	if got := rec.Header().Get("Authorization"); got != "Bearer "+token {
		t.Errorf("Authorization header = %v, want Bearer %v", got, token)
	}
}
