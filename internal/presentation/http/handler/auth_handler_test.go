package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/restoflow/websrm-adapter/pkg/utils"
)

func newRefreshRouter(m *utils.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auth/refresh", NewAuthHandler(m).Refresh)
	return router
}

func TestRefreshIssuesNewTokenPair(t *testing.T) {
	m := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	router := newRefreshRouter(m)

	refresh, err := m.GenerateRefreshToken("alice", []string{"operator"})
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	body := `{"refresh_token":"` + refresh + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.AccessToken == "" || resp.Data.RefreshToken == "" {
		t.Fatal("expected a new access and refresh token in the response")
	}

	claims, err := m.ValidateAccessToken(resp.Data.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.Operator != "alice" {
		t.Errorf("operator = %q, want %q", claims.Operator, "alice")
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "operator" {
		t.Errorf("roles = %v, want [operator]", claims.Roles)
	}
}

func TestRefreshRejectsInvalidToken(t *testing.T) {
	m := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	router := newRefreshRouter(m)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"not-a-token"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
