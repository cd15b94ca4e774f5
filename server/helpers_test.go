package server

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Daskott/rolodex/server/auth"
	"github.com/Daskott/rolodex/server/auth/key"
	"github.com/Daskott/rolodex/server/models"
	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// fakeMailer records every dispatch instead of talking to an smtp host
type fakeMailer struct {
	sentTo      []string
	sentSubject []string
	sentBody    []string
	failNext    bool
}

func (fm *fakeMailer) SendEmail(toAddress, subject, body string) error {
	if fm.failNext {
		fm.failNext = false
		return errors.New("smtp connection refused")
	}

	fm.sentTo = append(fm.sentTo, toAddress)
	fm.sentSubject = append(fm.sentSubject, subject)
	fm.sentBody = append(fm.sentBody, body)
	return nil
}

func setupTestServer(t *testing.T) (*mux.Router, *fakeMailer) {
	t.Helper()
	models.InitializeTestDb()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("could not generate test key: %v", err)
	}

	privateKeyPem := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	authKeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(string(privateKeyPem))
	if err != nil {
		t.Fatalf("could not create test key pair: %v", err)
	}

	fm := &fakeMailer{}
	mail = fm

	return NewRouter(), fm
}

func createTestUser(t *testing.T, firstName, lastName, email string) *models.User {
	t.Helper()

	user := &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  "very-secure",
	}

	if err := models.CreateUser(user); err != nil {
		t.Fatalf("could not create user %v: %v", email, err)
	}

	return user
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	isAdmin, err := user.IsAdmin()
	if err != nil {
		t.Fatalf("could not look up role for %v: %v", user.Email, err)
	}

	token, err := auth.EncodeJWT(auth.RolodexTokenClaims{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   isAdmin,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}, authKeyPair)
	if err != nil {
		t.Fatalf("could not encode token for %v: %v", user.Email, err)
	}

	return token
}

func performRequest(router *mux.Router, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr
}

func decodePayload(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) ResponsePayload {
	t.Helper()

	payload := ResponsePayload{Data: data}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("could not decode response body: %v", err)
	}

	return payload
}

func TestNormalizeToUTCDate(t *testing.T) {
	birthDate, err := time.Parse(time.RFC3339, "2000-05-01T00:00:00-05:00")
	if err != nil {
		t.Fatal(err)
	}

	normalized := normalizeToUTCDate(birthDate)
	expected := time.Date(2000, time.May, 1, 0, 0, 0, 0, time.UTC)
	if !normalized.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, normalized)
	}
}

func TestCanAccessUserResource(t *testing.T) {
	testCases := []struct {
		desc     string
		method   string
		path     string
		uid      string
		subject  string
		isAdmin  bool
		expected bool
	}{
		{"own record", "PUT", "/users/1", "1", "1", false, true},
		{"someone else's record", "GET", "/users/2", "2", "1", false, false},
		{"admin GET on user", "GET", "/users/2", "2", "1", true, true},
		{"admin DELETE on user", "DELETE", "/users/2", "2", "1", true, true},
		{"admin PUT on user", "PUT", "/users/2", "2", "1", true, false},
		{"admin GET on another user's contacts", "GET", "/users/2/contacts", "2", "1", true, false},
		{"admin GET on another user's categories", "GET", "/users/2/categories", "2", "1", true, false},
	}

	for _, tcase := range testCases {
		t.Run(tcase.desc, func(t *testing.T) {
			req := httptest.NewRequest(tcase.method, tcase.path, nil)
			req = mux.SetURLVars(req, map[string]string{"uid": tcase.uid})

			claims := &auth.RolodexTokenClaims{
				IsAdmin:        tcase.isAdmin,
				StandardClaims: jwt.StandardClaims{Subject: tcase.subject},
			}

			if canAccessUserResource(req, claims) != tcase.expected {
				t.Errorf("Expected access=%v for %v %v", tcase.expected, tcase.method, tcase.path)
			}
		})
	}
}
