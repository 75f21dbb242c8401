package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TestContext holds per-scenario state: the actors known by alias, the
// donations they created, and the last HTTP response.
type TestContext struct {
	BaseURL    string
	HTTPClient *http.Client

	signingKey []byte
	issuer     string
	audience   string

	actors    map[string]uuid.UUID
	donations map[string]uint64

	LastResponse *http.Response
	LastBody     []byte
}

// NewTestContext reads the target from the environment. The signing key,
// issuer and audience must match the server under test.
func NewTestContext() *TestContext {
	tc := &TestContext{
		BaseURL:    envOr("E2E_BASE_URL", "http://localhost:8080"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		signingKey: []byte(envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production")),
		issuer:     envOr("JWT_ISSUER", "givekindly"),
		audience:   envOr("JWT_AUDIENCE", "givekindly-ledger"),
	}
	tc.Reset()
	return tc
}

// Reset clears scenario state between scenarios.
func (tc *TestContext) Reset() {
	tc.actors = make(map[string]uuid.UUID)
	tc.donations = make(map[string]uint64)
	tc.LastResponse = nil
	tc.LastBody = nil
}

// ActorID returns the identity behind alias, minting a fresh one on first use
// so scenarios never collide on a shared server.
func (tc *TestContext) ActorID(alias string) string {
	id, ok := tc.actors[alias]
	if !ok {
		id = uuid.New()
		tc.actors[alias] = id
	}
	return id.String()
}

func (tc *TestContext) token(alias string) (string, error) {
	actorID := tc.ActorID(alias)
	now := time.Now()
	claims := jwt.MapClaims{
		"actor_id": actorID,
		"sub":      actorID,
		"iss":      tc.issuer,
		"aud":      []string{tc.audience},
		"iat":      now.Unix(),
		"exp":      now.Add(5 * time.Minute).Unix(),
		"jti":      uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.signingKey)
}

// SetDonation remembers a donation id under alias.
func (tc *TestContext) SetDonation(alias string, id uint64) {
	tc.donations[alias] = id
}

// Donation resolves a donation alias.
func (tc *TestContext) Donation(alias string) (uint64, error) {
	id, ok := tc.donations[alias]
	if !ok {
		return 0, fmt.Errorf("no donation known as %q", alias)
	}
	return id, nil
}

// Do sends a request as alias. An empty alias sends it unauthenticated.
func (tc *TestContext) Do(ctx context.Context, method, path, alias string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if alias != "" {
		token, err := tc.token(alias)
		if err != nil {
			return fmt.Errorf("sign token for %s: %w", alias, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.LastResponse = resp
	tc.LastBody, err = io.ReadAll(resp.Body)
	return err
}

// Status returns the last response status, or 0 before any request.
func (tc *TestContext) Status() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

// Field decodes a top-level field from the last JSON body.
func (tc *TestContext) Field(name string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.LastBody, &body); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", string(tc.LastBody), err)
	}
	v, ok := body[name]
	if !ok {
		return nil, fmt.Errorf("field %q missing from %s", name, string(tc.LastBody))
	}
	return v, nil
}

// NumberField decodes a numeric field. JSON numbers arrive as float64, which
// is exact for every amount a scenario uses.
func (tc *TestContext) NumberField(name string) (uint64, error) {
	v, err := tc.Field(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is %T, not a number", name, v)
	}
	return uint64(f), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Body returns the raw last response body.
func (tc *TestContext) Body() []byte {
	return tc.LastBody
}
