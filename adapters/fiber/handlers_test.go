package fiber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jonboulle/clockwork"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lborres/portal/core"
	"github.com/lborres/portal/pkg/logging"
)

// recordingLogger captures Error calls so tests can assert on what the
// handlers report for unexpected failures.
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Info(ctx context.Context, msg string, args ...any) {}

func (l *recordingLogger) Error(ctx context.Context, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprint(append([]any{msg}, args...)...))
}

func (l *recordingLogger) With(args ...any) logging.Logger { return l }

func (l *recordingLogger) errorLines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

func newTestApp(t *testing.T) (*fiber.App, *core.FakeStorage, *core.FakeObjectStorage, *recordingLogger) {
	t.Helper()

	storage := core.NewFakeStorage()
	objects := core.NewFakeObjectStorage()
	log := &recordingLogger{}

	auth := core.NewAuthService(storage, core.NewBcrypt(bcrypt.MinCost), core.NewTOTPEngine("Customer Portal"))
	sessions := core.NewSessionManager(core.DefaultSessionConfig(), storage, clockwork.NewRealClock())
	projects := core.NewProjectService(storage)
	files := core.NewFileService(objects, storage, core.DefaultFileConfig())

	app := fiber.New()
	NewHandler(auth, sessions, projects, files, log).RegisterRoutes(app)
	return app, storage, objects, log
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decodeJSON(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	return body
}

// registerAndLogin runs the happy-path onboarding and returns the bearer token.
func registerAndLogin(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"email":    email,
		"password": "Abcd123!",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	res, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    email,
		"password": "Abcd123!",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeJSON(t, res)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func authedRequest(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = jsonRequest(t, method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestRegister(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"email":     "a@b.com",
		"password":  "Abcd123!",
		"firstName": "Ada",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	body := decodeJSON(t, res)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user["email"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "password")
}

func TestRegister_Rejections(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{name: "weak password", body: fiber.Map{"email": "weak@b.com", "password": "password"}},
		{name: "missing email", body: fiber.Map{"password": "Abcd123!"}},
		{name: "bad phone", body: fiber.Map{"email": "p@b.com", "password": "Abcd123!", "phone": "12345"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", test.body))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, res.StatusCode)
			res.Body.Close()
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	registerAndLogin(t, app, "a@b.com")

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", fiber.Map{
		"email":    "a@b.com",
		"password": "Other123!",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	registerAndLogin(t, app, "a@b.com")

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "a@b.com",
		"password": "Wrong123!",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	body := decodeJSON(t, res)
	assert.Equal(t, core.ErrInvalidCredentials.Error(), body["error"])
}

// Full session lifecycle: login issues a token, the token opens the profile,
// logout revokes it, and the same token is then refused.
func TestSessionLifecycle(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	token := registerAndLogin(t, app, "a@b.com")
	assert.Len(t, token, 64)

	res, err := app.Test(authedRequest(t, http.MethodGet, "/api/auth/profile", token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeJSON(t, res)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", user["email"])

	res, err = app.Test(authedRequest(t, http.MethodPost, "/api/auth/logout", token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res, err = app.Test(authedRequest(t, http.MethodGet, "/api/auth/profile", token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()
}

func TestRequireAuth_Rejections(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()

	res, err = app.Test(authedRequest(t, http.MethodGet, "/api/auth/profile", "deadbeef", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()
}

func TestTwoFactorFlow(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	token := registerAndLogin(t, app, "a@b.com")

	res, err := app.Test(authedRequest(t, http.MethodPost, "/api/auth/2fa/generate", token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeJSON(t, res)
	secret, _ := body["secret"].(string)
	require.NotEmpty(t, secret)
	assert.Contains(t, body["qrCode"], "data:image/png;base64,")

	res, err = app.Test(authedRequest(t, http.MethodPost, "/api/auth/2fa/enable", token, fiber.Map{
		"secret": secret,
		"token":  totpCode(t, secret),
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	// Password alone is no longer enough
	res, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "a@b.com",
		"password": "Abcd123!",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body = decodeJSON(t, res)
	assert.Equal(t, true, body["requiresTwoFactor"])
	assert.NotContains(t, body, "token")

	// Password plus a fresh code issues the session
	res, err = app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "a@b.com",
		"password": "Abcd123!",
		"totpCode": totpCode(t, secret),
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body = decodeJSON(t, res)
	assert.NotEmpty(t, body["token"])
}

func totpCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      2,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestProjectEndpoints(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	token := registerAndLogin(t, app, "a@b.com")

	res, err := app.Test(authedRequest(t, http.MethodPost, "/api/projects/", token, fiber.Map{
		"name":        "Kitchen remodel",
		"description": "Full renovation",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	body := decodeJSON(t, res)
	project, ok := body["project"].(map[string]any)
	require.True(t, ok)
	projectID, _ := project["id"].(string)
	require.NotEmpty(t, projectID)
	assert.Equal(t, "ACTIVE", project["status"])

	res, err = app.Test(authedRequest(t, http.MethodGet, "/api/projects/", token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body = decodeJSON(t, res)
	projects, ok := body["projects"].([]any)
	require.True(t, ok)
	assert.Len(t, projects, 1)

	res, err = app.Test(authedRequest(t, http.MethodPut, "/api/projects/"+projectID, token, fiber.Map{
		"status": "PAUSED",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body = decodeJSON(t, res)
	project = body["project"].(map[string]any)
	assert.Equal(t, "PAUSED", project["status"])

	res, err = app.Test(authedRequest(t, http.MethodPut, "/api/projects/"+projectID+"/details", token, fiber.Map{
		"city":    "Berlin",
		"country": "Germany",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body = decodeJSON(t, res)
	details, ok := body["project"].(map[string]any)["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Berlin", details["city"])

	res, err = app.Test(authedRequest(t, http.MethodDelete, "/api/projects/"+projectID, token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res.Body.Close()

	res, err = app.Test(authedRequest(t, http.MethodGet, "/api/projects/"+projectID, token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

func TestProjectEndpoints_OwnerIsolation(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	owner := registerAndLogin(t, app, "owner@b.com")
	other := registerAndLogin(t, app, "other@b.com")

	res, err := app.Test(authedRequest(t, http.MethodPost, "/api/projects/", owner, fiber.Map{
		"name": "Private",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	body := decodeJSON(t, res)
	projectID := body["project"].(map[string]any)["id"].(string)

	// Another tenant sees absence, not denial
	res, err = app.Test(authedRequest(t, http.MethodGet, "/api/projects/"+projectID, other, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()

	res, err = app.Test(authedRequest(t, http.MethodGet, "/api/projects/", other, nil))
	require.NoError(t, err)
	body = decodeJSON(t, res)
	assert.Empty(t, body["projects"])
}

func avatarUpload(t *testing.T, token string) *http.Request {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), A: 255})
		}
	}
	var payload bytes.Buffer
	require.NoError(t, png.Encode(&payload, img))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="avatar.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = io.Copy(part, &payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/avatar", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func TestAvatarUploadAndFetch(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	token := registerAndLogin(t, app, "a@b.com")

	res, err := app.Test(avatarUpload(t, token))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	body := decodeJSON(t, res)
	avatarURL, _ := body["avatarUrl"].(string)
	require.NotEmpty(t, avatarURL)

	// The profile reflects the new avatar
	res, err = app.Test(authedRequest(t, http.MethodGet, "/api/auth/profile", token, nil))
	require.NoError(t, err)
	body = decodeJSON(t, res)
	assert.Equal(t, avatarURL, body["user"].(map[string]any)["avatarUrl"])

	// Avatars are served without authentication
	res, err = app.Test(httptest.NewRequest(http.MethodGet, avatarURL, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/jpeg", res.Header.Get(fiber.HeaderContentType))
	res.Body.Close()
}

func TestUploadAvatar_NoFile(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	token := registerAndLogin(t, app, "a@b.com")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/avatar", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

func TestGetDocument_RequiresAuth(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/files/documents/contract.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res.Body.Close()
}

func TestGetDocument_NotFound(t *testing.T) {
	app, _, _, _ := newTestApp(t)
	token := registerAndLogin(t, app, "a@b.com")

	res, err := app.Test(authedRequest(t, http.MethodGet, "/api/files/documents/missing.pdf", token, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

func TestGetDocument_BodyRoundTrip(t *testing.T) {
	app, _, objects, _ := newTestApp(t)
	token := registerAndLogin(t, app, "a@b.com")

	require.NoError(t, objects.Put(context.Background(), core.BucketDocuments,
		"contract.pdf", []byte("pdf bytes"), "application/pdf"))

	res, err := app.Test(authedRequest(t, http.MethodGet, "/api/files/documents/contract.pdf", token, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/pdf", res.Header.Get(fiber.HeaderContentType))

	raw, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(raw))
}

func TestMalformedJSONBody(t *testing.T) {
	app, _, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte("{not json")))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

// Infrastructure failures must leave a server-side trace but never reach the
// client beyond a generic message.
func TestUnexpectedErrorsAreLogged(t *testing.T) {
	app, storage, _, log := newTestApp(t)
	storage.GetUserErr = assert.AnError

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "a@b.com",
		"password": "Abcd123!",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	body := decodeJSON(t, res)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, fmt.Sprint(body), assert.AnError.Error())

	lines := log.errorLines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], assert.AnError.Error())
}

func TestDomainErrorsAreNotLogged(t *testing.T) {
	app, _, _, log := newTestApp(t)
	registerAndLogin(t, app, "a@b.com")

	res, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "a@b.com",
		"password": "Wrong123!",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	assert.Empty(t, log.errorLines())
}
