package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"policyvault/internal/auth"
	"policyvault/internal/cache"
	"policyvault/internal/config"
	"policyvault/internal/documents"
	"policyvault/internal/model"
)

const testSecret = "test-secret"

var (
	adminID = uuid.NewString()
	superID = uuid.NewString()
	otherID = uuid.NewString()
	testNow = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
)

type testApp struct {
	url     string
	store   *fakeStore
	objects *memoryObjects
}

func newTestApp(t *testing.T, opts ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := config.Defaults()
	cfg.JWTSecret = testSecret
	for _, opt := range opts {
		opt(&cfg)
	}
	store := newFakeStore()
	store.addProfile(adminID, "admin@example.com", model.RoleAdmin)
	store.addProfile(superID, "root@example.com", model.RoleSuperAdmin)
	objects := &memoryObjects{}
	c := cache.NewMemory(time.Minute)
	uploader := documents.NewUploader(objects, store, cfg.PolicyDocumentsBucket, cfg.ClaimDocumentsBucket, cfg.MaxUploadBytes, zap.NewNop())

	server := NewServer(cfg, store, c, uploader, zap.NewNop())
	server.now = func() time.Time { return testNow }
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)
	return &testApp{url: app.URL, store: store, objects: objects}
}

func mustToken(t *testing.T, userID, email string) string {
	t.Helper()
	token, err := auth.NewAccessToken(testSecret, "", time.Hour, userID, email)
	require.NoError(t, err)
	return token
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func motorForm(number string, expiry time.Time) map[string]interface{} {
	return map[string]interface{}{
		"policy_type":     "motor",
		"policy_number":   number,
		"insurer_name":    "ICICI Lombard",
		"insured_name":    "Asha Rao",
		"vehicle_details": "KA-01-AB-1234",
		"premium_amount":  12000,
		"start_date":      expiry.AddDate(-1, 0, 0).Format("2006-01-02"),
		"expiry_date":     expiry.Format("2006-01-02"),
	}
}

type policyView struct {
	Policy model.Policy `json:"policy"`
	Badge  string       `json:"badge"`
}

func createPolicy(t *testing.T, app *testApp, token, number string, expiry time.Time) policyView {
	t.Helper()
	resp := doReq(t, http.MethodPost, app.url+"/api/policies", token, motorForm(number, expiry))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[policyView](t, resp)
}

func TestSession(t *testing.T) {
	app := newTestApp(t)

	resp := doReq(t, http.MethodGet, app.url+"/api/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	anon := decode[map[string]interface{}](t, resp)
	assert.Nil(t, anon["user"])
	assert.Equal(t, false, anon["loading"])

	resp = doReq(t, http.MethodGet, app.url+"/api/session", mustToken(t, adminID, "admin@example.com"), nil)
	session := decode[sessionResponse](t, resp)
	require.NotNil(t, session.User)
	assert.Equal(t, adminID, session.User.ID)
	assert.Equal(t, "admin@example.com", session.User.Email)
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	app := newTestApp(t)

	resp := doReq(t, http.MethodGet, app.url+"/api/policies", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "missing_token", body["error"])
	assert.Equal(t, "/auth", body["redirect"])

	resp = doReq(t, http.MethodGet, app.url+"/api/policies", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_token", decode[map[string]string](t, resp)["error"])
}

func TestSignOutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := mustToken(t, adminID, "admin@example.com")

	resp := doReq(t, http.MethodPost, app.url+"/api/session/sign-out", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doReq(t, http.MethodGet, app.url+"/api/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "token_revoked", decode[map[string]string](t, resp)["error"])
}

func TestMe(t *testing.T) {
	app := newTestApp(t)

	resp := doReq(t, http.MethodGet, app.url+"/api/me", mustToken(t, superID, "root@example.com"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[map[string]interface{}](t, resp)
	assert.Equal(t, true, me["is_admin"])
	assert.Equal(t, true, me["is_super_admin"])

	resp = doReq(t, http.MethodGet, app.url+"/api/me", mustToken(t, otherID, "nobody@example.com"), nil)
	me = decode[map[string]interface{}](t, resp)
	assert.Nil(t, me["profile"])
	assert.Equal(t, false, me["is_admin"])
}

func TestPolicyLifecycle(t *testing.T) {
	app := newTestApp(t)
	token := mustToken(t, adminID, "admin@example.com")

	soon := createPolicy(t, app, token, "MOT-001", testNow.AddDate(0, 0, 5))
	later := createPolicy(t, app, token, "MOT-002", testNow.AddDate(0, 3, 0))
	assert.Equal(t, "expires_soon", soon.Badge)
	assert.Equal(t, "active", later.Badge)

	resp := doReq(t, http.MethodGet, app.url+"/api/policies?search=mot-002", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]policyView](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, later.Policy.ID, list[0].Policy.ID)

	resp = doReq(t, http.MethodGet, app.url+"/api/policies/"+soon.Policy.ID, mustToken(t, otherID, ""), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "policy_not_found", decode[map[string]string](t, resp)["error"])

	update := motorForm("MOT-001", testNow.AddDate(0, 0, 20))
	update["policy_type"] = "health"
	resp = doReq(t, http.MethodPut, app.url+"/api/policies/"+soon.Policy.ID, token, update)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[policyView](t, resp)
	assert.Equal(t, model.PolicyTypeHealth, updated.Policy.Type())
	assert.Nil(t, updated.Policy.VehicleDetails())
	assert.Equal(t, "renewal_due", updated.Badge)

	resp = doReq(t, http.MethodGet, app.url+"/api/policies/"+soon.Policy.ID+"/form", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "health", decode[map[string]string](t, resp)["policy_type"])

	resp = doReq(t, http.MethodDelete, app.url+"/api/policies/"+soon.Policy.ID, token, nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	assert.Equal(t, "confirmation_required", decode[map[string]string](t, resp)["error"])

	resp = doReq(t, http.MethodDelete, app.url+"/api/policies/"+soon.Policy.ID+"?confirm=true", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doReq(t, http.MethodGet, app.url+"/api/policies", token, nil)
	assert.Len(t, decode[[]policyView](t, resp), 1)

	actions := []string{}
	for _, entry := range app.store.logs {
		actions = append(actions, entry.Action)
	}
	assert.Equal(t, []string{"CREATE_POLICY", "CREATE_POLICY", "UPDATE_POLICY", "DELETE_POLICY"}, actions)
}

func TestPolicyValidation(t *testing.T) {
	app := newTestApp(t)
	token := mustToken(t, adminID, "admin@example.com")

	cases := []struct {
		mutate func(map[string]interface{})
		code   string
	}{
		{func(f map[string]interface{}) { delete(f, "insured_name") }, "missing_field:insured_name"},
		{func(f map[string]interface{}) { f["premium_amount"] = "-5" }, "invalid_amount"},
		{func(f map[string]interface{}) { f["premium_amount"] = "NaN" }, "invalid_amount"},
		{func(f map[string]interface{}) { f["coverage_amount"] = "+Inf" }, "invalid_amount"},
		{func(f map[string]interface{}) { f["start_date"] = "31/12/2024" }, "invalid_date"},
		{func(f map[string]interface{}) { f["policy_type"] = "travel" }, "invalid_policy_type"},
		{func(f map[string]interface{}) { f["start_date"] = "2030-01-01" }, "expiry_before_start"},
		{func(f map[string]interface{}) { f["unexpected"] = true }, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			f := motorForm("MOT-9", testNow.AddDate(1, 0, 0))
			tc.mutate(f)
			resp := doReq(t, http.MethodPost, app.url+"/api/policies", token, f)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.code, decode[map[string]string](t, resp)["error"])
		})
	}
}

func TestDashboardRefreshesAfterMutation(t *testing.T) {
	app := newTestApp(t)
	token := mustToken(t, adminID, "admin@example.com")

	resp := doReq(t, http.MethodGet, app.url+"/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	empty := decode[map[string]interface{}](t, resp)
	assert.Equal(t, float64(0), empty["total_policies"])
	assert.Equal(t, []interface{}{}, empty["upcoming_renewals"])

	createPolicy(t, app, token, "MOT-1", testNow.AddDate(0, 0, 10))
	createPolicy(t, app, token, "MOT-2", testNow.AddDate(0, 6, 0))

	resp = doReq(t, http.MethodGet, app.url+"/api/dashboard", token, nil)
	summary := decode[map[string]interface{}](t, resp)
	assert.Equal(t, float64(2), summary["motor_policies"])
	assert.Equal(t, float64(2), summary["active_policies"])
	assert.Equal(t, float64(1), summary["upcoming_renewal_count"])
	assert.Equal(t, float64(24000), summary["total_premium"])
}

func TestClaims(t *testing.T) {
	app := newTestApp(t)
	token := mustToken(t, adminID, "admin@example.com")
	p := createPolicy(t, app, token, "MOT-7", testNow.AddDate(1, 0, 0))

	claimForm := map[string]interface{}{
		"policy_id":    p.Policy.ID,
		"claim_number": "CLM-1",
		"claim_date":   "2024-05-20",
		"claim_amount": "15000",
		"description":  "Side mirror",
	}
	resp := doReq(t, http.MethodPost, app.url+"/api/claims", mustToken(t, otherID, ""), claimForm)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doReq(t, http.MethodPost, app.url+"/api/claims", token, claimForm)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[model.Claim](t, resp)
	assert.Equal(t, model.ClaimStatusPending, created.ClaimStatus)
	require.NotNil(t, created.Policy)
	assert.Equal(t, "MOT-7", created.Policy.PolicyNumber)

	resp = doReq(t, http.MethodGet, app.url+"/api/claims?search=mot-7&status=pending", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Claim](t, resp), 1)

	resp = doReq(t, http.MethodGet, app.url+"/api/claims/policy-options", token, nil)
	options := decode[[]model.PolicySummary](t, resp)
	require.Len(t, options, 1)
	assert.Equal(t, "MOT-7", options[0].PolicyNumber)

	resp = doReq(t, http.MethodDelete, app.url+"/api/claims/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doReq(t, http.MethodGet, app.url+"/api/claims", token, nil)
	assert.Empty(t, decode[[]model.Claim](t, resp))
}

func TestSuperAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	adminToken := mustToken(t, adminID, "admin@example.com")
	superToken := mustToken(t, superID, "root@example.com")

	for _, path := range []string{"/api/logs", "/api/users"} {
		resp := doReq(t, http.MethodGet, app.url+path, adminToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
		assert.Equal(t, "super_admin_only", decode[map[string]string](t, resp)["error"])
	}

	resp := doReq(t, http.MethodGet, app.url+"/api/users", superToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Profile](t, resp), 2)

	resp = doReq(t, http.MethodPatch, app.url+"/api/users/"+adminID+"/role", superToken, map[string]string{"role": "super_admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.RoleSuperAdmin, decode[model.Profile](t, resp).Role)

	resp = doReq(t, http.MethodGet, app.url+"/api/logs", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	logs := decode[[]map[string]interface{}](t, resp)
	require.Len(t, logs, 1)
	assert.Equal(t, "Changed user role to super_admin", logs[0]["description"])
	assert.Equal(t, "root@example.com", logs[0]["actor_label"])
	assert.Equal(t, "User Updated", logs[0]["presentation"].(map[string]interface{})["label"])

	resp = doReq(t, http.MethodPatch, app.url+"/api/users/"+uuid.NewString()+"/role", superToken, map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doReq(t, http.MethodPatch, app.url+"/api/users/"+adminID+"/role", superToken, map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doReq(t, http.MethodPost, app.url+"/api/users", superToken, map[string]string{"email": "new@example.com", "role": "admin"})
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "user_creation_unsupported", body["error"])
	assert.Equal(t, "User creation requires server-side implementation", body["message"])

	for _, payload := range []interface{}{
		map[string]string{"email": "new@example.com", "role": "admin", "full_name": "New Person"},
		"not an object",
		nil,
	} {
		resp = doReq(t, http.MethodPost, app.url+"/api/users", superToken, payload)
		require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
		assert.Equal(t, "user_creation_unsupported", decode[map[string]string](t, resp)["error"])
	}
}

func TestBackup(t *testing.T) {
	app := newTestApp(t)
	token := mustToken(t, adminID, "admin@example.com")
	createPolicy(t, app, token, "MOT-1", testNow.AddDate(1, 0, 0))
	createPolicy(t, app, token, "MOT-2", testNow.AddDate(1, 1, 0))

	resp := doReq(t, http.MethodGet, app.url+"/api/backup/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[map[string]int](t, resp)
	assert.Equal(t, 2, stats["policies"])
	assert.Equal(t, 2, stats["logs"])

	resp = doReq(t, http.MethodGet, app.url+"/api/backup/export?format=csv", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="insurance-policies-2024-06-01.csv"`, resp.Header.Get("Content-Disposition"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(body), "\n"), 3)

	resp = doReq(t, http.MethodGet, app.url+"/api/backup/export?format=json", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[map[string]interface{}](t, resp)
	info := doc["export_info"].(map[string]interface{})
	assert.Equal(t, "admin@example.com", info["exported_by"])
	assert.Len(t, doc["policies"], 2)

	resp = doReq(t, http.MethodGet, app.url+"/api/backup/export?format=xml", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadPolicyDocuments(t *testing.T) {
	app := newTestApp(t)
	token := mustToken(t, adminID, "admin@example.com")
	p := createPolicy(t, app, token, "MOT-1", testNow.AddDate(1, 0, 0))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	addPart(t, mw, "cover.pdf", "application/pdf", []byte("%PDF-1.4\n%%EOF\n"))
	addPart(t, mw, "notes.txt", "text/plain", []byte("plain text"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, app.url+"/api/policies/"+p.Policy.ID+"/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[uploadResponse](t, resp)
	require.Len(t, body.Results, 2)
	assert.Equal(t, documents.StatusUploaded, body.Results[0].Status)
	assert.True(t, strings.HasPrefix(body.Results[0].Path, adminID+"/"+p.Policy.ID+"/"))
	assert.Equal(t, documents.StatusRejected, body.Results[1].Status)
	require.Len(t, app.objects.keys, 1)
	assert.True(t, strings.HasPrefix(app.objects.keys[0], "policy-documents/"))
	assert.Len(t, app.store.docs, 1)
}

func postFiles(t *testing.T, url, token string, files map[string][]byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		addPart(t, mw, name, "application/pdf", data)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestUploadRejectsOversizedRequest(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.MaxUploadBytes = 1024 })
	token := mustToken(t, adminID, "admin@example.com")
	p := createPolicy(t, app, token, "MOT-1", testNow.AddDate(1, 0, 0))

	huge := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 256<<10)...)
	resp := postFiles(t, app.url+"/api/policies/"+p.Policy.ID+"/documents", token, map[string][]byte{"huge.pdf": huge})
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "upload_too_large", decode[map[string]string](t, resp)["error"])
	assert.Empty(t, app.objects.keys)
}

func TestUploadRejectsTooManyFiles(t *testing.T) {
	app := newTestApp(t)
	token := mustToken(t, adminID, "admin@example.com")
	p := createPolicy(t, app, token, "MOT-1", testNow.AddDate(1, 0, 0))

	files := map[string][]byte{}
	for i := 0; i <= maxUploadFiles; i++ {
		files[uuid.NewString()+".pdf"] = []byte("%PDF-1.4\n%%EOF\n")
	}
	resp := postFiles(t, app.url+"/api/policies/"+p.Policy.ID+"/documents", token, files)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "too_many_files", decode[map[string]string](t, resp)["error"])
	assert.Empty(t, app.objects.keys)
}

func addPart(t *testing.T, mw *multipart.Writer, name, contentType string, data []byte) {
	t.Helper()
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
}

func TestNavigation(t *testing.T) {
	app := newTestApp(t)

	resp := doReq(t, http.MethodGet, app.url+"/api/navigation?path=/policies/abc", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	anon := decode[navigationResponse](t, resp)
	assert.Equal(t, "/auth", anon.Redirect)
	assert.Equal(t, "policy_detail", anon.Route.Name)
	assert.Nil(t, anon.Menu)

	resp = doReq(t, http.MethodGet, app.url+"/api/navigation?path=/logs", mustToken(t, superID, ""), nil)
	nav := decode[navigationResponse](t, resp)
	assert.Empty(t, nav.Redirect)
	require.NotNil(t, nav.Menu)
	require.Len(t, nav.Menu.Admin, 3)
	assert.True(t, nav.Menu.Admin[2].Active)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp := doReq(t, http.MethodGet, app.url+"/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doReq(t, http.MethodGet, app.url+"/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `policyvault_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
