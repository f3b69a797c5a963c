package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/osteobridge-backend/internal/domain"
	"github.com/yungbote/osteobridge-backend/internal/modules/researchimport"
	"github.com/yungbote/osteobridge-backend/internal/platform/apierr"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

func do(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartReq(t *testing.T, target string, fields map[string]string, fileName, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// --- auth ---

type stubAuth struct {
	services.AuthService
	registerErr error
	loginErr    error
	loggedOut   bool
}

func (s *stubAuth) RegisterUser(_ context.Context, username, email, _ string) (*types.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &types.User{ID: 7, Username: username, Email: email}, nil
}

func (s *stubAuth) LoginUser(_ context.Context, email, _ string) (string, *types.User, error) {
	if s.loginErr != nil {
		return "", nil, s.loginErr
	}
	return "tok", &types.User{ID: 7, Username: "ana", Email: email}, nil
}

func (s *stubAuth) RefreshUser(context.Context) (string, *types.User, error) {
	return "tok2", &types.User{ID: 7, Username: "ana", Email: "ana@example.com"}, nil
}

func (s *stubAuth) LogoutUser(context.Context) error {
	s.loggedOut = true
	return nil
}

func (s *stubAuth) GetAccessTTL() time.Duration { return 30 * time.Minute }

func authRouter(s *stubAuth) *gin.Engine {
	h := NewAuthHandler(logger.NewNop(), s)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/refresh", h.Refresh)
	r.POST("/logout", h.Logout)
	return r
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	s := &stubAuth{}
	r := authRouter(s)

	rec, body := do(r, jsonReq(http.MethodPost, "/register", `{"username":"ana","email":"ana@example.com","password":"pass"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["userID"])
	assert.Equal(t, "User successfully registered", body["msg"])

	rec, body = do(r, jsonReq(http.MethodPost, "/login", `{"email":"ana@example.com","password":"pass"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", body["token"])
	assert.Equal(t, float64(1800), body["expires_in"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ana", user["username"])

	rec, body = do(r, jsonReq(http.MethodPost, "/refresh", ``))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok2", body["token"])

	rec, body = do(r, jsonReq(http.MethodPost, "/logout", ``))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User successfully logged out", body["msg"])
	assert.True(t, s.loggedOut)
}

func TestAuthHandler_Errors(t *testing.T) {
	s := &stubAuth{
		registerErr: apierr.New(http.StatusBadRequest, "bad_request", errors.New("Email address is already registered")),
		loginErr:    errors.New("db down"),
	}
	r := authRouter(s)

	rec, body := do(r, jsonReq(http.MethodPost, "/register", `{"username":"ana","email":"ana@example.com","password":"pass"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Email address is already registered", body["msg"])

	rec, body = do(r, jsonReq(http.MethodPost, "/login", `{"email":"ana@example.com","password":"pass"}`))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Authentication failed", body["msg"])

	rec, body = do(r, jsonReq(http.MethodPost, "/login", `not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", body["msg"])
}

// --- organisms ---

type stubOrganisms struct {
	services.OrganismService
	gotStage   uint
	gotPage    int
	gotPer     int
	gotRating  *services.RatingInput
	reviewsErr error
}

func (s *stubOrganisms) ListClinicalStages(context.Context) ([]services.StageOption, error) {
	return []services.StageOption{{StageID: "", StageName: "Select stage"}, {StageID: uint(1), StageName: "Preclinical"}}, nil
}

func (s *stubOrganisms) ListByStage(_ context.Context, stageID uint, page, perPage int) (*services.OrganismPage, error) {
	s.gotStage, s.gotPage, s.gotPer = stageID, page, perPage
	if err := services.ValidatePagination(page, perPage); err != nil {
		return nil, err
	}
	return &services.OrganismPage{
		Data:       []services.OrganismSummary{{DataID: 3, OrganismID: 2, OrganismName: "soy"}},
		Pagination: services.Pagination{Total: 1, Page: page, PerPage: perPage, TotalPages: 1},
	}, nil
}

func (s *stubOrganisms) GetReviews(_ context.Context, id uint) (*services.OrganismReviews, error) {
	if s.reviewsErr != nil {
		return nil, s.reviewsErr
	}
	return &services.OrganismReviews{Reviews: []services.Review{}, AverageRating: 4.5, ReviewCount: 2}, nil
}

func (s *stubOrganisms) AddRating(_ context.Context, id uint, in services.RatingInput) (uint, error) {
	s.gotRating = &in
	if id == 404 {
		return 0, apierr.New(http.StatusNotFound, "not_found", errors.New("Organism not found"))
	}
	return 11, nil
}

func organismRouter(s *stubOrganisms) *gin.Engine {
	h := NewOrganismHandler(logger.NewNop(), s)
	r := gin.New()
	r.GET("/organisms/clinical-stages", h.ClinicalStages)
	r.GET("/organisms/", h.List)
	r.GET("/organisms/:id/reviews", h.Reviews)
	r.POST("/organisms/:id/rating", h.AddRating)
	return r
}

func TestOrganismHandler_ClinicalStages(t *testing.T) {
	rec, body := do(organismRouter(&stubOrganisms{}), httptest.NewRequest(http.MethodGet, "/organisms/clinical-stages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "Select stage", data[0].(map[string]any)["stage_name"])
}

func TestOrganismHandler_List(t *testing.T) {
	s := &stubOrganisms{}
	r := organismRouter(s)

	rec, body := do(r, httptest.NewRequest(http.MethodGet, "/organisms/?stage=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(2), s.gotStage)
	assert.Equal(t, services.DefaultPage, s.gotPage)
	assert.Equal(t, services.DefaultPerPage, s.gotPer)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, float64(1), body["pagination"].(map[string]any)["total"])

	cases := []struct {
		query, msg string
	}{
		{"", "Stage parameter is required"},
		{"?stage=abc", "Stage parameter must be a valid integer"},
		{"?stage=-1", "Stage parameter must be a valid integer"},
		{"?stage=1&page=0", "Page must be a positive integer"},
		{"?stage=1&page=x", "Page must be a positive integer"},
		{"?stage=1&per_page=101", "Per_page must be between 1 and 100"},
	}
	for _, tc := range cases {
		rec, body := do(r, httptest.NewRequest(http.MethodGet, "/organisms/"+tc.query, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.query)
		assert.Equal(t, tc.msg, body["message"], tc.query)
	}
}

func TestOrganismHandler_Reviews(t *testing.T) {
	s := &stubOrganisms{}
	r := organismRouter(s)

	rec, body := do(r, httptest.NewRequest(http.MethodGet, "/organisms/5/reviews", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.5, body["data"].(map[string]any)["average_rating"])

	rec, body = do(r, httptest.NewRequest(http.MethodGet, "/organisms/x/reviews", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid organism ID", body["message"])

	s.reviewsErr = errors.New("boom")
	rec, body = do(r, httptest.NewRequest(http.MethodGet, "/organisms/5/reviews", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch reviews", body["message"])
}

func TestOrganismHandler_AddRating(t *testing.T) {
	s := &stubOrganisms{}
	r := organismRouter(s)

	rec, body := do(r, jsonReq(http.MethodPost, "/organisms/5/rating", `{"rating":4,"review":"good","user_name":"Ana"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Rating added successfully", body["message"])
	assert.Equal(t, float64(11), body["rating_id"])
	require.NotNil(t, s.gotRating)
	assert.Equal(t, 4, s.gotRating.Rating)
	assert.Equal(t, "good", s.gotRating.Review)
	assert.Equal(t, "Ana", *s.gotRating.ReviewerName)
	assert.Nil(t, s.gotRating.ReviewerEmail)

	cases := []struct {
		body   string
		status int
		msg    string
	}{
		{``, http.StatusBadRequest, "Request body is required"},
		{`{"review":"x"}`, http.StatusBadRequest, "Rating is required"},
		{`{"rating":"4"}`, http.StatusBadRequest, "Rating must be an integer between 1 and 5"},
		{`{"rating":4.5}`, http.StatusBadRequest, "Rating must be an integer between 1 and 5"},
	}
	for _, tc := range cases {
		rec, body := do(r, jsonReq(http.MethodPost, "/organisms/5/rating", tc.body))
		assert.Equal(t, tc.status, rec.Code, tc.body)
		assert.Equal(t, tc.msg, body["message"], tc.body)
	}

	rec, body = do(r, jsonReq(http.MethodPost, "/organisms/404/rating", `{"rating":3}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Organism not found", body["message"])
}

// --- pdb ---

type stubPDB struct {
	services.PDBService
	got *services.PDBUpload
}

func (s *stubPDB) ListProteins(context.Context) ([]services.ProteinOption, error) {
	return []services.ProteinOption{{ProteinName: "Select protein"}}, nil
}

func (s *stubPDB) ListCompounds(context.Context) ([]services.CompoundOption, error) {
	return []services.CompoundOption{{CompoundName: "Select compound"}}, nil
}

func (s *stubPDB) Upload(_ context.Context, in services.PDBUpload) (*services.PDBUploadResult, error) {
	s.got = &in
	if err := services.ValidatePDBFile(in.FileName, in.ContentType, in.Content); err != nil {
		return nil, err
	}
	return &services.PDBUploadResult{ModelID: 9, FileName: "RANKL_Genistein.pdb"}, nil
}

func (s *stubPDB) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if name != "RANKL_Genistein.pdb" {
		return nil, apierr.New(http.StatusNotFound, "not_found", errors.New("File not found"))
	}
	return io.NopCloser(strings.NewReader("ATOM      1  N\n")), nil
}

func pdbRouter(s *stubPDB, max int64) *gin.Engine {
	h := NewPDBHandler(logger.NewNop(), s, max)
	r := gin.New()
	r.GET("/proteins", h.Proteins)
	r.GET("/compounds", h.Compounds)
	r.POST("/upload", h.Upload)
	r.GET("/pdb_files/:filename", h.File)
	return r
}

func TestPDBHandler_SelectLists(t *testing.T) {
	r := pdbRouter(&stubPDB{}, 0)
	rec, body := do(r, httptest.NewRequest(http.MethodGet, "/proteins", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)
	rec, body = do(r, httptest.NewRequest(http.MethodGet, "/compounds", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 1)
}

func TestPDBHandler_Upload(t *testing.T) {
	s := &stubPDB{}
	r := pdbRouter(s, 64)

	req := multipartReq(t, "/upload", map[string]string{"protein": "1", "compound": "2"}, "model.pdb", "ATOM      1  N\n")
	rec, body := do(r, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "File uploaded successfully", body["message"])
	assert.Equal(t, float64(9), body["data"].(map[string]any)["data_id"])
	assert.Equal(t, uint(1), s.got.ProteinID)
	assert.Equal(t, uint(2), s.got.CompoundID)
	assert.Equal(t, "model.pdb", s.got.FileName)

	rec, body = do(r, multipartReq(t, "/upload", map[string]string{"protein": "1"}, "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file part", body["message"])

	rec, body = do(r, multipartReq(t, "/upload", map[string]string{"protein": "1", "compound": "2"}, "model.txt", "ATOM"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only PDB files are allowed", body["message"])

	rec, _ = do(r, multipartReq(t, "/upload", map[string]string{"protein": "1", "compound": "2"}, "big.pdb", strings.Repeat("A", 65)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPDBHandler_File(t *testing.T) {
	r := pdbRouter(&stubPDB{}, 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pdb_files/RANKL_Genistein.pdb", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chemical/x-pdb", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "ATOM")

	rec, body := do(r, httptest.NewRequest(http.MethodGet, "/pdb_files/missing.pdb", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found", body["message"])
}

// --- research import ---

type stubImports struct {
	services.ResearchImportService
	body      string
	importErr error
}

func (s *stubImports) MaxUploadBytes() int64 { return 128 }

func (s *stubImports) Import(_ context.Context, in services.CSVUpload) (*services.ImportOutcome, error) {
	raw, _ := io.ReadAll(in.Body)
	s.body = string(raw)
	if s.importErr != nil {
		return nil, s.importErr
	}
	return &services.ImportOutcome{
		RunID: 4,
		Result: researchimport.Result{
			Success: true,
			Message: "Research data imported successfully",
			Stats:   &researchimport.Stats{},
		},
	}, nil
}

func (s *stubImports) ListRuns(_ context.Context, limit int) ([]*types.ImportRun, error) {
	return []*types.ImportRun{{ID: 4, FileName: "data.csv", Status: types.RunStatusCommitted}}, nil
}

func importRouter(s *stubImports) *gin.Engine {
	h := NewResearchImportHandler(logger.NewNop(), s)
	r := gin.New()
	r.POST("/import", h.Import)
	r.GET("/runs", h.Runs)
	return r
}

func TestResearchImportHandler_Import(t *testing.T) {
	s := &stubImports{}
	r := importRouter(s)

	csv := "Target,compound_name,iupac_name,organisms,clinical_stage\n"
	rec, body := do(r, multipartReq(t, "/import", nil, "data.csv", csv))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "stats")
	assert.Equal(t, "4", rec.Header().Get("X-Import-Run-ID"))
	assert.Equal(t, csv, s.body)
}

func TestResearchImportHandler_Rejects(t *testing.T) {
	r := importRouter(&stubImports{})

	rec, body := do(r, multipartReq(t, "/import", nil, "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file part", body["message"])

	rec, body = do(r, multipartReq(t, "/import", nil, "data.xlsx", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File must be a CSV", body["message"])

	rec, _ = do(r, multipartReq(t, "/import", nil, "data.csv", strings.Repeat("a", 129)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	failing := &stubImports{importErr: apierr.New(http.StatusInternalServerError, "import_failed", errors.New("Failed to import research data"))}
	rec, body = do(importRouter(failing), multipartReq(t, "/import", nil, "data.csv", "x"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to import research data", body["message"])
}

func TestResearchImportHandler_Runs(t *testing.T) {
	r := importRouter(&stubImports{})

	rec, body := do(r, httptest.NewRequest(http.MethodGet, "/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["runs"], 1)

	rec, body = do(r, httptest.NewRequest(http.MethodGet, "/runs?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_limit", body["error"].(map[string]any)["code"])
}

func TestHealthCheck(t *testing.T) {
	r := gin.New()
	r.GET("/healthcheck", NewHealthHandler().HealthCheck)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
