package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"kpitrack/internal/app/server"
	"kpitrack/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:         dbURL,
		JWTSecret:           "test-secret",
		DataEncryptionKey:   "",
		FrontendDir:         "frontend/dist",
		Environment:         "test",
		SeedDivisionName:    "Test Division",
		SeedAdminEmail:      "admin@test.local",
		SeedAdminPassword:   "ChangeMe123!",
		SeedManagerEmail:    "manager@test.local",
		SeedManagerPassword: "ChangeMe123!",
		EmailFrom:           "no-reply@test.local",
		RunMigrations:       true,
		RunSeed:             true,
		MaxBodyBytes:        1048576,
		RateLimitPerMinute:  1000,
		AccessTokenTTL:      15 * time.Minute,
		RefreshTokenTTL:     720 * time.Hour,
	}
}

func TestAssessmentJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	divisionID := createDivision(t, client, ts.URL, adminToken)

	employeeEmail := fmt.Sprintf("journey-%d@example.com", time.Now().UnixNano())
	employeePassword := "Employee123!"
	createUser(t, client, ts.URL, adminToken, employeeEmail, employeePassword, "employee", divisionID)

	kpiID := createKPI(t, client, ts.URL, adminToken, divisionID)

	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)

	questions := kpiQuestions(t, client, ts.URL, employeeToken, kpiID)
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}

	answers := []map[string]any{
		{"questionId": questions[0]["id"], "numericValue": 5},
		{"questionId": questions[1]["id"], "numericValue": 90},
		{"questionId": questions[2]["id"], "textValue": "Delivered the release on time."},
	}
	resp := postJSON(t, client, ts.URL+"/api/v1/assessments", employeeToken, map[string]any{
		"kpiId":   kpiID,
		"answers": answers,
	})
	var submitted map[string]any
	if err := json.Unmarshal(resp.Data, &submitted); err != nil {
		t.Fatalf("failed to decode submit response: %v", err)
	}
	assessmentID, _ := submitted["assessmentId"].(string)
	if assessmentID == "" {
		t.Fatal("expected assessment id")
	}
	if score, _ := submitted["totalScore"].(float64); score != 96 {
		t.Fatalf("expected total score 96, got %v", submitted["totalScore"])
	}
	if grade, _ := submitted["grade"].(string); grade != "A+" {
		t.Fatalf("expected grade A+, got %v", submitted["grade"])
	}

	pending := getJSON(t, client, ts.URL+"/api/v1/assessments/pending", adminToken)
	var pendingPayload map[string]any
	if err := json.Unmarshal(pending.Data, &pendingPayload); err != nil {
		t.Fatalf("failed to decode pending response: %v", err)
	}
	if total, _ := pendingPayload["total"].(float64); total < 1 {
		t.Fatal("expected at least one pending assessment")
	}

	review := postJSON(t, client, ts.URL+"/api/v1/assessments/"+assessmentID+"/review", adminToken, map[string]any{
		"managerNote": "Good quarter.",
	})
	var reviewPayload map[string]any
	if err := json.Unmarshal(review.Data, &reviewPayload); err != nil {
		t.Fatalf("failed to decode review response: %v", err)
	}
	if status, _ := reviewPayload["status"].(string); status != "reviewed" {
		t.Fatalf("expected status reviewed, got %v", reviewPayload["status"])
	}

	detail := getJSON(t, client, ts.URL+"/api/v1/assessments/"+assessmentID, employeeToken)
	var detailPayload map[string]any
	if err := json.Unmarshal(detail.Data, &detailPayload); err != nil {
		t.Fatalf("failed to decode detail response: %v", err)
	}
	if status, _ := detailPayload["status"].(string); status != "reviewed" {
		t.Fatalf("expected reviewed detail, got %v", detailPayload["status"])
	}
	if grade, _ := detailPayload["grade"].(string); grade != "A+" {
		t.Fatalf("expected grade A+ in detail, got %v", detailPayload["grade"])
	}

	dashboard := getJSON(t, client, ts.URL+"/api/v1/reports/dashboard", adminToken)
	var dashboardPayload map[string]any
	if err := json.Unmarshal(dashboard.Data, &dashboardPayload); err != nil {
		t.Fatalf("failed to decode dashboard response: %v", err)
	}
	if count, _ := dashboardPayload["submissionsThisMonth"].(float64); count < 1 {
		t.Fatalf("expected at least one submission this month, got %v", dashboardPayload["submissionsThisMonth"])
	}
	recent, _ := dashboardPayload["recentAssessments"].([]any)
	if len(recent) == 0 {
		t.Fatal("expected recent assessments on the dashboard")
	}
	top, _ := dashboardPayload["topPerformers"].([]any)
	if len(top) == 0 {
		t.Fatal("expected top performers on the dashboard")
	}
	found := false
	for _, item := range top {
		entry, _ := item.(map[string]any)
		if avg, _ := entry["avgScore"].(float64); avg == 96 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected a top performer with period average 96")
	}

	requestStatus(t, client, http.MethodDelete, ts.URL+"/api/v1/kpis/00000000-0000-0000-0000-000000000000", adminToken, http.StatusNotFound)
}

func TestEmployeeCannotReadAuditLog(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	divisionID := createDivision(t, client, ts.URL, adminToken)
	employeeEmail := fmt.Sprintf("audit-%d@example.com", time.Now().UnixNano())
	employeePassword := "Employee123!"
	createUser(t, client, ts.URL, adminToken, employeeEmail, employeePassword, "employee", divisionID)

	employeeToken := login(t, client, ts.URL, employeeEmail, employeePassword)
	getJSONStatus(t, client, ts.URL+"/api/v1/audit", employeeToken, http.StatusForbidden)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["accessToken"].(string)
	if token == "" {
		t.Fatal("expected access token")
	}
	return token
}

func createDivision(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/divisions", token, map[string]any{
		"name":        fmt.Sprintf("Engineering %d", time.Now().UnixNano()),
		"description": "Product engineering",
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode division response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected division id")
	}
	return id
}

func createUser(t *testing.T, client *http.Client, baseURL, token, email, password, role, divisionID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/users", token, map[string]any{
		"email":      email,
		"fullName":   "Journey Tester",
		"password":   password,
		"role":       role,
		"divisionId": divisionID,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode user response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected user id")
	}
	return id
}

func createKPI(t *testing.T, client *http.Client, baseURL, token, divisionID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/kpis", token, map[string]any{
		"divisionId": divisionID,
		"name":       "Delivery Quality",
		"period":     "monthly",
		"weight":     100,
		"questions": []map[string]any{
			{"prompt": "On-time delivery", "answerType": "scale_1_5", "weight": 60, "position": 1, "mandatory": true},
			{"prompt": "Defect-free percentage", "answerType": "scale_0_100", "weight": 40, "position": 2, "mandatory": true},
			{"prompt": "Highlights", "answerType": "free_text", "weight": 0, "position": 3, "mandatory": false},
		},
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode kpi response: %v", err)
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected kpi id")
	}
	return id
}

func kpiQuestions(t *testing.T, client *http.Client, baseURL, token, kpiID string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/kpis/"+kpiID, token)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode kpi detail response: %v", err)
	}
	raw, _ := payload["questions"].([]any)
	questions := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if q, ok := item.(map[string]any); ok {
			questions = append(questions, q)
		}
	}
	return questions
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func requestStatus(t *testing.T, client *http.Client, method, url, token string, want int) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}
