package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"empdir/internal/app/server"
	"empdir/internal/domain/employee"
	"empdir/internal/platform/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	parsed, err := pgx.ParseConfig(dbURL)
	if err != nil {
		t.Fatalf("parse TEST_DATABASE_URL: %v", err)
	}
	sslMode := "disable"
	if u, err := url.Parse(dbURL); err == nil && u.Query().Get("sslmode") != "" {
		sslMode = u.Query().Get("sslmode")
	}

	cfg := config.Defaults()
	cfg.Environment = "test"
	cfg.Database.Host = parsed.Host
	cfg.Database.Port = int(parsed.Port)
	cfg.Database.User = parsed.User
	cfg.Database.Password = parsed.Password
	cfg.Database.Name = parsed.Database
	cfg.Database.SSLMode = sslMode
	return cfg
}

func startApp(t *testing.T) (*server.App, *httptest.Server) {
	t.Helper()
	cfg := testConfig(t)

	app, err := server.New(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts
}

func TestEmployeeDirectoryJourney(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()
	name := fmt.Sprintf("journey-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		resp := send(t, client, http.MethodDelete, ts.URL+"/employees/"+url.PathEscape(name), nil)
		resp.Body.Close()
	})

	resp := send(t, client, http.MethodPost, ts.URL+"/employees", map[string]any{
		"name":      name,
		"job_title": "Eng",
		"emergency_contacts": []map[string]any{
			{"primary_emergency_contact": "B", "relationship": "sibling"},
		},
		"secondary_emergency_contacts": []map[string]any{},
	})
	expectStatus(t, resp, http.StatusCreated)
	var created employee.Employee
	decode(t, resp, &created)
	if created.ID == 0 {
		t.Fatal("expected generated id")
	}

	resp = send(t, client, http.MethodPost, ts.URL+"/employees", map[string]any{"name": name, "job_title": "Eng"})
	expectStatus(t, resp, http.StatusConflict)
	resp.Body.Close()

	agg := getEmployee(t, client, ts.URL, name)
	if len(agg.EmergencyContacts) != 1 || agg.EmergencyContacts[0].Name != "B" {
		t.Fatalf("unexpected emergency contacts: %+v", agg.EmergencyContacts)
	}
	if len(agg.SecondaryEmergencyContacts) != 0 {
		t.Fatalf("unexpected secondary contacts: %+v", agg.SecondaryEmergencyContacts)
	}

	replace := map[string]any{
		"job_title":          "Lead",
		"city":               "Austin",
		"emergency_contacts": []map[string]any{},
		"secondary_emergency_contacts": []map[string]any{
			{"secondary_emergency_contact": "C", "s_relationship": "friend"},
		},
	}
	for range 2 {
		resp = send(t, client, http.MethodPut, ts.URL+"/employees/"+url.PathEscape(name), replace)
		expectStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	agg = getEmployee(t, client, ts.URL, name)
	if agg.JobTitle != "Lead" || agg.City == nil || *agg.City != "Austin" {
		t.Fatalf("scalar fields not replaced: %+v", agg.Employee)
	}
	if len(agg.EmergencyContacts) != 0 || len(agg.SecondaryEmergencyContacts) != 1 {
		t.Fatalf("contacts not replaced: %+v", agg)
	}

	resp = send(t, client, http.MethodGet, ts.URL+"/employees/"+url.PathEscape(name)+"/card.pdf", nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = send(t, client, http.MethodDelete, ts.URL+"/employees/"+url.PathEscape(name), nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = send(t, client, http.MethodGet, ts.URL+"/employees/"+url.PathEscape(name), nil)
	expectStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()

	resp = send(t, client, http.MethodDelete, ts.URL+"/employees/"+url.PathEscape(name), nil)
	expectStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestDeleteCascadesToContacts(t *testing.T) {
	app, ts := startApp(t)
	client := ts.Client()
	name := fmt.Sprintf("cascade-%d", time.Now().UnixNano())

	resp := send(t, client, http.MethodPost, ts.URL+"/employees", map[string]any{
		"name":                         name,
		"job_title":                    "Ops",
		"emergency_contacts":           []map[string]any{{"primary_emergency_contact": "P"}},
		"secondary_emergency_contacts": []map[string]any{{"secondary_emergency_contact": "S"}},
	})
	expectStatus(t, resp, http.StatusCreated)
	var created employee.Employee
	decode(t, resp, &created)

	resp = send(t, client, http.MethodDelete, ts.URL+"/employees/"+url.PathEscape(name), nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	var remaining int
	if err := app.DB.QueryRow(context.Background(), `
    SELECT (SELECT COUNT(1) FROM emergency_contact WHERE employee_id = $1)
         + (SELECT COUNT(1) FROM secondary_emergency_contact WHERE employee_id = $1)
  `, created.ID).Scan(&remaining); err != nil {
		t.Fatalf("count contacts: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected contacts to be removed, %d left", remaining)
	}
}

// TestListPagesByEmployee clears the table, so it needs a database that no
// other test run shares.
func TestListPagesByEmployee(t *testing.T) {
	_, ts := startApp(t)
	client := ts.Client()

	resp := send(t, client, http.MethodDelete, ts.URL+"/employees", nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	suffix := time.Now().UnixNano()
	names := make([]string, 0, 3)
	for i := range 3 {
		name := fmt.Sprintf("page-%d-%d", suffix, i)
		names = append(names, name)
		resp = send(t, client, http.MethodPost, ts.URL+"/employees", map[string]any{
			"name":      name,
			"job_title": "Eng",
			"emergency_contacts": []map[string]any{
				{"primary_emergency_contact": name + "-p1"},
				{"primary_emergency_contact": name + "-p2"},
			},
			"secondary_emergency_contacts": []map[string]any{
				{"secondary_emergency_contact": name + "-s1"},
				{"secondary_emergency_contact": name + "-s2"},
			},
		})
		expectStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	first := listEmployees(t, client, ts.URL+"/employees?page=1&pageSize=2")
	if len(first) != 2 {
		t.Fatalf("page 1: expected 2 employees, got %d", len(first))
	}
	for i, agg := range first {
		if agg.Name != names[i] {
			t.Fatalf("page 1[%d]: expected %s, got %s", i, names[i], agg.Name)
		}
		if len(agg.EmergencyContacts) != 2 || len(agg.SecondaryEmergencyContacts) != 2 {
			t.Fatalf("page 1[%d]: expected 2+2 contacts, got %d+%d", i, len(agg.EmergencyContacts), len(agg.SecondaryEmergencyContacts))
		}
	}

	second := listEmployees(t, client, ts.URL+"/employees?page=2&pageSize=2")
	if len(second) != 1 || second[0].Name != names[2] {
		t.Fatalf("page 2: expected only %s, got %+v", names[2], second)
	}
	if len(second[0].EmergencyContacts) != 2 || len(second[0].SecondaryEmergencyContacts) != 2 {
		t.Fatalf("page 2: expected 2+2 contacts, got %+v", second[0])
	}

	resp = send(t, client, http.MethodDelete, ts.URL+"/employees", nil)
	expectStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = send(t, client, http.MethodGet, ts.URL+"/employees", nil)
	expectStatus(t, resp, http.StatusOK)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	if got := string(bytes.TrimSpace(raw)); got != "[]" {
		t.Fatalf("list after delete all = %s", got)
	}
}

func listEmployees(t *testing.T, client *http.Client, target string) []employee.Aggregate {
	t.Helper()
	resp := send(t, client, http.MethodGet, target, nil)
	expectStatus(t, resp, http.StatusOK)
	var items []employee.Aggregate
	decode(t, resp, &items)
	return items
}

func getEmployee(t *testing.T, client *http.Client, baseURL, name string) employee.Aggregate {
	t.Helper()
	resp := send(t, client, http.MethodGet, baseURL+"/employees/"+url.PathEscape(name), nil)
	expectStatus(t, resp, http.StatusOK)
	var agg employee.Aggregate
	decode(t, resp, &agg)
	return agg
}

func send(t *testing.T, client *http.Client, method, target string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("%s %s: status %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, raw)
	}
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
