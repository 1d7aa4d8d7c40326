package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legout/skillctl/pkg/skill"
)

func writeSkill(t *testing.T, root, name, description, body string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "---\nname: " + name + "\ndescription: " + description + "\n---\n\n" + body
	require.NoError(t, os.WriteFile(filepath.Join(dir, skill.FileName), []byte(content), 0o644))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "polars-basics", "Working with Polars dataframes", "# Polars Basics\n\nUse lazy frames.\n")
	writeSkill(t, tmpDir, "duckdb-queries", "Querying with DuckDB", "# DuckDB Queries\n")

	discovery, err := skill.NewDiscovery(skill.WithRoot(tmpDir))
	require.NoError(t, err)

	srv, err := NewServer(discovery, &Config{Host: "localhost", Port: 8080})
	require.NoError(t, err)
	return srv
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Host: "localhost", Port: 8080}, false},
		{"empty host", Config{Host: "", Port: 8080}, true},
		{"port too low", Config{Host: "localhost", Port: 0}, true},
		{"port too high", Config{Host: "localhost", Port: 70000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListSkillsAPI(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/skills", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var skills []skillSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &skills))
	require.Len(t, skills, 2)
	assert.Equal(t, "duckdb-queries", skills[0].Name)
	assert.Equal(t, "polars-basics", skills[1].Name)
}

func TestGetSkillAPI(t *testing.T) {
	srv := newTestServer(t)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/skills/polars-basics", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var detail skillDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, "polars-basics", detail.Name)
		assert.Contains(t, detail.Content, "Use lazy frames.")
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/skills/no-such-skill", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<a href="/skills/polars-basics">`)
	assert.Contains(t, body, "Querying with DuckDB")
}

func TestSkillPage(t *testing.T) {
	srv := newTestServer(t)

	t.Run("renders markdown", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/skills/polars-basics", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<h1")
		assert.Contains(t, body, "Polars Basics")
	})

	t.Run("unknown skill", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/skills/no-such-skill", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
