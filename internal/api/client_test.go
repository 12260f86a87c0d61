package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestErrorMessageFromDetailString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Email ou senha inválidos"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	if err == nil {
		t.Fatal("expected an error")
	}
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "Email ou senha inválidos" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if !IsUnauthorized(err) {
		t.Error("IsUnauthorized should report true")
	}
}

func TestErrorMessageFromDetailList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": [{"msg": "A senha deve ter pelo menos 6 caracteres"}, {"msg": "outro"}]}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	_, err := client.Signup(context.Background(), SignupRequest{Email: "a@b.com", Password: "x", Name: "A", Role: RoleLearner})
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", apiErr.Status)
	}
	if apiErr.Message != "A senha deve ter pelo menos 6 caracteres" {
		t.Errorf("message = %q, want first detail msg", apiErr.Message)
	}
}

func TestErrorMessageFallsBackWhenBodyUnparseable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>boom</html>`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	err := client.Health(context.Background())
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Message != msgRequestFailed {
		t.Errorf("message = %q, want fallback", apiErr.Message)
	}
}

func TestNoResponseYieldsStatusZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nobody listens anymore

	client := New(server.URL, time.Second)
	err := client.Health(context.Background())
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != StatusNoResponse {
		t.Errorf("status = %d, want %d", apiErr.Status, StatusNoResponse)
	}
	if apiErr.Message != msgNoConnection {
		t.Errorf("message = %q", apiErr.Message)
	}
	if !IsNetworkError(err) {
		t.Error("IsNetworkError should report true")
	}
}

func TestPreSendFaultYieldsStatusMinusOne(t *testing.T) {
	client := New("http://localhost:0", time.Second)
	// A control character in the path makes request construction fail
	// before anything is sent.
	err := client.do(context.Background(), http.MethodGet, "/\x7f bad path", nil, nil, nil)
	apiErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Status != StatusClientFault {
		t.Errorf("status = %d, want %d", apiErr.Status, StatusClientFault)
	}
}

func TestBearerHeaderArmedAndCleared(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	client.SetToken("tok-123")
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if got != "Bearer tok-123" {
		t.Errorf("authorization = %q", got)
	}

	client.ClearToken()
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if got != "" {
		t.Errorf("authorization after clear = %q", got)
	}
}

func TestTopicFiltersOmitUnset(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	if _, err := client.GetForumTopics(context.Background(), TopicFilters{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if query != "" {
		t.Errorf("query = %q, want empty for zero filters", query)
	}

	subjectID := int64(3)
	resolved := false
	_, err := client.GetForumTopics(context.Background(), TopicFilters{
		SubjectID:  &subjectID,
		IsResolved: &resolved,
		Search:     "fraction",
		Limit:      5,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	values, _ := url.ParseQuery(query)
	if values.Get("subject_id") != "3" || values.Get("is_resolved") != "false" ||
		values.Get("search") != "fraction" || values.Get("limit") != "5" {
		t.Errorf("query = %q", query)
	}
	if values.Get("user_id") != "" || values.Get("skip") != "" {
		t.Errorf("unset filters leaked into query %q", query)
	}
}

func TestPublishLessonMultipart(t *testing.T) {
	dir := t.TempDir()
	mediaPath := filepath.Join(dir, "aula.mp4")
	if err := os.WriteFile(mediaPath, []byte("fake video bytes"), 0600); err != nil {
		t.Fatal(err)
	}

	var gotTitle, gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotTitle = r.FormValue("title")
		if _, header, err := r.FormFile("media_file"); err == nil {
			gotFile = header.Filename
		}
		json.NewEncoder(w).Encode(PublishedLesson{ID: 1, Title: r.FormValue("title")})
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	lesson, err := client.PublishLesson(context.Background(), 1, 2, "Frações", "intro",
		&MediaFile{Path: mediaPath, ContentType: "video/mp4"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if lesson.ID != 1 || gotTitle != "Frações" {
		t.Errorf("lesson = %+v, title = %q", lesson, gotTitle)
	}
	if gotFile != "aula.mp4" {
		t.Errorf("filename = %q", gotFile)
	}
}

func TestPublishLessonWithoutMediaOmitsPart(t *testing.T) {
	var hadFile bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		_, _, err := r.FormFile("media_file")
		hadFile = err == nil
		json.NewEncoder(w).Encode(PublishedLesson{ID: 2})
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	if _, err := client.PublishLesson(context.Background(), 1, 2, "Texto puro", "", nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if hadFile {
		t.Error("media_file part should be omitted when there is no media")
	}
}
