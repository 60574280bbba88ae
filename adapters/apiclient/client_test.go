package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
)

func TestRecordProgress(t *testing.T) {
	var got domain.ProgressUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != progressPath {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task_id":"t1","completed":true,"attempts":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok")
	err := c.RecordProgress(context.Background(), domain.ProgressUpdate{TaskID: "t1", Answer: "a", Passed: true})
	if err != nil {
		t.Fatalf("RecordProgress: %v", err)
	}
	if got.TaskID != "t1" || !got.Passed {
		t.Errorf("server got %+v", got)
	}
}

func TestErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid token"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, "bad").RecordProgress(context.Background(), domain.ProgressUpdate{TaskID: "t1"})
	if err == nil || !strings.Contains(err.Error(), "(401): Invalid token") {
		t.Errorf("err = %v", err)
	}
}

func TestListMethodsAndProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case methodsPath:
			_, _ = w.Write([]byte(`{"methods":[{"id":"m1","title":"Few-shot","tags":["prompting"]}]}`))
		case progressPath:
			_, _ = w.Write([]byte(`{"progress":[{"task_id":"t1","attempts":2}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	methods, err := c.ListMethods(context.Background())
	if err != nil {
		t.Fatalf("ListMethods: %v", err)
	}
	if len(methods) != 1 || methods[0].Title != "Few-shot" || methods[0].Tags[0] != "prompting" {
		t.Errorf("methods = %+v", methods)
	}

	progress, err := c.ListProgress(context.Background())
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if len(progress) != 1 || progress[0].Attempts != 2 {
		t.Errorf("progress = %+v", progress)
	}
}
