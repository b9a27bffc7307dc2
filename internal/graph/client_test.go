package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(serverURL string) *Client {
	return NewClient(Config{BaseURL: serverURL, TimeoutSeconds: 5})
}

func TestFetchName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/12345" {
			t.Errorf("path = %s, want /12345", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "tok" {
			t.Errorf("access_token = %s, want tok", r.URL.Query().Get("access_token"))
		}
		fmt.Fprint(w, `{"name": "My Page"}`)
	}))
	defer server.Close()

	name, err := newTestClient(server.URL).FetchName(context.Background(), "12345", "tok")
	if err != nil {
		t.Fatalf("FetchName failed: %v", err)
	}
	if name != "My Page" {
		t.Errorf("name = %q, want %q", name, "My Page")
	}
}

func TestFetchSeriesPageShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [{"name": "page_views", "values": [
			{"end_time": "2018-03-01T08:00:00+0000", "value": 10},
			{"end_time": "2018-03-02T08:00:00+0000", "value": 20}
		]}]}`)
	}))
	defer server.Close()

	pts, err := newTestClient(server.URL).FetchSeries(context.Background(), server.URL+"/x")
	if err != nil {
		t.Fatalf("FetchSeries failed: %v", err)
	}
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	if pts[0].DateBucket() != "2018-03-01T08:00:00+0000" {
		t.Errorf("DateBucket = %q", pts[0].DateBucket())
	}
	if pts[1].Value != float64(20) {
		t.Errorf("value = %v, want 20", pts[1].Value)
	}
}

func TestFetchSeriesAppShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [
			{"time": "2018-03-01", "value": 5, "breakdowns": {"platform": "ios"}},
			{"time": "2018-03-01", "value": 7, "breakdowns": {"platform": "android"}}
		]}`)
	}))
	defer server.Close()

	pts, err := newTestClient(server.URL).FetchSeries(context.Background(), server.URL+"/x")
	if err != nil {
		t.Fatalf("FetchSeries failed: %v", err)
	}
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	if pts[0].Breakdowns["platform"] != "ios" {
		t.Errorf("breakdowns = %v", pts[0].Breakdowns)
	}
	if pts[1].DateBucket() != "2018-03-01" {
		t.Errorf("DateBucket = %q", pts[1].DateBucket())
	}
}

func TestFetchSeriesEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare empty data", `{"data": []}`},
		{"wrapper with empty values", `{"data": [{"name": "m", "values": []}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			pts, err := newTestClient(server.URL).FetchSeries(context.Background(), server.URL+"/x")
			if err != nil {
				t.Fatalf("FetchSeries failed: %v", err)
			}
			if len(pts) != 0 {
				t.Errorf("got %d points, want 0", len(pts))
			}
		})
	}
}

func TestFetchSeriesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "Unsupported metric", "code": 100}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchSeries(context.Background(), server.URL+"/x")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Code != 100 {
		t.Errorf("code = %d, want 100", apiErr.Code)
	}
	if apiErr.Message != "Unsupported metric" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestFetchSeriesMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json at all`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchSeries(context.Background(), server.URL+"/x")
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTemplateURL(t *testing.T) {
	tmpl := NewTemplate("https://graph.facebook.com/v2.5", TemplateOptions{
		Edge:       "app_insights",
		Period:     "daily",
		Bounded:    true,
		Since:      1500000000,
		Until:      1500086400,
		HasEvents:  true,
		Aggregate:  true,
		Breakdowns: []string{"platform", "country"},
	})

	got := tmpl.URL("myApp", "tok", "app_event", "app_install", "SUM")
	want := "https://graph.facebook.com/v2.5/myApp/app_insights/app_event" +
		"?access_token=tok&period=daily&since=1500000000&until=1500086400" +
		"&event_name=app_install&aggregateBy=SUM" +
		"&breakdowns[0]=platform&breakdowns[1]=country"
	if got != want {
		t.Errorf("URL =\n%s\nwant\n%s", got, want)
	}
}

func TestTemplateURLUnbounded(t *testing.T) {
	tmpl := NewTemplate("https://graph.facebook.com/v2.5", TemplateOptions{
		Edge:   "insights",
		Period: "day",
	})

	got := tmpl.URL("page1", "tok", "page_views", "", "")
	want := "https://graph.facebook.com/v2.5/page1/insights/page_views?access_token=tok&period=day"
	if got != want {
		t.Errorf("URL = %s, want %s", got, want)
	}
}
