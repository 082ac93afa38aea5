package convert

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func doPost(t *testing.T, svc *Service, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/ws"))
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHandlerEditDiagramStatuses(t *testing.T) {
	body := `{"instruction":"rename","diagram":{"nodes":[{"id":"a","label":"A"}],"edges":[]}}`
	tests := []struct {
		name string
		svc  *Service
		body string
		want int
	}{
		{name: "ok", svc: &Service{LLM: &stubLLM{out: `{"nodes":[{"id":"a","label":"B"}]}`}}, body: body, want: http.StatusOK},
		{name: "bad diagram", svc: &Service{LLM: &stubLLM{}}, body: `{"instruction":"x","diagram":{"nodes":"no"}}`, want: http.StatusBadRequest},
		{name: "llm missing", svc: &Service{}, body: body, want: http.StatusServiceUnavailable},
		{name: "llm prose", svc: &Service{LLM: &stubLLM{out: "nope"}}, body: body, want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doPost(t, tt.svc, "/ws/ai/edit-diagram", tt.body)
			if resp.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestHandlerExtractExamplesRequiresTranscript(t *testing.T) {
	resp := doPost(t, &Service{LLM: &stubLLM{}}, "/ws/ai/extract-examples", `{"projectId":"p"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
