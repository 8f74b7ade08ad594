package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RouteLabelsAndInflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/conversations/:id/plan", func(c *gin.Context) { c.String(http.StatusOK, "plan") })
	r.GET("/empty", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	planBase := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/conversations/:id/plan", "200"))
	missBase := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404"))
	emptyBase := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/empty", "204"))

	for _, id := range []string{"a", "b"} {
		if w := serve(r, httptest.NewRequest(http.MethodGet, "/conversations/"+id+"/plan", nil)); w.Code != http.StatusOK {
			t.Fatalf("plan %s -> %d", id, w.Code)
		}
	}
	serve(r, httptest.NewRequest(http.MethodGet, "/nope/123", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/empty", nil))

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/conversations/:id/plan", "200")); got != planBase+2 {
		t.Fatalf("plan counter = %v, want %v", got, planBase+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404")); got != missBase+1 {
		t.Fatalf("unmatched counter = %v, want %v", got, missBase+1)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/empty", "204")); got != emptyBase+1 {
		t.Fatalf("empty counter = %v, want %v", got, emptyBase+1)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v, want 0", got)
	}
}
