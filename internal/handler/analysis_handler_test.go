package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"its4teacher-go/internal/classifier"
	"its4teacher-go/internal/handler"
	"its4teacher-go/internal/lexicon"
	"its4teacher-go/internal/model"
	"its4teacher-go/internal/service"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	lex := lexicon.Default()
	svc := service.NewAnalysisService(classifier.NewLabeler(lex), classifier.NewRuleThreeHe(lex), false)
	r := gin.New()
	handler.RegisterRoutes(r, handler.NewAnalysisHandler(svc))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func TestHealth(t *testing.T) {
	w := do(newRouter(), http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	env := decode[map[string]string](t, w)
	if env.Code != 200 || env.Message != "success" || env.Data["status"] != "ok" {
		t.Errorf("response = %+v", env)
	}
}

func TestAnalyzeTranscript(t *testing.T) {
	body := `{"videoDuration": 60, "fullText": [
		{"role": "1", "sentenceContent": "为什么会这样？", "beginTime": 0, "endTime": 2},
		{"role": "2", "sentenceContent": "因为角相等", "beginTime": 4, "endTime": 6},
		{"role": "1", "sentenceContent": "很好。", "beginTime": 7, "endTime": 8}
	]}`

	w := do(newRouter(), http.MethodPost, "/api/v1/transcripts/analyze", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	env := decode[service.TranscriptAnalysis](t, w)
	if len(env.Data.Questions) != 1 {
		t.Fatalf("questions = %d, want 1", len(env.Data.Questions))
	}
	q := env.Data.Questions[0]
	if q.Mat != model.MatWhy || q.BlmType != model.BloomAnalyze || !q.Answered || q.Answer != "因为角相等" {
		t.Errorf("question = %+v", q)
	}
	if env.Data.Statistics.Total != 1 || env.Data.Statistics.Answered != 1 {
		t.Errorf("statistics = %+v", env.Data.Statistics)
	}
}

func TestAnalyzeTranscriptBadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"fullText": [`},
		{"empty transcript", `{"videoDuration": 10, "fullText": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newRouter(), http.MethodPost, "/api/v1/transcripts/analyze", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if env := decode[any](t, w); env.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestClassifyThreeHe(t *testing.T) {
	body := `{"questions": [
		{"question": "还有其他证明方法吗？", "mat": "是何", "beginTime": 30},
		{"question": "那么它的本质是什么？", "mat": "是何", "beginTime": 40},
		{"question": "无四何？", "beginTime": 50}
	]}`

	w := do(newRouter(), http.MethodPost, "/api/v1/questions/three-he", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	env := decode[model.ThreeHeReport](t, w)

	want := []model.ThreeHeType{model.ThreeHeWhatElse, model.ThreeHeThenWhat, model.ThreeHeWhence}
	if len(env.Data.Questions) != len(want) {
		t.Fatalf("questions = %d, want %d", len(env.Data.Questions), len(want))
	}
	for i, label := range want {
		if env.Data.Questions[i].Three != label {
			t.Errorf("questions[%d].Three = %s, want %s", i, env.Data.Questions[i].Three, label)
		}
	}
	if env.Data.Questions[2].Mat != model.MatOther {
		t.Errorf("missing mat = %s, want %s", env.Data.Questions[2].Mat, model.MatOther)
	}
	if env.Data.Statistics.Mat[model.MatWhatIs] != 2 || env.Data.Statistics.Total != 3 {
		t.Errorf("statistics = %+v", env.Data.Statistics)
	}
}

func TestQuestionsRequired(t *testing.T) {
	for _, path := range []string{"/api/v1/questions/three-he", "/api/v1/questions/chains"} {
		w := do(newRouter(), http.MethodPost, path, `{}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, w.Code)
		}
	}
}

func TestBuildChains(t *testing.T) {
	body := `{"questions": [
		{"question": "什么是三角形？", "mat": "是何", "blmType": "记忆", "beginTime": 0, "endTime": 2},
		{"question": "还有呢？", "mat": "是何", "blmType": "记忆", "beginTime": 10, "endTime": 12},
		{"question": "为什么？", "mat": "为何", "blmType": "分析", "beginTime": 300, "endTime": 302}
	]}`

	w := do(newRouter(), http.MethodPost, "/api/v1/questions/chains", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	env := decode[model.ChainReport](t, w)
	if env.Data.Metadata.TotalChains != 2 || len(env.Data.Chains) != 2 {
		t.Errorf("chains = %d (metadata %d), want 2", len(env.Data.Chains), env.Data.Metadata.TotalChains)
	}
}
