package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inciq/internal/server/middleware"
	"inciq/pkg/knowledge"
	"inciq/pkg/store/memory"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validator.Struct(i)
}

func newTestContext(t *testing.T, body string, app *middleware.App) (*middleware.AppContext, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return &middleware.AppContext{Context: c, App: app}, rec
}

func seededApp(t *testing.T) *middleware.App {
	t.Helper()
	s := memory.New()
	return &middleware.App{
		Store:  s,
		Graphs: knowledge.NewProvider(s),
	}
}

func TestAnalyzeEmptyQueryIsNotAnError(t *testing.T) {
	for name, body := range map[string]string{
		"empty list":      `{"inci_list": []}`,
		"whitespace only": `{"inci_list": ["  ", ""]}`,
	} {
		t.Run(name, func(t *testing.T) {
			c, rec := newTestContext(t, body, seededApp(t))
			if err := AnalyzeINCIHandler(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
			}

			var res struct {
				Matched           []json.RawMessage `json:"branded_ingredients"`
				Unmatched         []json.RawMessage `json:"unmatched_inci"`
				OverallConfidence float64           `json:"overall_confidence"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(res.Matched) != 0 || len(res.Unmatched) != 0 {
				t.Errorf("expected empty result, got %s", rec.Body.String())
			}
			if res.OverallConfidence != 0 {
				t.Errorf("overall_confidence = %v, want 0", res.OverallConfidence)
			}
		})
	}
}

func TestAnalyzeUnmatchedOnlyQuery(t *testing.T) {
	c, rec := newTestContext(t, `{"inci_list": ["Aqua"]}`, seededApp(t))
	if err := AnalyzeINCIHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Unmatched []struct {
			Name string `json:"name"`
		} `json:"unmatched_inci"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0].Name != "Aqua" {
		t.Errorf("unmatched = %+v, want [Aqua]", res.Unmatched)
	}
}

func TestPredictEmptyQueryIsNotAnError(t *testing.T) {
	c, rec := newTestContext(t, `{"inci_list": []}`, seededApp(t))
	if err := PredictCombinationHandler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Predictions) != 0 {
		t.Errorf("predictions = %s, want none", rec.Body.String())
	}
}
