package task

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func TestTaskHandlers(t *testing.T) {
	mock, svc := newMock(t)

	app := fiber.New()
	RegisterRoutes(app.Group("/api/tasks"), svc, func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	})

	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Text Mom").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/", bytes.NewReader([]byte(`{"text":"Text Mom"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("add task status: %v %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/tasks/", bytes.NewReader([]byte(`{"text":""}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty text, got %d", resp.StatusCode)
	}

	mock.ExpectQuery(`SELECT id, user_id, text, completed, created_at`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(testTaskID, "user-1", "Text Mom", true, time.Now()))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/tasks/", nil))
	if err != nil || resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list tasks status: %v", err)
	}
	var out struct {
		Tasks   []Task `json:"tasks"`
		Summary string `json:"summary"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if len(out.Tasks) != 1 || out.Summary != "1 of 1 tasks completed" {
		t.Fatalf("unexpected list response %+v", out)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/api/tasks/bogus/toggle", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown task, got %d", resp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
