package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/subtrack-app/subtrack/app/repository"
	"github.com/subtrack-app/subtrack/internal/pkg/usercontext"
)

const (
	testMemberID    = uint(7)
	testSpaceID     = uint(3)
	testInsightUUID = "11111111-2222-3333-4444-555555555555"
)

func newDismissTestApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	// the factory is a process-wide singleton; every scenario in this file
	// shares the mock it was initialized with
	repository.InitializeFactory(gdb)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			UserID:     testMemberID,
			Username:   "vera",
			IsLoggedIn: true,
		})
		return c.Next()
	})
	app.Post("/insights/:uuid/dismiss", HandleDismissInsight)

	return app, mock
}

func insightRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "uuid", "user_id", "space_id", "type", "subject",
		"title", "description", "impact_score", "status", "expires_at", "created_at",
	}).AddRow(
		1, testInsightUUID, nil, testSpaceID, "category_analysis", "Video",
		"Multiple services in Video", "", 6, "active", nil, time.Now(),
	)
}

func memberRow(role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "space_id", "user_id", "role", "created_at"}).
		AddRow(1, testSpaceID, testMemberID, role, time.Now())
}

func TestHandleDismissInsightRoleGate(t *testing.T) {
	app, mock := newDismissTestApp(t)

	t.Run("viewer is forbidden", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM `insights`").
			WithArgs(testInsightUUID, 1).
			WillReturnRows(insightRow())
		mock.ExpectQuery("SELECT (.+) FROM `space_members`").
			WithArgs(testSpaceID, testMemberID, 1).
			WillReturnRows(memberRow("viewer"))

		req := httptest.NewRequest("POST", "/insights/"+testInsightUUID+"/dismiss", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("editor may dismiss", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM `insights`").
			WithArgs(testInsightUUID, 1).
			WillReturnRows(insightRow())
		mock.ExpectQuery("SELECT (.+) FROM `space_members`").
			WithArgs(testSpaceID, testMemberID, 1).
			WillReturnRows(memberRow("editor"))
		mock.ExpectExec("UPDATE `insights`").
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest("POST", "/insights/"+testInsightUUID+"/dismiss", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM `insights`").
			WithArgs(testInsightUUID, 1).
			WillReturnRows(insightRow())
		mock.ExpectQuery("SELECT (.+) FROM `space_members`").
			WithArgs(testSpaceID, testMemberID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		req := httptest.NewRequest("POST", "/insights/"+testInsightUUID+"/dismiss", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
