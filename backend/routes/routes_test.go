package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	app        *fiber.App
	db         *gorm.DB
	cfg        *config.Config
	adminToken string
	userToken  string
)

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	db, err = gorm.Open(sqlite.Open("file:routes_test?mode=memory&cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := utils.MigrateDB(db); err != nil {
		panic(err)
	}

	app = fiber.New()
	SetupRoutes(app, db, cfg)

	// Seed an admin directly; everything else goes through the API.
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.DefaultCost)
	admin := models.User{
		Email:        "admin@church.test",
		PasswordHash: string(hash),
		FullName:     "Platform Admin",
		Role:         "admin",
	}
	db.Create(&admin)
}

func doJSON(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestRegisterAndLogin(t *testing.T) {
	status, result := doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"email":     "member@church.test",
		"password":  "member-password",
		"full_name": "Church Member",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])

	status, _ = doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"email":     "member@church.test",
		"password":  "member-password",
		"full_name": "Church Member",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, result = doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "member@church.test",
		"password": "member-password",
	})
	assert.Equal(t, fiber.StatusOK, status)
	require.NotEmpty(t, result["token"])
	userToken = result["token"].(string)

	status, result = doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "admin@church.test",
		"password": "admin-password",
	})
	assert.Equal(t, fiber.StatusOK, status)
	require.NotEmpty(t, result["token"])
	adminToken = result["token"].(string)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	status, _ := doJSON(t, "GET", "/api/admin/stats", userToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, "GET", "/api/admin/stats", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, "GET", "/api/admin/stats", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestEnrollmentFlow(t *testing.T) {
	// Admin builds a published course with two lessons.
	status, result := doJSON(t, "POST", "/api/admin/categories", adminToken, map[string]interface{}{
		"name": "Discipulado",
	})
	require.Equal(t, fiber.StatusOK, status)
	categoryID := uint(result["category"].(map[string]interface{})["ID"].(float64))

	status, result = doJSON(t, "POST", "/api/admin/courses", adminToken, map[string]interface{}{
		"title":       "Fundamentos de la Fe",
		"category_id": categoryID,
	})
	require.Equal(t, fiber.StatusOK, status)
	course := result["course"].(map[string]interface{})
	courseID := uint(course["ID"].(float64))
	assert.Equal(t, "fundamentos-de-la-fe", course["Slug"])

	var lessonIDs []uint
	for i := 1; i <= 2; i++ {
		status, result = doJSON(t, "POST", fmt.Sprintf("/api/admin/courses/%d/lessons", courseID), adminToken, map[string]interface{}{
			"title":        fmt.Sprintf("Leccion %d", i),
			"content_type": "video",
			"video_url":    "https://example.com/video",
		})
		require.Equal(t, fiber.StatusOK, status)
		lessonIDs = append(lessonIDs, uint(result["lesson"].(map[string]interface{})["ID"].(float64)))
	}

	status, _ = doJSON(t, "PUT", fmt.Sprintf("/api/admin/courses/%d", courseID), adminToken, map[string]interface{}{
		"is_published": true,
	})
	require.Equal(t, fiber.StatusOK, status)

	// Member enrolls; double enroll conflicts.
	status, _ = doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), userToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID), userToken, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	// Completing both lessons finishes the course.
	for _, lessonID := range lessonIDs {
		status, _ = doJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), userToken, nil)
		assert.Equal(t, fiber.StatusOK, status)
	}

	status, result = doJSON(t, "GET", "/api/me/courses", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	enrollments := result["enrollments"].([]interface{})
	require.Len(t, enrollments, 1)
	progress := enrollments[0].(map[string]interface{})["progress"].(map[string]interface{})
	assert.Equal(t, float64(2), progress["completed_lessons"])
	assert.Equal(t, float64(100), progress["percent"])

	status, result = doJSON(t, "GET", "/api/me/certificates", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	certificates := result["certificates"].([]interface{})
	require.Len(t, certificates, 1)
	assert.NotEmpty(t, certificates[0].(map[string]interface{})["certificate_serial"])

	// Unenroll clears the listing again.
	status, _ = doJSON(t, "DELETE", fmt.Sprintf("/api/courses/%d/enroll", courseID), userToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, "DELETE", fmt.Sprintf("/api/courses/%d/enroll", courseID), userToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, result = doJSON(t, "GET", "/api/me/courses", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["enrollments"], 0)
}

func TestSermonsAndBookmarks(t *testing.T) {
	status, result := doJSON(t, "POST", "/api/admin/sermon-categories", adminToken, map[string]interface{}{
		"name": "Domingos",
	})
	require.Equal(t, fiber.StatusOK, status)
	categoryID := uint(result["category"].(map[string]interface{})["ID"].(float64))

	status, result = doJSON(t, "POST", "/api/admin/sermons", adminToken, map[string]interface{}{
		"title":       "La Gracia",
		"category_id": categoryID,
		"speaker":     "Pastor Juan",
		"sermon_date": "2024-03-10",
	})
	require.Equal(t, fiber.StatusOK, status)
	sermonID := uint(result["sermon"].(map[string]interface{})["ID"].(float64))

	status, result = doJSON(t, "GET", "/api/sermons?search=Gracia", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), result["total"])

	status, result = doJSON(t, "GET", "/api/sermons/la-gracia", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Pastor Juan", result["Speaker"])

	// Toggle on, then off.
	status, result = doJSON(t, "POST", "/api/bookmarks/toggle", userToken, map[string]interface{}{
		"type": "sermon",
		"id":   sermonID,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["bookmarked"])

	status, result = doJSON(t, "GET", "/api/me/bookmarks", userToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, result["bookmarks"], 1)

	status, result = doJSON(t, "POST", "/api/bookmarks/toggle", userToken, map[string]interface{}{
		"type": "sermon",
		"id":   sermonID,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, result["bookmarked"])
}
