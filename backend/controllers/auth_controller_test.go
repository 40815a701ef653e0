package controllers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRegisterReturnsToken(t *testing.T) {
	app, _, _ := setupApp(t, &stubGenerator{})

	body := request(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "newuser",
		"email":    "new@example.com",
		"password": "secret123",
	}, fiber.StatusOK)

	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "newuser", user["username"])
}

func TestLogin(t *testing.T) {
	app, _, _ := setupApp(t, &stubGenerator{})

	body := request(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "tester",
		"password": "password123",
	}, fiber.StatusOK)
	assert.NotEmpty(t, body["token"])
}

func TestLoginWrongPassword(t *testing.T) {
	app, _, _ := setupApp(t, &stubGenerator{})

	request(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "tester",
		"password": "wrong",
	}, fiber.StatusUnauthorized)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	app, _, _ := setupApp(t, &stubGenerator{})

	request(t, app, "GET", "/api/plans/", "", nil, fiber.StatusUnauthorized)
}
