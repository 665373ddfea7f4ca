package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/internal/service"
)

// mockClientService is a mock implementation of ClientServiceInterface.
type mockClientService struct {
	listFn         func(ctx context.Context) ([]model.Client, error)
	searchByNameFn func(ctx context.Context, fragment string) ([]model.Client, error)
	getByCPFFn     func(ctx context.Context, cpf string) (*model.Client, error)
	createFn       func(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error)
	updateFn       func(ctx context.Context, cpf string, req *model.UpdateClientRequest) (*model.Client, error)
	deleteByCPFFn  func(ctx context.Context, cpf string) error
	deleteByNameFn func(ctx context.Context, name string) (string, error)
}

func (m *mockClientService) List(ctx context.Context) ([]model.Client, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, service.ErrClientNotFound
}

func (m *mockClientService) SearchByName(ctx context.Context, fragment string) ([]model.Client, error) {
	if m.searchByNameFn != nil {
		return m.searchByNameFn(ctx, fragment)
	}
	return nil, service.ErrClientNotFound
}

func (m *mockClientService) GetByCPF(ctx context.Context, cpf string) (*model.Client, error) {
	if m.getByCPFFn != nil {
		return m.getByCPFFn(ctx, cpf)
	}
	return nil, service.ErrClientNotFound
}

func (m *mockClientService) Create(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.Client{CPF: req.CPF, Name: req.Name}, nil
}

func (m *mockClientService) Update(ctx context.Context, cpf string, req *model.UpdateClientRequest) (*model.Client, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, cpf, req)
	}
	return nil, service.ErrClientNotFound
}

func (m *mockClientService) DeleteByCPF(ctx context.Context, cpf string) error {
	if m.deleteByCPFFn != nil {
		return m.deleteByCPFFn(ctx, cpf)
	}
	return nil
}

func (m *mockClientService) DeleteByName(ctx context.Context, name string) (string, error) {
	if m.deleteByNameFn != nil {
		return m.deleteByNameFn(ctx, name)
	}
	return "", service.ErrClientNotFound
}

func TestCreateClient_Success(t *testing.T) {
	var captured *model.CreateClientRequest
	svc := &mockClientService{
		createFn: func(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
			captured = req
			return &model.Client{CPF: req.CPF, Name: req.Name}, nil
		},
	}
	app := setupTestApp(svc, nil, nil)

	var body map[string]string
	resp := doRequest(t, app, http.MethodPost, "/clientes", `{"nome": "  Ana  ", "cpf": "529.982.247-25"}`, &body)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, captured)
	assert.Equal(t, "52998224725", captured.CPF, "cpf must be sanitized before reaching the service")
	assert.Equal(t, "Ana", captured.Name, "name must be trimmed")
	assert.Equal(t, map[string]string{"nome": "Ana", "cpf": "52998224725"}, body)
}

func TestCreateClient_Validation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{"missing name", `{"cpf": "52998224725"}`, "invalid request: nome is required"},
		{"blank name", `{"nome": "   ", "cpf": "52998224725"}`, "invalid request: nome is required"},
		{"long name", `{"nome": "` + strings.Repeat("a", 51) + `", "cpf": "52998224725"}`, "invalid request: nome exceeds maximum length of 50"},
		{"missing cpf", `{"nome": "Ana"}`, "invalid request: cpf is required"},
		{"bad check digit", `{"nome": "Ana", "cpf": "52998224724"}`, "invalid request: cpf is not a valid CPF"},
		{"repeated digits", `{"nome": "Ana", "cpf": "111.111.111-11"}`, "invalid request: cpf is not a valid CPF"},
		{"malformed json", `{"nome": `, "invalid request: body must be a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockClientService{
				createFn: func(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
					called = true
					return nil, nil
				},
			}
			app := setupTestApp(svc, nil, nil)

			var body errorBody
			resp := doRequest(t, app, http.MethodPost, "/clientes", tt.body, &body)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.wantError, body.Error)
			assert.NotNil(t, body.Details)
			assert.False(t, called, "service must not be called for an invalid body")
		})
	}
}

func TestCreateClient_Duplicate(t *testing.T) {
	svc := &mockClientService{
		createFn: func(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
			return nil, service.ErrClientExists
		},
	}
	app := setupTestApp(svc, nil, nil)

	var body errorBody
	resp := doRequest(t, app, http.MethodPost, "/clientes", `{"nome": "Ana", "cpf": "52998224725"}`, &body)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "client already exists", body.Error)
}

func TestListClients(t *testing.T) {
	t.Run("returns array", func(t *testing.T) {
		svc := &mockClientService{
			listFn: func(ctx context.Context) ([]model.Client, error) {
				return []model.Client{{CPF: "52998224725", Name: "Ana"}, {CPF: "11144477735", Name: "Bruno"}}, nil
			},
		}
		app := setupTestApp(svc, nil, nil)

		var body []map[string]string
		resp := doRequest(t, app, http.MethodGet, "/clientes", "", &body)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Len(t, body, 2)
	})

	t.Run("empty is 404", func(t *testing.T) {
		app := setupTestApp(nil, nil, nil)

		resp := doRequest(t, app, http.MethodGet, "/clientes", "", nil)

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestGetClient_SanitizesPath(t *testing.T) {
	var gotCPF string
	svc := &mockClientService{
		getByCPFFn: func(ctx context.Context, cpf string) (*model.Client, error) {
			gotCPF = cpf
			return &model.Client{CPF: cpf, Name: "Ana"}, nil
		},
	}
	app := setupTestApp(svc, nil, nil)

	var body map[string]string
	resp := doRequest(t, app, http.MethodGet, "/clientes/cpf/529.982.247-25", "", &body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "52998224725", gotCPF)
	assert.Equal(t, "Ana", body["nome"])
}

func TestSearchClients_DecodesName(t *testing.T) {
	var gotName string
	svc := &mockClientService{
		searchByNameFn: func(ctx context.Context, fragment string) ([]model.Client, error) {
			gotName = fragment
			return []model.Client{{CPF: "52998224725", Name: "Ana Souza"}}, nil
		},
	}
	app := setupTestApp(svc, nil, nil)

	resp := doRequest(t, app, http.MethodGet, "/clientes/nome/Ana%20Souza", "", nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana Souza", gotName)
}

func TestSearchClients_RejectsMalformedName(t *testing.T) {
	for _, path := range []string{"/clientes/nome/%FFab", "/clientes/nome/a%00b"} {
		called := false
		svc := &mockClientService{
			searchByNameFn: func(ctx context.Context, fragment string) ([]model.Client, error) {
				called = true
				return nil, nil
			},
		}
		app := setupTestApp(svc, nil, nil)

		var body errorBody
		resp := doRequest(t, app, http.MethodGet, path, "", &body)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, path)
		assert.Contains(t, body.Message, "nome is not valid text", path)
		assert.False(t, called, path)
	}
}

func TestUpdateClient(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		var gotReq *model.UpdateClientRequest
		svc := &mockClientService{
			updateFn: func(ctx context.Context, cpf string, req *model.UpdateClientRequest) (*model.Client, error) {
				assert.Equal(t, "52998224725", cpf)
				gotReq = req
				return &model.Client{CPF: cpf, Name: *req.Name}, nil
			},
		}
		app := setupTestApp(svc, nil, nil)

		var body map[string]string
		resp := doRequest(t, app, http.MethodPut, "/clientes/52998224725", `{"nome": "Ana Maria"}`, &body)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, gotReq)
		assert.Nil(t, gotReq.CPF)
		assert.Equal(t, "Ana Maria", body["nome"])
	})

	t.Run("no fields", func(t *testing.T) {
		svc := &mockClientService{
			updateFn: func(ctx context.Context, cpf string, req *model.UpdateClientRequest) (*model.Client, error) {
				return nil, service.ErrNoFieldsToUpdate
			},
		}
		app := setupTestApp(svc, nil, nil)

		var body errorBody
		resp := doRequest(t, app, http.MethodPut, "/clientes/52998224725", `{}`, &body)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "no field to update", body.Error)
	})

	t.Run("invalid new cpf", func(t *testing.T) {
		app := setupTestApp(nil, nil, nil)

		var body errorBody
		resp := doRequest(t, app, http.MethodPut, "/clientes/52998224725", `{"cpf": "123"}`, &body)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid request: cpf is not a valid CPF", body.Error)
	})

	t.Run("not found", func(t *testing.T) {
		app := setupTestApp(nil, nil, nil)

		resp := doRequest(t, app, http.MethodPut, "/clientes/52998224725", `{"nome": "Ana"}`, nil)

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteClientByCPF(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		app := setupTestApp(nil, nil, nil)

		var body map[string]string
		resp := doRequest(t, app, http.MethodDelete, "/clientes/excluir-clientes-cpf/529.982.247-25/permanente", "", &body)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "52998224725", body["cpf"])
		assert.NotEmpty(t, body["message"])
	})

	t.Run("missing is 404 not 500", func(t *testing.T) {
		svc := &mockClientService{
			deleteByCPFFn: func(ctx context.Context, cpf string) error {
				return service.ErrClientNotFound
			},
		}
		app := setupTestApp(svc, nil, nil)

		resp := doRequest(t, app, http.MethodDelete, "/clientes/excluir-clientes-cpf/52998224725/permanente", "", nil)

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteClientByName(t *testing.T) {
	t.Run("unique", func(t *testing.T) {
		svc := &mockClientService{
			deleteByNameFn: func(ctx context.Context, name string) (string, error) {
				assert.Equal(t, "Ana Souza", name)
				return "52998224725", nil
			},
		}
		app := setupTestApp(svc, nil, nil)

		var body map[string]string
		resp := doRequest(t, app, http.MethodDelete, "/clientes/excluir-cliente-nome/Ana%20Souza/permanente", "", &body)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "52998224725", body["cpf"])
		assert.Equal(t, "Ana Souza", body["nome"])
	})

	t.Run("ambiguous", func(t *testing.T) {
		svc := &mockClientService{
			deleteByNameFn: func(ctx context.Context, name string) (string, error) {
				return "", service.ErrAmbiguousName
			},
		}
		app := setupTestApp(svc, nil, nil)

		var body errorBody
		resp := doRequest(t, app, http.MethodDelete, "/clientes/excluir-cliente-nome/Ana/permanente", "", &body)

		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Equal(t, "name matches more than one record", body.Error)
	})

	t.Run("blank name", func(t *testing.T) {
		app := setupTestApp(nil, nil, nil)

		resp := doRequest(t, app, http.MethodDelete, "/clientes/excluir-cliente-nome/%20%20/permanente", "", nil)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
