package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/item"
	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
)

const (
	userID    = "11111111-1111-1111-1111-111111111111"
	requestID = "22222222-2222-2222-2222-222222222222"
)

type stubService struct {
	itemrequest.Service

	gotDescription string
	gotPage        itemrequest.Page
}

func sample() *itemrequest.ItemRequest {
	reqID := requestID
	return &itemrequest.ItemRequest{
		ID:          requestID,
		Description: "ladder",
		RequestorID: userID,
		CreatedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Items:       []*item.Item{{ID: "item-1", Name: "Ladder", RequestID: &reqID}},
	}
}

func (s *stubService) Create(_ context.Context, _ string, description string) (*itemrequest.ItemRequest, error) {
	s.gotDescription = description
	if strings.TrimSpace(description) == "" {
		return nil, itemrequest.ErrDescriptionRequired
	}
	return sample(), nil
}

func (s *stubService) ListOwn(context.Context, string) ([]*itemrequest.ItemRequest, error) {
	return nil, nil
}

func (s *stubService) ListOthers(_ context.Context, _ string, page itemrequest.Page) ([]*itemrequest.ItemRequest, error) {
	s.gotPage = page
	return []*itemrequest.ItemRequest{sample()}, nil
}

func (s *stubService) GetByID(_ context.Context, _, id string) (*itemrequest.ItemRequest, error) {
	if id != requestID {
		return nil, itemrequest.ErrNotFound
	}
	return sample(), nil
}

func setupRouter(svc itemrequest.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		auth.SetUserID(c, userID)
		c.Next()
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, 10), fakeAuth)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateHandler(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	w := do(r, http.MethodPost, "/v1/requests", `{"description":"ladder"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp ItemRequestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, requestID, resp.ID)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Ladder", resp.Items[0].Name)

	w = do(r, http.MethodPost, "/v1/requests", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/requests", `{"description":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListHandlers(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	w := do(r, http.MethodGet, "/v1/requests", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodGet, "/v1/requests/all?from=4&size=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, itemrequest.Page{Offset: 4, Limit: 2}, svc.gotPage)
	var page response.ListResponse[ItemRequestResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Items, 1)

	w = do(r, http.MethodGet, "/v1/requests/all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, itemrequest.Page{Offset: 0, Limit: 10}, svc.gotPage)

	w = do(r, http.MethodGet, "/v1/requests/all?size=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHandler(t *testing.T) {
	r := setupRouter(&stubService{})

	w := do(r, http.MethodGet, "/v1/requests/"+requestID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/v1/requests/33333333-3333-3333-3333-333333333333", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/v1/requests/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
