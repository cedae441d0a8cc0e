package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindPage(t *testing.T, query string) (PageParams, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)

	var p PageParams
	err := c.ShouldBindQuery(&p)
	return p, err
}

func TestPageParamsWindow(t *testing.T) {
	p, err := bindPage(t, "")
	require.NoError(t, err)
	offset, limit := p.Window(10)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 10, limit)

	p, err = bindPage(t, "from=20&size=5")
	require.NoError(t, err)
	offset, limit = p.Window(10)
	assert.Equal(t, 20, offset)
	assert.Equal(t, 5, limit)
}

func TestPageParamsValidation(t *testing.T) {
	for _, q := range []string{"from=-1", "size=0", "size=101", "from=abc"} {
		_, err := bindPage(t, q)
		assert.Error(t, err, q)
	}
}
