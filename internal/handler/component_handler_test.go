package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"feature-service/internal/model"
	"feature-service/internal/store"
	"feature-service/internal/tree"
	"feature-service/pkg/config"
	"feature-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	// Metrics register against the default registry once per process.
	prometheus.InitMetrics(cfg)
	os.Exit(m.Run())
}

func newComponentTestHandler() (*ComponentHandler, *tree.Engine) {
	engine := tree.NewEngine(store.NewMemoryComponentStore())
	return NewComponentHandler(engine), engine
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeComponent(t *testing.T, rec *httptest.ResponseRecorder) model.Component {
	t.Helper()
	var component model.Component
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &component))
	return component
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func createComponentViaHandler(t *testing.T, h *ComponentHandler, e *echo.Echo, body string) model.Component {
	t.Helper()
	c, rec := newJSONContext(e, http.MethodPost, "/api/components", body)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeComponent(t, rec)
}

func TestComponentCreate(t *testing.T) {
	h, _ := newComponentTestHandler()
	e := echo.New()

	t.Run("valid payload", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/components",
			`{"name":"DashboardContext","type":"context","description":"root context"}`)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		component := decodeComponent(t, rec)
		assert.NotEmpty(t, component.ID)
		assert.Equal(t, "DashboardContext", component.Name)
		assert.False(t, component.Completed)
		assert.NotNil(t, component.Children)
		assert.Empty(t, component.Children)
	})

	t.Run("missing name", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/components", `{"type":"context"}`)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Component name is required", decodeErrorBody(t, rec))
	})
}

func TestComponentGet(t *testing.T) {
	h, _ := newComponentTestHandler()
	e := echo.New()
	created := createComponentViaHandler(t, h, e, `{"name":"Widget"}`)

	t.Run("found", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodGet, "/api/components/"+created.ID, "")
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		require.NoError(t, h.Get(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.ID, decodeComponent(t, rec).ID)
	})

	t.Run("not found", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodGet, "/api/components/missing", "")
		c.SetParamNames("id")
		c.SetParamValues("missing")
		require.NoError(t, h.Get(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Component not found", decodeErrorBody(t, rec))
	})
}

func TestComponentUpdate(t *testing.T) {
	h, engine := newComponentTestHandler()
	e := echo.New()
	created := createComponentViaHandler(t, h, e, `{"name":"Before"}`)
	_, err := engine.AddChild(created.ID, tree.ChildInput{Name: "Kept"})
	require.NoError(t, err)

	t.Run("scalar update keeps children", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPut, "/api/components/"+created.ID,
			`{"name":"After","completed":true}`)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		component := decodeComponent(t, rec)
		assert.Equal(t, "After", component.Name)
		assert.True(t, component.Completed)
		require.Len(t, component.Children, 1)
		assert.Equal(t, "Kept", component.Children[0].Name)
	})

	t.Run("missing name", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPut, "/api/components/"+created.ID, `{}`)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPut, "/api/components/missing", `{"name":"X"}`)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestComponentDelete(t *testing.T) {
	h, _ := newComponentTestHandler()
	e := echo.New()
	created := createComponentViaHandler(t, h, e, `{"name":"Doomed"}`)

	c, rec := newJSONContext(e, http.MethodDelete, "/api/components/"+created.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(e, http.MethodDelete, "/api/components/"+created.ID, "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComponentToggleCompletion(t *testing.T) {
	h, _ := newComponentTestHandler()
	e := echo.New()
	created := createComponentViaHandler(t, h, e, `{"name":"Toggle"}`)

	c, rec := newJSONContext(e, http.MethodPatch, "/api/components/"+created.ID+"/toggle-completion", "")
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	require.NoError(t, h.ToggleCompletion(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeComponent(t, rec).Completed)
}

func TestComponentAddChild(t *testing.T) {
	h, _ := newComponentTestHandler()
	e := echo.New()
	created := createComponentViaHandler(t, h, e, `{"name":"Parent"}`)

	t.Run("appends child", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/components/"+created.ID+"/children",
			`{"name":"Child","type":"component"}`)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		require.NoError(t, h.AddChild(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		component := decodeComponent(t, rec)
		require.Len(t, component.Children, 1)
		assert.Equal(t, "Child", component.Children[0].Name)
		assert.NotEmpty(t, component.Children[0].ID)
	})

	t.Run("missing child name", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/components/"+created.ID+"/children", `{}`)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		require.NoError(t, h.AddChild(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Child component name is required", decodeErrorBody(t, rec))
	})

	t.Run("missing parent", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/components/missing/children", `{"name":"X"}`)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		require.NoError(t, h.AddChild(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestComponentChildLifecycle(t *testing.T) {
	h, engine := newComponentTestHandler()
	e := echo.New()
	created := createComponentViaHandler(t, h, e, `{"name":"Parent"}`)
	updated, err := engine.AddChild(created.ID, tree.ChildInput{Name: "Child"})
	require.NoError(t, err)
	childID := updated.Children[0].ID

	t.Run("update child", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPut, "/api/components/"+created.ID+"/children/"+childID,
			`{"name":"Renamed","completed":true}`)
		c.SetParamNames("id", "childId")
		c.SetParamValues(created.ID, childID)
		require.NoError(t, h.UpdateChild(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		component := decodeComponent(t, rec)
		require.Len(t, component.Children, 1)
		assert.Equal(t, "Renamed", component.Children[0].Name)
		assert.True(t, component.Children[0].Completed)
	})

	t.Run("toggle child", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPatch,
			"/api/components/"+created.ID+"/children/"+childID+"/toggle-completion", "")
		c.SetParamNames("id", "childId")
		c.SetParamValues(created.ID, childID)
		require.NoError(t, h.ToggleChildCompletion(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		component := decodeComponent(t, rec)
		assert.False(t, component.Children[0].Completed, "toggle flips the completed=true set above")
	})

	t.Run("unknown child id on update is not found", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPut,
			"/api/components/"+created.ID+"/children/missing", `{"name":"X"}`)
		c.SetParamNames("id", "childId")
		c.SetParamValues(created.ID, "missing")
		require.NoError(t, h.UpdateChild(c))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Child component not found", decodeErrorBody(t, rec))
	})

	t.Run("remove child", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodDelete,
			"/api/components/"+created.ID+"/children/"+childID, "")
		c.SetParamNames("id", "childId")
		c.SetParamValues(created.ID, childID)
		require.NoError(t, h.RemoveChild(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Message   string          `json:"message"`
			Component model.Component `json:"component"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Child component deleted successfully", body.Message)
		assert.Empty(t, body.Component.Children)
	})

	t.Run("remove unknown child id succeeds", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodDelete,
			"/api/components/"+created.ID+"/children/never-existed", "")
		c.SetParamNames("id", "childId")
		c.SetParamValues(created.ID, "never-existed")
		require.NoError(t, h.RemoveChild(c))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestComponentList(t *testing.T) {
	h, _ := newComponentTestHandler()
	e := echo.New()
	createComponentViaHandler(t, h, e, `{"name":"First"}`)
	createComponentViaHandler(t, h, e, `{"name":"Second"}`)

	c, rec := newJSONContext(e, http.MethodGet, "/api/components", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var components []model.Component
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &components))
	assert.Len(t, components, 2)
}

func TestComponentDeleteSelected(t *testing.T) {
	h, engine := newComponentTestHandler()
	e := echo.New()

	t.Run("empty ids", func(t *testing.T) {
		c, rec := newJSONContext(e, http.MethodPost, "/api/components/delete-selected", `{"ids":[]}`)
		require.NoError(t, h.DeleteSelected(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "At least one component id is required", decodeErrorBody(t, rec))
	})

	t.Run("mixed batch reports removals and failures", func(t *testing.T) {
		root := createComponentViaHandler(t, h, e, `{"name":"Root"}`)
		updated, err := engine.AddChild(root.ID, tree.ChildInput{Name: "Branch"})
		require.NoError(t, err)
		childID := updated.Children[0].ID

		body, err := json.Marshal(map[string][]string{"ids": {childID, root.ID, "bogus"}})
		require.NoError(t, err)

		c, rec := newJSONContext(e, http.MethodPost, "/api/components/delete-selected", string(body))
		require.NoError(t, h.DeleteSelected(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		var result tree.DeleteSelectedResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.ElementsMatch(t, []string{childID, root.ID}, result.Removed)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, "bogus", result.Failed[0].ID)
	})
}
