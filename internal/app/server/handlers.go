package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dataaccess-backend/internal/application/services"
	"dataaccess-backend/internal/application/validation"
	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/domain/search"
)

// Header carrying the total row count of a paged find
const HeaderRowCount = "X-Row-Count"

// resourceHandler serves the REST endpoints of one resource
type resourceHandler[T models.Entity] struct {
	access    *services.AccessLayer[T]
	newEntity func() T
}

func register[T models.Entity](g *echo.Group, path string, access *services.AccessLayer[T], newEntity func() T) {
	h := &resourceHandler[T]{access: access, newEntity: newEntity}
	rg := g.Group(path)
	rg.GET("", h.find)
	rg.GET("/one", h.findOne)
	rg.GET("/count", h.count)
	rg.GET("/:id", h.findByID)
	rg.POST("", h.insert)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

func (h *resourceHandler[T]) find(c echo.Context) error {
	criteria, err := search.CriteriaFromParams(c.QueryParams())
	if err != nil {
		return err
	}
	rows, err := h.access.Find(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []T{}
	}
	c.Response().Header().Set(HeaderRowCount, strconv.FormatInt(criteria.RowCount(), 10))
	return c.JSON(http.StatusOK, rows)
}

func (h *resourceHandler[T]) findOne(c echo.Context) error {
	criteria, err := search.CriteriaFromParams(c.QueryParams())
	if err != nil {
		return err
	}
	row, found, err := h.access.FindOne(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	if !found {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, row)
}

func (h *resourceHandler[T]) count(c echo.Context) error {
	criteria, err := search.CriteriaFromParams(c.QueryParams())
	if err != nil {
		return err
	}
	n, err := h.access.Count(c.Request().Context(), criteria)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

func (h *resourceHandler[T]) findByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	row, err := h.access.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, row)
}

func (h *resourceHandler[T]) insert(c echo.Context) error {
	entity, err := h.bind(c)
	if err != nil {
		return err
	}
	created, err := h.access.Insert(c.Request().Context(), entity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *resourceHandler[T]) update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	entity, err := h.bind(c)
	if err != nil {
		return err
	}
	entity.SetID(id)
	updated, err := h.access.Update(c.Request().Context(), entity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *resourceHandler[T]) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.access.DeleteByID(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *resourceHandler[T]) bind(c echo.Context) (T, error) {
	entity := h.newEntity()
	if err := c.Echo().JSONSerializer.Deserialize(c, entity); err != nil {
		var zero T
		return zero, validation.NewValidationError(validation.CodeInvalid, "request body is not valid JSON", "body")
	}
	return entity, nil
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.NewValidationError(validation.CodeInvalid, "id must be a positive integer", "id")
	}
	return id, nil
}
