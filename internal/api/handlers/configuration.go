package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nebari-dev/modelconfig/internal/auth"
	"github.com/nebari-dev/modelconfig/internal/configstore"
	"github.com/nebari-dev/modelconfig/internal/hooks"
	"github.com/nebari-dev/modelconfig/internal/models"
	"github.com/nebari-dev/modelconfig/internal/valuetype"
)

// StoreConfigurationRequest is the body of POST /configurations.
type StoreConfigurationRequest struct {
	Key   string          `json:"key" binding:"required" example:"theme_preference"`
	Value json.RawMessage `json:"value" swaggertype:"object"`
	Type  string          `json:"type" binding:"required,valuetype" example:"string"`
}

// UpdateConfigurationRequest is the body of PUT /configurations/{key}.
type UpdateConfigurationRequest struct {
	Value json.RawMessage `json:"value" swaggertype:"object"`
	Type  string          `json:"type" binding:"required,valuetype" example:"string"`
}

func (r *StoreConfigurationRequest) rawValue() json.RawMessage  { return r.Value }
func (r *UpdateConfigurationRequest) rawValue() json.RawMessage { return r.Value }

// ConfigurationHandler serves the configuration endpoints of the
// authenticated user for entry type T.
type ConfigurationHandler[T any, PT models.Record[T]] struct {
	store *configstore.Store[T, PT]
	hooks *hooks.Dispatcher
}

// NewConfigurationHandler creates a handler backed by store. Query hooks in d
// shape the index and show payloads.
func NewConfigurationHandler[T any, PT models.Record[T]](store *configstore.Store[T, PT], d *hooks.Dispatcher) *ConfigurationHandler[T, PT] {
	registerValidators()
	return &ConfigurationHandler[T, PT]{store: store, hooks: d}
}

// Index godoc
// @Summary List the user's configurations
// @Tags configurations
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number, when the pagination hook is enabled"
// @Param per_page query int false "Page size, when the pagination hook is enabled"
// @Success 200 {object} Response{data=[]models.Configuration}
// @Failure 401 {object} Response
// @Router /configurations [get]
func (h *ConfigurationHandler[T, PT]) Index(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	qc := hooks.QueryContext{Action: hooks.ActionIndex, Owner: user, Params: c.Request.URL.Query()}

	q, err := h.hooks.BeforeQuery(ctx, h.store.Query(ctx, user), qc)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	entries, err := h.store.Find(q)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	payload, err := h.hooks.AfterQuery(ctx, entries, qc)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	success(c, http.StatusOK, "Configurations retrieved successfully.", payload)
}

// Show godoc
// @Summary Get a configuration by key
// @Tags configurations
// @Security BearerAuth
// @Produce json
// @Param key path string true "Configuration key"
// @Success 200 {object} Response{data=models.Configuration}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /configurations/{key} [get]
func (h *ConfigurationHandler[T, PT]) Show(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	key := h.store.SanitizeKey(c.Param("key"))
	if key == "" {
		handleStoreError(c, configstore.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	qc := hooks.QueryContext{Action: hooks.ActionShow, Owner: user, Params: c.Request.URL.Query()}

	q, err := h.hooks.BeforeQuery(ctx, h.store.Query(ctx, user).Where(map[string]any{"key": key}), qc)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	entries, err := h.store.Find(q.Limit(1))
	if err != nil {
		handleStoreError(c, err)
		return
	}
	if len(entries) == 0 {
		handleStoreError(c, configstore.ErrNotFound)
		return
	}
	payload, err := h.hooks.AfterQuery(ctx, PT(&entries[0]), qc)
	if err != nil {
		handleStoreError(c, err)
		return
	}

	success(c, http.StatusOK, "Configuration retrieved successfully.", payload)
}

// Store godoc
// @Summary Create or overwrite a configuration
// @Tags configurations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param configuration body StoreConfigurationRequest true "Configuration"
// @Success 201 {object} Response{data=models.Configuration}
// @Failure 401 {object} Response
// @Failure 422 {object} Response
// @Router /configurations [post]
func (h *ConfigurationHandler[T, PT]) Store(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req StoreConfigurationRequest
	value, ok := bindConfiguration(c, &req)
	if !ok {
		return
	}

	rec, _, err := h.store.SetValue(c.Request.Context(), user, req.Key, value, valuetype.Type(req.Type))
	if err != nil {
		handleStoreError(c, err)
		return
	}

	success(c, http.StatusCreated, "Configuration saved successfully.", rec)
}

// Update godoc
// @Summary Update an existing configuration
// @Tags configurations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param key path string true "Configuration key"
// @Param configuration body UpdateConfigurationRequest true "New value and type"
// @Success 200 {object} Response{data=models.Configuration}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 422 {object} Response
// @Router /configurations/{key} [put]
func (h *ConfigurationHandler[T, PT]) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req UpdateConfigurationRequest
	value, ok := bindConfiguration(c, &req)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.store.Get(ctx, user, c.Param("key"))
	if err != nil {
		handleStoreError(c, err)
		return
	}

	rec, _, err := h.store.SetValue(ctx, user, existing.Entry().Key, value, valuetype.Type(req.Type))
	if err != nil {
		handleStoreError(c, err)
		return
	}

	success(c, http.StatusOK, "Configuration updated successfully.", rec)
}

// Destroy godoc
// @Summary Delete a configuration
// @Tags configurations
// @Security BearerAuth
// @Produce json
// @Param key path string true "Configuration key"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /configurations/{key} [delete]
func (h *ConfigurationHandler[T, PT]) Destroy(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), user, c.Param("key")); err != nil {
		handleStoreError(c, err)
		return
	}

	success(c, http.StatusOK, "Configuration deleted successfully.", nil)
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user, err := auth.UserFromContext(c)
	if err != nil {
		failure(c, http.StatusUnauthorized, "Unauthenticated.", nil)
		return nil, false
	}
	return user, true
}

// bindConfiguration decodes the request body into req and returns the decoded
// value. On failure it writes a 422 listing every offending field.
func bindConfiguration(c *gin.Context, req interface{ rawValue() json.RawMessage }) (any, bool) {
	errs := map[string]string{}

	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			failure(c, http.StatusUnprocessableEntity, "Validation failed.", map[string]string{
				"body": "The request body must be a JSON object.",
			})
			return nil, false
		}
		for field, msg := range bindingErrors(verrs) {
			errs[field] = msg
		}
	}

	var value any
	if raw := req.rawValue(); len(raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&value); err != nil {
			errs["value"] = "The value field must be valid JSON."
		}
	}
	if _, bad := errs["value"]; !bad && blank(value) {
		errs["value"] = "The value field is required."
	}

	if len(errs) > 0 {
		failure(c, http.StatusUnprocessableEntity, "Validation failed.", errs)
		return nil, false
	}
	return value, true
}

// blank reports whether a decoded value counts as missing: null, an empty or
// whitespace string, or an empty array or object. false and 0 are values.
func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// bindingErrors turns validator failures into per-field messages.
func bindingErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "The request body must be a JSON object."}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out[field] = "The " + field + " field is required."
		case "valuetype":
			out[field] = "The selected " + field + " is invalid. Allowed: " + allowedTypes() + "."
		default:
			out[field] = "The " + field + " field is invalid."
		}
	}
	return out
}

func allowedTypes() string {
	types := valuetype.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

var validatorsOnce sync.Once

// registerValidators teaches gin's validator the valuetype tag and to report
// fields by their JSON names.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("valuetype", func(fl validator.FieldLevel) bool {
			return valuetype.Type(fl.Field().String()).Valid()
		})
	})
}
