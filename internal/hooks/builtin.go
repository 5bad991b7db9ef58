package hooks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/nebari-dev/modelconfig/internal/audit"
	"gorm.io/gorm"
)

// LogHook writes a structured log line for every value set.
type LogHook struct {
	logger *slog.Logger
}

func NewLogHook(logger *slog.Logger) *LogHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHook{logger: logger}
}

func (h *LogHook) OnValueSet(ctx context.Context, ev ValueSetEvent) error {
	h.logger.InfoContext(ctx, "Configuration value set",
		"owner_type", ev.Owner.ConfigurableType(),
		"owner_id", ev.Owner.ConfigurableID(),
		"key", ev.Key,
		"type", ev.Type,
		"created", ev.Created,
		"value_present", ev.Value.Present(),
	)
	return nil
}

// AuditHook records every value set in the audit log table.
type AuditHook struct {
	db *gorm.DB
}

func NewAuditHook(db *gorm.DB) (*AuditHook, error) {
	if db == nil {
		return nil, errors.New("audit hook requires a database")
	}
	return &AuditHook{db: db}, nil
}

func (h *AuditHook) OnValueSet(ctx context.Context, ev ValueSetEvent) error {
	action := audit.ActionUpdateConfiguration
	if ev.Created {
		action = audit.ActionCreateConfiguration
	}
	details := map[string]interface{}{
		"type":  ev.Type,
		"value": ev.Value,
	}
	if ev.Entry != nil {
		details["configuration_id"] = ev.Entry.ID.String()
	}
	if err := audit.LogAction(ctx, h.db, ev.Owner, action, "configuration:"+ev.Key, details); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// PaginationHook limits index queries using the page and per_page parameters.
type PaginationHook struct {
	defaultPerPage int
	maxPerPage     int
}

func NewPaginationHook(defaultPerPage, maxPerPage int) *PaginationHook {
	if defaultPerPage <= 0 {
		defaultPerPage = 15
	}
	if maxPerPage < defaultPerPage {
		maxPerPage = defaultPerPage
	}
	return &PaginationHook{defaultPerPage: defaultPerPage, maxPerPage: maxPerPage}
}

func (h *PaginationHook) BeforeQuery(ctx context.Context, q *gorm.DB, qc QueryContext) (*gorm.DB, error) {
	if qc.Action != ActionIndex {
		return q, nil
	}
	page := positiveInt(qc.Params.Get("page"), 1)
	perPage := positiveInt(qc.Params.Get("per_page"), h.defaultPerPage)
	if perPage > h.maxPerPage {
		perPage = h.maxPerPage
	}
	return q.Limit(perPage).Offset((page - 1) * perPage), nil
}

func (h *PaginationHook) AfterQuery(ctx context.Context, results any, qc QueryContext) (any, error) {
	return results, nil
}

func positiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// EnvelopeHook wraps read payloads in a single-field object.
type EnvelopeHook struct {
	field string
}

func NewEnvelopeHook(field string) *EnvelopeHook {
	return &EnvelopeHook{field: field}
}

func (h *EnvelopeHook) BeforeQuery(ctx context.Context, q *gorm.DB, qc QueryContext) (*gorm.DB, error) {
	return q, nil
}

func (h *EnvelopeHook) AfterQuery(ctx context.Context, results any, qc QueryContext) (any, error) {
	return map[string]any{h.field: results}, nil
}
