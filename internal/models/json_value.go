package models

import (
	"context"
	"database/sql/driver"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// JSONValue is a JSON document column. SQLite gives a JSON declared type
// numeric affinity and would turn scalar documents like 3 into numbers, so
// the column is TEXT there and native JSON elsewhere.
type JSONValue datatypes.JSON

// Value implements driver.Valuer.
func (j JSONValue) Value() (driver.Value, error) {
	return datatypes.JSON(j).Value()
}

// Scan implements sql.Scanner. Numeric and boolean cells from columns created
// with numeric affinity are read back as their JSON text.
func (j *JSONValue) Scan(value any) error {
	switch v := value.(type) {
	case int64:
		*j = JSONValue(strconv.FormatInt(v, 10))
		return nil
	case float64:
		*j = JSONValue(strconv.FormatFloat(v, 'g', -1, 64))
		return nil
	case bool:
		*j = JSONValue(strconv.FormatBool(v))
		return nil
	}
	return (*datatypes.JSON)(j).Scan(value)
}

func (j JSONValue) MarshalJSON() ([]byte, error) {
	return datatypes.JSON(j).MarshalJSON()
}

func (j *JSONValue) UnmarshalJSON(b []byte) error {
	return (*datatypes.JSON)(j).UnmarshalJSON(b)
}

func (j JSONValue) String() string {
	return string(j)
}

// GormDataType implements schema.GormDataTypeInterface.
func (JSONValue) GormDataType() string {
	return datatypes.JSON{}.GormDataType()
}

// GormDBDataType implements migrator.GormDBDataTypeInterface.
func (JSONValue) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "TEXT"
	}
	return datatypes.JSON{}.GormDBDataType(db, field)
}

// GormValue implements gorm.Valuer.
func (j JSONValue) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return datatypes.JSON(j).GormValue(ctx, db)
}
