package checks

import (
	"fmt"
	"reflect"
	"strings"

	"pattern-catalog/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Table          string   `json:"table"`
	Matched        bool     `json:"matched"`
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Errors         []string `json:"errors"`
}

// CheckSchema verifies the table behind model using its gorm tags as the
// source of truth. Only columns tagged with an explicit type are type-checked.
func CheckSchema(db *gorm.DB, model interface{}) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	typ := reflect.TypeOf(model)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", typ.Kind())
	}
	tabler, ok := reflect.New(typ).Interface().(interface{ TableName() string })
	if !ok {
		return nil, fmt.Errorf("model %s does not implement TableName", typ.Name())
	}

	report := &SchemaReport{
		Table:          tabler.TableName(),
		Matched:        true,
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Errors:         []string{},
	}

	actual, err := database.GetTableColumns(db, report.Table)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		report.Matched = false
		return report, nil
	}
	if len(actual) == 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("table %s does not exist", report.Table))
		report.Matched = false
		return report, nil
	}

	columns := make(map[string]database.ColumnInfo, len(actual))
	for _, col := range actual {
		columns[col.Field] = col
	}

	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("gorm")
		name := gormTag(tag, "column")
		if name == "" {
			continue
		}

		col, exists := columns[name]
		if !exists {
			report.MissingColumns = append(report.MissingColumns, name)
			report.Matched = false
			continue
		}

		want := strings.ToLower(gormTag(tag, "type"))
		if want != "" && !strings.Contains(col.Type, want) {
			report.TypeMismatches = append(report.TypeMismatches,
				fmt.Sprintf("%s: expected %s, got %s", name, want, col.Type))
			report.Matched = false
		}
	}

	return report, nil
}

// gormTag returns the value of key in a gorm struct tag.
func gormTag(tag, key string) string {
	for _, part := range strings.Split(tag, ";") {
		if v, ok := strings.CutPrefix(part, key+":"); ok {
			return v
		}
	}
	return ""
}
