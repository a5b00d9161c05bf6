package mysqlmirror

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	mysqlDateTime = "2006-01-02 15:04:05.999999"
	mysqlDate     = "2006-01-02"
)

// Column columna de Postgres según information_schema.columns.
type Column struct {
	Name     string
	DataType string
	UDTName  string
}

// coerce convierte un valor leído de Postgres al tipo de la columna MySQL.
func coerce(col Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch col.DataType {
	case "uuid":
		return uuidString(v)
	case "boolean":
		b, err := toBool(v)
		if err != nil {
			return nil, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case "timestamp with time zone", "timestamp without time zone":
		t, err := toTime(v)
		if err != nil {
			return nil, err
		}
		return t.UTC().Format(mysqlDateTime), nil
	case "date":
		t, err := toTime(v)
		if err != nil {
			return nil, err
		}
		return t.Format(mysqlDate), nil
	case "numeric":
		return numericString(v)
	case "json", "jsonb":
		s := textOf(v)
		if !json.Valid([]byte(s)) {
			return nil, fmt.Errorf("json inválido en %s", col.Name)
		}
		return s, nil
	case "ARRAY":
		items, err := parseTextArray(textOf(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", col.Name, err)
		}
		b, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	switch x := v.(type) {
	case []byte:
		return string(x), nil
	case [16]byte:
		return uuid.UUID(x).String(), nil
	}
	return v, nil
}

func textOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}

func uuidString(v any) (string, error) {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String(), nil
	case []byte:
		if len(x) == 16 {
			id, err := uuid.FromBytes(x)
			return id.String(), err
		}
		v = string(x)
	}
	id, err := uuid.Parse(textOf(v))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case int64:
		return x != 0, nil
	}
	switch textOf(v) {
	case "t", "true", "1":
		return true, nil
	case "f", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("booleano inválido: %v", v)
}

func toTime(v any) (time.Time, error) {
	if t, ok := v.(time.Time); ok {
		return t, nil
	}
	s := textOf(v)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05.999999", mysqlDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida: %q", s)
}

func numericString(v any) (string, error) {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	}
	s := strings.TrimSpace(textOf(v))
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", fmt.Errorf("numérico inválido: %q", s)
	}
	return s, nil
}

// parseTextArray interpreta un arreglo unidimensional en formato texto de Postgres:
// {a,"b c","d\"e",NULL}. NULL sin comillas produce nil.
func parseTextArray(s string) ([]any, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, fmt.Errorf("arreglo inválido: %q", s)
	}
	body := s[1 : len(s)-1]
	items := []any{}
	if body == "" {
		return items, nil
	}

	var (
		cur    strings.Builder
		quoted bool
		inStr  bool
	)
	push := func() {
		val := cur.String()
		if !quoted && strings.EqualFold(strings.TrimSpace(val), "NULL") {
			items = append(items, nil)
		} else if quoted {
			items = append(items, val)
		} else {
			items = append(items, strings.TrimSpace(val))
		}
		cur.Reset()
		quoted = false
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case inStr && c == '\\' && i+1 < len(body):
			i++
			cur.WriteByte(body[i])
		case c == '"':
			inStr = !inStr
			quoted = true
		case !inStr && c == ',':
			push()
		case !inStr && (c == '{' || c == '}'):
			return nil, fmt.Errorf("arreglos multidimensionales no soportados")
		default:
			cur.WriteByte(c)
		}
	}
	if inStr {
		return nil, fmt.Errorf("arreglo inválido: comillas sin cerrar")
	}
	push()
	return items, nil
}
