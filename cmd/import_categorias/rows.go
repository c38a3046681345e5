package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Talento-api/internal/domain/entity"
)

// Columnas reconocidas en la cabecera (sin distinguir mayúsculas). Solo codigo y nombre son obligatorias.
const (
	colCode        = "codigo"
	colName        = "nombre"
	colLevel       = "nivel"
	colDepartment  = "departamento"
	colDescription = "descripcion"
	colMin         = "salario_min"
	colTarget      = "salario_objetivo"
	colMax         = "salario_max"
	colExperience  = "experiencia"
	colOrder       = "orden"
	colActive      = "activo"
)

// readRows lee todas las filas del archivo: .xlsx (primera hoja) o texto delimitado.
func readRows(name string, r io.Reader, encoding string, sep rune) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("abrir Excel: %w", err)
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("el libro no tiene hojas")
		}
		return f.GetRows(sheet)
	}

	dr, err := decodeReader(r, encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(dr)
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// decodeReader envuelve r según la codificación de la exportación. Las hojas antiguas vienen en ISO-8859-1.
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf8", "utf-8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}
}

// parseCategories convierte filas (la primera es la cabecera) en categorías. Las filas sin código
// ni nombre se ignoran.
func parseCategories(rows [][]string) ([]*entity.SalaryCategory, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("archivo vacío")
	}
	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{colCode, colName} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	out := make([]*entity.SalaryCategory, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if get(colCode) == "" && get(colName) == "" {
			continue
		}

		c := &entity.SalaryCategory{
			Code:        get(colCode),
			Name:        get(colName),
			Department:  get(colDepartment),
			Description: get(colDescription),
			IsActive:    true,
		}
		var err error
		if c.Level, err = atoiDefault(get(colLevel), 1); err != nil {
			return nil, fmt.Errorf("línea %d: nivel: %w", line, err)
		}
		if c.RequiredExperienceYears, err = atoiDefault(get(colExperience), 0); err != nil {
			return nil, fmt.Errorf("línea %d: experiencia: %w", line, err)
		}
		if c.Order, err = atoiDefault(get(colOrder), 0); err != nil {
			return nil, fmt.Errorf("línea %d: orden: %w", line, err)
		}
		if c.SalaryRange.Min, err = decimalDefault(get(colMin)); err != nil {
			return nil, fmt.Errorf("línea %d: salario_min: %w", line, err)
		}
		if c.SalaryRange.Target, err = decimalDefault(get(colTarget)); err != nil {
			return nil, fmt.Errorf("línea %d: salario_objetivo: %w", line, err)
		}
		if c.SalaryRange.Max, err = decimalDefault(get(colMax)); err != nil {
			return nil, fmt.Errorf("línea %d: salario_max: %w", line, err)
		}
		if v := strings.ToLower(get(colActive)); v != "" {
			c.IsActive = v == "1" || v == "s" || v == "si" || v == "sí" || v == "true"
		}
		out = append(out, c)
	}
	return out, nil
}

func atoiDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

var thousandsDots = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// decimalDefault admite separador de miles con punto y decimales con coma ("1.250.000,50", "1.500.000").
func decimalDefault(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if thousandsDots.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	} else if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
