package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"dvfmap/internal/models"
)

// Column names of the geo-dvf export.
const (
	colID          = "id_mutation"
	colDate        = "date_mutation"
	colValue       = "valeur_fonciere"
	colNumber      = "adresse_numero"
	colStreet      = "adresse_nom_voie"
	colPostalCode  = "code_postal"
	colCommune     = "code_commune"
	colCommuneName = "nom_commune"
	colDept        = "code_departement"
	colParcel      = "id_parcelle"
	colType        = "type_local"
	colSurface     = "surface_reelle_bati"
	colRooms       = "nombre_pieces_principales"
)

var requiredColumns = []string{colValue, colCommune, colType, colSurface}

type columns map[string]int

func (c columns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// LoadTransactions reads a DVF CSV. The delimiter (',', ';' or '|') is
// taken from the header line. Empty value or surface fields are kept as 0
// so the record stays in raw storage while being excluded from statistics.
func (l *Loader) LoadTransactions(r io.Reader) ([]models.Transaction, Report, error) {
	var report Report

	br := bufio.NewReader(r)
	header, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, report, fmt.Errorf("failed to read transactions: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(header)

	names, err := reader.Read()
	if err != nil {
		return nil, report, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make(columns, len(names))
	for i, name := range names {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, report, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	transactions := make([]models.Transaction, 0, 1024)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Read++

		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, report, fmt.Errorf("failed to read transactions: %w", err)
			}
			report.Skipped++
			l.logger.WithError(err).WithField("line", parseErr.Line).Warn("Skipping malformed row")
			continue
		}

		tx, err := parseTransaction(cols, record)
		if err != nil {
			line, _ := reader.FieldPos(0)
			report.Skipped++
			l.logger.WithError(err).WithField("line", line).Warn("Skipping transaction")
			continue
		}
		transactions = append(transactions, tx)
		report.Kept++
	}

	l.summary("transactions", report)
	return transactions, report, nil
}

func detectDelimiter(header []byte) rune {
	first := string(header)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	best, bestCount := ',', strings.Count(first, ",")
	for _, d := range []rune{';', '|', '\t'} {
		if n := strings.Count(first, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func parseTransaction(cols columns, record []string) (models.Transaction, error) {
	value, err := parseNumber(cols.get(record, colValue))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid %s: %w", colValue, err)
	}
	surface, err := parseNumber(cols.get(record, colSurface))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid %s: %w", colSurface, err)
	}

	tx := models.Transaction{
		ID:           cols.get(record, colID),
		CommuneCode:  cols.get(record, colCommune),
		CommuneName:  cols.get(record, colCommuneName),
		DeptCode:     cols.get(record, colDept),
		SectionCode:  models.SectionFromParcel(cols.get(record, colParcel)),
		PropertyType: models.ParsePropertyType(cols.get(record, colType)),
		Value:        value,
		Surface:      surface,
		Address:      address(cols, record),
	}
	if tx.DeptCode == "" && len(tx.CommuneCode) >= 2 {
		tx.DeptCode = tx.CommuneCode[:2]
	}

	if raw := cols.get(record, colRooms); raw != "" {
		rooms, err := parseNumber(raw)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("invalid %s: %w", colRooms, err)
		}
		n := int(rooms)
		tx.Rooms = &n
	}

	if raw := cols.get(record, colDate); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("invalid %s: %w", colDate, err)
		}
		tx.Date = date
	}

	return tx, nil
}

// parseNumber accepts both "1234.5" and the French "1 234,5". An empty
// field is 0.
func parseNumber(raw string) (float64, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		case ',':
			return '.'
		}
		return r
	}, raw)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return v, nil
}

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

func parseDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func address(cols columns, record []string) string {
	street := strings.TrimSpace(cols.get(record, colNumber) + " " + cols.get(record, colStreet))
	town := strings.TrimSpace(cols.get(record, colPostalCode) + " " + cols.get(record, colCommuneName))
	switch {
	case street == "":
		return town
	case town == "":
		return street
	}
	return street + ", " + town
}
