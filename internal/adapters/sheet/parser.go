package sheet

// parser.go — parseo del export CSV del pipeline.
//
// Contrato de columnas del export (fijado por la planilla, no por el
// motor): id, dealname, etapa, bdr, data_entrada, data_prevista_onboarding.
// El orden de columnas no se asume: se resuelve por el header. Filas
// malformadas se descartan con log debug — el export viene de una planilla
// editada a mano y una fila rota no debe tumbar el forecast completo.

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"caxcast/internal/domain"
)

// Columnas esperadas en el header del export.
const (
	colID             = "id"
	colName           = "dealname"
	colStage          = "etapa"
	colOwner          = "bdr"
	colEntryDate      = "data_entrada"
	colPredictedClose = "data_prevista_onboarding"
)

// Formatos de fecha tolerados: la planilla mezcla ISO y dd/mm/yyyy.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseDeals lee el export CSV completo y devuelve los deals parseados.
// Deals con etapa fuera del funnel NO se filtran acá: esa exclusión es
// política del motor de forecast, no del loader.
func ParseDeals(r io.Reader) ([]domain.Deal, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("sheet.ParseDeals: read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, fmt.Errorf("sheet.ParseDeals: %w", err)
	}

	var deals []domain.Deal
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Debug("skipping malformed CSV row", "line", line, "err", err)
			continue
		}

		deal, ok := parseRow(record, cols, line)
		if !ok {
			continue
		}
		deals = append(deals, deal)
	}
	return deals, nil
}

// mapColumns resuelve el índice de cada columna esperada en el header.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colID, colStage} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

// parseRow convierte una fila del export en un Deal.
func parseRow(record []string, cols map[string]int, line int) (domain.Deal, bool) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	id := field(colID)
	stage := field(colStage)
	if id == "" || stage == "" {
		slog.Debug("skipping CSV row without id or stage", "line", line)
		return domain.Deal{}, false
	}

	return domain.Deal{
		ID:             id,
		Name:           field(colName),
		Stage:          strings.ToUpper(stage),
		Owner:          field(colOwner),
		EntryDate:      parseDate(field(colEntryDate), line),
		PredictedClose: parseDate(field(colPredictedClose), line),
	}, true
}

// parseDate intenta los layouts tolerados; fecha vacía o inválida devuelve
// zero value (el motor la trata como "hoy" / "sin fecha prevista").
func parseDate(s string, line int) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	slog.Debug("unparseable date in CSV row, treating as empty", "line", line, "value", s)
	return time.Time{}
}
