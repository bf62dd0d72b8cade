package console

// console.go — presentación del forecast en la terminal.
//
// Único lugar donde los conteos fraccionales se redondean (un decimal):
// el motor entrega la aritmética sin redondear.

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"caxcast/internal/domain"
)

// Console implementa ports.Renderer escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un renderer. Con table=false imprime el resumen compacto.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un renderer sobre un writer arbitrario, para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// RenderForecast imprime la proyección diaria por etapa.
func (c *Console) RenderForecast(_ context.Context, snapshot []domain.Deal, days []domain.DailyProjection, funnel []string) error {
	if len(days) == 0 {
		fmt.Fprintf(c.out, "[%s] empty forecast\n", time.Now().Format("15:04:05"))
		return nil
	}

	terminal := ""
	if len(funnel) > 0 {
		terminal = funnel[len(funnel)-1]
	}
	converted := days[len(days)-1].Counts[terminal]

	if !c.table {
		c.printCompact(snapshot, days, funnel, terminal, converted)
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] forecast %d días hábiles — %d deals, +%.1f onboarded esperados\n",
		time.Now().Format("15:04:05"), len(days), len(snapshot), converted)
	c.printProjectionTable(days, funnel)
	c.printStageBreakdown(snapshot, funnel)
	return nil
}

// RenderScenario imprime la proyección del escenario y su resumen.
func (c *Console) RenderScenario(_ context.Context, days []domain.DailyProjection, summary domain.ScenarioSummary, funnel []string) error {
	fmt.Fprintf(c.out, "\n=== ESCENARIO ===\n")
	if c.table {
		c.printProjectionTable(days, funnel)
	}

	firstLabel := fmt.Sprintf("%d días hábiles", summary.DaysToFirstConversion)
	switch summary.DaysToFirstConversion {
	case -1:
		firstLabel = "fuera del horizonte"
	case 0:
		firstLabel = "inmediata (primer día hábil)"
	}

	fmt.Fprintf(c.out, "  Conversiones adicionales: %.1f\n", summary.AdditionalConversions)
	fmt.Fprintf(c.out, "  Primera conversión:       %s\n", firstLabel)
	fmt.Fprintf(c.out, "  Receita estimada:         R$ %.2f\n", summary.EstimatedRevenue)
	fmt.Fprintln(c.out)
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(snapshot []domain.Deal, days []domain.DailyProjection, funnel []string, terminal string, converted float64) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d deals | %dd | %s +%.1f", now, len(snapshot), len(days), terminal, converted)

	// Ocupación por etapa al final del horizonte.
	last := days[len(days)-1]
	for _, stage := range funnel {
		if stage == terminal {
			continue
		}
		fmt.Fprintf(&sb, " | %s %.1f", stage, last.Counts[stage])
	}
	fmt.Fprintln(c.out, sb.String())
}

// printProjectionTable imprime la matriz día × etapa.
func (c *Console) printProjectionTable(days []domain.DailyProjection, funnel []string) {
	table := tablewriter.NewWriter(c.out)

	header := []any{"#", "Fecha", "Día"}
	for _, stage := range funnel {
		header = append(header, stage)
	}
	table.Header(header...)

	for i, day := range days {
		row := []any{
			fmt.Sprintf("%d", i+1),
			day.Date.Format("02/01"),
			day.Date.Format("Mon"),
		}
		for _, stage := range funnel {
			row = append(row, fmt.Sprintf("%.1f", day.Counts[stage]))
		}
		table.Append(row...)
	}
	table.Render()
}

// printStageBreakdown imprime la distribución actual del snapshot.
func (c *Console) printStageBreakdown(snapshot []domain.Deal, funnel []string) {
	counts := make(map[string]int, len(funnel))
	owners := make(map[string]bool)
	for _, d := range snapshot {
		counts[d.Stage]++
		if d.Owner != "" {
			owners[d.Owner] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("  Pipeline actual:")
	for _, stage := range funnel {
		fmt.Fprintf(&sb, " %s:%d", stage, counts[stage])
	}
	fmt.Fprintf(&sb, " | BDRs: %d", len(owners))
	fmt.Fprintln(c.out, sb.String())
}
