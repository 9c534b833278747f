package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/config"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/history"
	"github.com/MarcoPoloResearchLab/healthlog/backend/internal/logging"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newHistoryCommand() *cobra.Command {
	var chartName string
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Print symptom and medication history charts as tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			store, closeStore, err := openRecordStore(appConfig, zap.NewNop())
			if err != nil {
				return err
			}
			defer closeStore() //nolint:errcheck

			controller, err := history.NewController(history.ControllerConfig{
				Source:  store,
				Catalog: history.NewCatalog(appConfig.SymptomKinds, appConfig.MedicationKinds),
				Clock:   time.Now,
				Logger:  logger,
			})
			if err != nil {
				return err
			}

			set, err := controller.Charts(cmd.Context(), chartName)
			if err != nil {
				return err
			}
			return renderCharts(cmd.OutOrStdout(), set.Charts)
		},
	}
	historyCmd.Flags().StringVar(&chartName, "chart", "", fmt.Sprintf("Render only the named chart (default catalog: %s)", chartNames(history.DefaultCatalog())))
	return historyCmd
}

// renderCharts writes one table per chart. Dosage columns show the raw forward-filled dosage
// and the value on the shared 0-10 axis; "-" marks a series without data.
func renderCharts(w io.Writer, charts []history.Chart) error {
	for index, chart := range charts {
		if index > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, titleStyle.Render(chart.Title)); err != nil {
			return err
		}
		if len(chart.Rows) == 0 {
			if _, err := fmt.Fprintln(w, "no records"); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintln(w, chartTable(chart).String()); err != nil {
			return err
		}
	}
	return nil
}

func chartTable(chart history.Chart) *table.Table {
	headers := []string{"Date", chart.Symptom.Kind.Label}
	for _, series := range chart.Medications {
		headers = append(headers, series.Kind.Label+" dose", series.Kind.Label+" scaled")
	}

	rendered := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for rowIndex, row := range chart.Rows {
		cells := []string{row.Date, strconv.Itoa(row.Severity)}
		for seriesIndex, series := range chart.Medications {
			cells = append(cells, strconv.Itoa(series.Dosages[rowIndex]), row.Scaled[seriesIndex].String())
		}
		rendered.Row(cells...)
	}
	return rendered
}

func chartNames(catalog history.Catalog) string {
	definitions := catalog.Charts()
	names := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		names = append(names, definition.Name)
	}
	return strings.Join(names, ", ")
}
