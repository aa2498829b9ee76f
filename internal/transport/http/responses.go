package http

import (
	"encoding/base64"

	"datasight/internal/analytics"
	"datasight/internal/dataset"
	"datasight/internal/services"
	v1 "datasight/pkg/contracts/api/v1"
)

// Converters from service results to the v1 wire contracts.

func toColumnInfos(columns []dataset.Column) []v1.ColumnInfo {
	infos := make([]v1.ColumnInfo, len(columns))
	for i, col := range columns {
		infos[i] = v1.ColumnInfo{Name: col.Name, Type: string(col.Type)}
	}
	return infos
}

func toTablePage(page *services.RowsPage) v1.TablePage {
	return v1.TablePage{
		Headers: page.Headers,
		Columns: toColumnInfos(page.Columns),
		Rows:    page.Rows,
		Total:   page.Total,
		Offset:  page.Offset,
		Limit:   page.Limit,
		HasMore: page.HasMore,
	}
}

func toPreviewPage(table *dataset.Table, total int) v1.TablePage {
	return v1.TablePage{
		Headers: table.Headers,
		Columns: toColumnInfos(table.Columns),
		Rows:    table.Rows,
		Total:   total,
		Limit:   len(table.Rows),
		HasMore: len(table.Rows) < total,
	}
}

func toChartInfo(img services.ChartImage) v1.ChartInfo {
	return v1.ChartInfo{
		Kind:     img.Kind,
		Category: img.Category,
		Value:    img.Value,
		Image:    base64.StdEncoding.EncodeToString(img.PNG),
	}
}

func toChartInfos(images []services.ChartImage) []v1.ChartInfo {
	if len(images) == 0 {
		return nil
	}
	infos := make([]v1.ChartInfo, len(images))
	for i, img := range images {
		infos[i] = toChartInfo(img)
	}
	return infos
}

func toSummaryData(summary *analytics.Summary) v1.SummaryData {
	data := v1.SummaryData{
		RowCount:        summary.RowCount,
		ColumnCount:     summary.ColumnCount,
		NumericColumns:  summary.NumericColumns,
		TextColumns:     summary.TextColumns,
		DatetimeColumns: summary.DatetimeColumns,
		TotalMissing:    summary.TotalMissing,
		Completeness:    summary.Completeness,
		Columns:         make([]v1.ColumnStats, len(summary.Columns)),
	}
	for i, col := range summary.Columns {
		stats := v1.ColumnStats{
			Name:         col.Name,
			Type:         string(col.Type),
			Nulls:        col.Nulls,
			Unique:       col.Unique,
			Completeness: col.Completeness,
		}
		if col.Numeric != nil {
			stats.Numeric = &v1.NumericColumnStats{
				Count:    col.Numeric.Count,
				Sum:      col.Numeric.Sum,
				Mean:     col.Numeric.Mean,
				Min:      col.Numeric.Min,
				Max:      col.Numeric.Max,
				Median:   col.Numeric.Median,
				StdDev:   col.Numeric.StdDev,
				Outliers: col.Numeric.Outliers,
			}
		}
		if col.Text != nil {
			values := make([]v1.ValueCount, len(col.Text.TopValues))
			for j, vc := range col.Text.TopValues {
				values[j] = v1.ValueCount{Value: vc.Value, Count: vc.Count}
			}
			stats.Text = &v1.TextColumnStats{TopValues: values}
		}
		if col.Datetime != nil {
			stats.Datetime = &v1.DatetimeColumnStats{
				Count: col.Datetime.Count,
				Min:   col.Datetime.Min,
				Max:   col.Datetime.Max,
			}
		}
		data.Columns[i] = stats
	}
	return data
}
