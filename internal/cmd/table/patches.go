package table

import (
	"strconv"
	"strings"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/history"
	"github.com/agentstation/tablemerge/pkg/patch"
)

// ImpactToTableData lists every edit of a patch with where it would land.
func ImpactToTableData(impact *patch.Impact) Data {
	rows := make([][]string, 0, len(impact.Resolved)+len(impact.Failed))
	for _, r := range impact.Resolved {
		rows = append(rows, []string{
			strconv.FormatInt(r.Edit.RowID, 10),
			r.Edit.Column,
			r.Current.String(),
			r.Edit.Value,
			SourceName(r.Source),
			"ok",
		})
	}
	for _, f := range impact.Failed {
		rows = append(rows, []string{
			strconv.FormatInt(f.Edit.RowID, 10),
			f.Edit.Column,
			"-",
			f.Edit.Value,
			"-",
			f.Reason,
		})
	}
	return Data{
		Headers:         []string{"Row", "Column", "Current", "New", "File", "Status"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
}

// ExportToTableData lists the files written or failed by an export.
func ExportToTableData(result *patch.ExportResult) Data {
	rows := make([][]string, 0, len(result.Files)+len(result.Errors))
	for _, f := range result.Files {
		status := "written"
		if len(f.Unapplied) > 0 {
			status = strconv.Itoa(len(f.Unapplied)) + " unapplied"
		}
		rows = append(rows, []string{f.Source, f.Output, strconv.Itoa(f.Applied), status})
	}
	for _, e := range result.Errors {
		rows = append(rows, []string{e.Source, "-", "0", e.Message})
	}
	return Data{
		Headers:         []string{"Source", "Output", "Edits", "Status"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

// BatchToTableData lists the outcome of every patch in a batch.
func BatchToTableData(result *tablemerge.BatchResult) Data {
	rows := make([][]string, 0, len(result.Items))
	for _, it := range result.Items {
		family, files, status := "-", "0", "ok"
		if it.Result != nil {
			family = it.Result.Family
			files = strconv.Itoa(len(it.Result.FilesWritten))
			if !it.Result.OK() {
				status = "partial"
			}
		}
		if it.Err != nil {
			status = it.Err.Error()
		}
		rows = append(rows, []string{it.Patch, family, files, status})
	}
	return Data{
		Headers:         []string{"Patch", "Family", "Files", "Status"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
}

// HistoryToTableData lists applied patches, newest last.
func HistoryToTableData(entries []*history.Entry) Data {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Time.Local().Format(constants.TimeFormatHuman),
			e.Family,
			strconv.Itoa(len(e.Patch.Edits)),
			strings.Join(baseNames(e.OutputFiles), ", "),
			e.OutputDir,
		})
	}
	return Data{
		Headers:         []string{"Applied", "Family", "Edits", "Files", "Output Dir"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft, AlignLeft},
	}
}

// UndoToTableData lists restored and skipped files.
func UndoToTableData(result *tablemerge.UndoResult) Data {
	rows := make([][]string, 0, len(result.Restored)+len(result.Skipped))
	for _, p := range result.Restored {
		rows = append(rows, []string{p, "restored"})
	}
	for _, p := range result.Skipped {
		rows = append(rows, []string{p, "no matching member"})
	}
	return Data{
		Headers:         []string{"File", "Status"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = SourceName(p)
	}
	return out
}
