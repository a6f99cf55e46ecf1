package gsheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ClientOptions carries the service-account credentials. CredentialsJSON wins
// over CredentialsPath when both are set.
type ClientOptions struct {
	CredentialsPath string
	CredentialsJSON string
}

// Client opens spreadsheets through the Google Sheets v4 API. A fresh API
// service is created per Open call: each top-level sync operation runs on its
// own short-lived session.
type Client struct {
	opts ClientOptions
}

func NewClient(opts ClientOptions) *Client {
	return &Client{opts: opts}
}

func (c *Client) Open(ctx context.Context, spreadsheetID string) (Document, error) {
	if spreadsheetID == "" {
		return nil, errors.New("gsheets: spreadsheet id is required")
	}

	var clientOpts []option.ClientOption
	if c.opts.CredentialsJSON != "" {
		clientOpts = append(clientOpts, option.WithCredentialsJSON([]byte(c.opts.CredentialsJSON)))
	} else if c.opts.CredentialsPath != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(c.opts.CredentialsPath))
	}

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "gsheets: create service")
	}

	doc := &googleDocument{svc: svc, spreadsheetID: spreadsheetID}
	if err := doc.refresh(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

type googleDocument struct {
	svc           *sheets.Service
	spreadsheetID string
	infos         []WorksheetInfo
}

func (d *googleDocument) refresh(ctx context.Context) error {
	ss, err := d.svc.Spreadsheets.Get(d.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return errors.Wrap(err, "gsheets: get spreadsheet")
	}
	infos := make([]WorksheetInfo, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		info := WorksheetInfo{
			Title:   sh.Properties.Title,
			SheetID: sh.Properties.SheetId,
		}
		if sh.Properties.GridProperties != nil {
			info.ColumnCount = sh.Properties.GridProperties.ColumnCount
		}
		infos = append(infos, info)
	}
	d.infos = infos
	RefreshTitleCache(infos)
	return nil
}

func (d *googleDocument) ListWorksheets(ctx context.Context) ([]WorksheetInfo, error) {
	if err := d.refresh(ctx); err != nil {
		return nil, err
	}
	return d.infos, nil
}

func (d *googleDocument) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	for _, info := range d.infos {
		if info.Title == title {
			return &googleWorksheet{doc: d, info: info}, nil
		}
	}
	// Titles drift between enumerations; retry once with fresh metadata.
	if err := d.refresh(ctx); err != nil {
		return nil, err
	}
	for _, info := range d.infos {
		if info.Title == title {
			return &googleWorksheet{doc: d, info: info}, nil
		}
	}
	return nil, errors.Errorf("gsheets: worksheet %q not found", title)
}

func (d *googleDocument) BatchApply(ctx context.Context, requests []Request) error {
	if len(requests) == 0 {
		return nil
	}
	payload := make([]*sheets.Request, 0, len(requests))
	for _, req := range requests {
		payload = append(payload, toRepeatCell(req))
	}
	_, err := d.svc.Spreadsheets.BatchUpdate(d.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: payload,
	}).Context(ctx).Do()
	return errors.Wrap(err, "gsheets: batch update")
}

func toRepeatCell(req Request) *sheets.Request {
	cell := &sheets.CellData{}
	var fields []string

	if req.Value != nil {
		cell.UserEnteredValue = &sheets.ExtendedValue{StringValue: req.Value}
		fields = append(fields, "userEnteredValue")
	}
	if req.Note != nil {
		cell.Note = *req.Note
		fields = append(fields, "note")
	}
	if req.Style != nil {
		format := &sheets.TextFormat{}
		if req.Style.FontSize > 0 {
			format.FontSize = req.Style.FontSize
			fields = append(fields, "userEnteredFormat.textFormat.fontSize")
		}
		if req.Style.LinkURI != "" {
			format.Link = &sheets.Link{Uri: req.Style.LinkURI}
			fields = append(fields, "userEnteredFormat.textFormat.link")
		}
		if req.Style.Foreground != nil {
			format.ForegroundColor = &sheets.Color{
				Red:   req.Style.Foreground.Red,
				Green: req.Style.Foreground.Green,
				Blue:  req.Style.Foreground.Blue,
			}
			fields = append(fields, "userEnteredFormat.textFormat.foregroundColor")
		}
		cell.UserEnteredFormat = &sheets.CellFormat{TextFormat: format}
	}

	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          req.SheetID,
				StartRowIndex:    req.StartRow,
				EndRowIndex:      req.EndRow,
				StartColumnIndex: req.StartCol,
				EndColumnIndex:   req.EndCol,
			},
			Cell:   cell,
			Fields: strings.Join(fields, ","),
		},
	}
}

type googleWorksheet struct {
	doc  *googleDocument
	info WorksheetInfo
}

func (w *googleWorksheet) Title() string      { return w.info.Title }
func (w *googleWorksheet) SheetID() int64     { return w.info.SheetID }
func (w *googleWorksheet) ColumnCount() int64 { return w.info.ColumnCount }

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func (w *googleWorksheet) ReadAllValues(ctx context.Context) ([][]string, error) {
	resp, err := w.doc.svc.Spreadsheets.Values.Get(w.doc.spreadsheetID, quoteTitle(w.info.Title)).
		Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "gsheets: read worksheet %q", w.info.Title)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, cellString(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (w *googleWorksheet) ReadRow(ctx context.Context, row int) ([]string, error) {
	rng := fmt.Sprintf("%s!%d:%d", quoteTitle(w.info.Title), row, row)
	resp, err := w.doc.svc.Spreadsheets.Values.Get(w.doc.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "gsheets: read row %d of %q", row, w.info.Title)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		values = append(values, cellString(cell))
	}
	return values, nil
}

func (w *googleWorksheet) ReadColumn(ctx context.Context, col int) ([]string, error) {
	letter := ColumnLetter(col)
	rng := quoteTitle(w.info.Title) + "!" + letter + ":" + letter
	resp, err := w.doc.svc.Spreadsheets.Values.Get(w.doc.spreadsheetID, rng).
		MajorDimension("COLUMNS").Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "gsheets: read column %s of %q", letter, w.info.Title)
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		values = append(values, cellString(cell))
	}
	return values, nil
}

func (w *googleWorksheet) ReadCell(ctx context.Context, row, col int) (string, error) {
	addr := RowColToA1(row, col)
	rng := quoteTitle(w.info.Title) + "!" + addr + ":" + addr
	resp, err := w.doc.svc.Spreadsheets.Values.Get(w.doc.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", errors.Wrapf(err, "gsheets: read cell %s of %q", addr, w.info.Title)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return cellString(resp.Values[0][0]), nil
}

func (w *googleWorksheet) WriteCell(ctx context.Context, row, col int, value string) error {
	addr := RowColToA1(row, col)
	rng := quoteTitle(w.info.Title) + "!" + addr + ":" + addr
	_, err := w.doc.svc.Spreadsheets.Values.Update(w.doc.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return errors.Wrapf(err, "gsheets: write cell %s of %q", addr, w.info.Title)
}

func (w *googleWorksheet) AppendRow(ctx context.Context, values []string) error {
	raw := make([]interface{}, len(values))
	for i, v := range values {
		raw[i] = v
	}
	_, err := w.doc.svc.Spreadsheets.Values.Append(
		w.doc.spreadsheetID,
		quoteTitle(w.info.Title)+"!A:ZZ",
		&sheets.ValueRange{Values: [][]interface{}{raw}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return errors.Wrapf(err, "gsheets: append row to %q", w.info.Title)
}

func (w *googleWorksheet) ApplyNote(ctx context.Context, row, col int, note string) error {
	return w.doc.BatchApply(ctx, []Request{{
		SheetID:  w.info.SheetID,
		StartRow: int64(row - 1),
		EndRow:   int64(row),
		StartCol: int64(col - 1),
		EndCol:   int64(col),
		Note:     &note,
	}})
}

func (w *googleWorksheet) ApplyFormat(ctx context.Context, startRow, endRow, startCol, endCol int, style TextStyle) error {
	return w.doc.BatchApply(ctx, []Request{{
		SheetID:  w.info.SheetID,
		StartRow: int64(startRow - 1),
		EndRow:   int64(endRow),
		StartCol: int64(startCol - 1),
		EndCol:   int64(endCol),
		Style:    &style,
	}})
}

func cellString(cell interface{}) string {
	switch t := cell.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// The values API returns numbers for unformatted numeric cells.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
