package monday

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strconv"
	"strings"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
	"github.com/custodia-labs/snowreport/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.TicketSource = (*Source)(nil)

// Options selects the board and the columns that qualify a ticket.
type Options struct {
	BoardID         string
	StatusColumn    string
	DateColumn      string
	CloseDateColumn string
	StatusLabel     string

	// MaxItems caps the number of tickets returned; zero means no cap.
	MaxItems int

	// PageLimit overrides DefaultPageLimit.
	PageLimit int
}

// OptionsFromSettings maps board and run settings to connector options.
func OptionsFromSettings(s domain.Settings) Options {
	return Options{
		BoardID:         s.Board.ID,
		StatusColumn:    s.Board.StatusColumn,
		DateColumn:      s.Board.DateColumn,
		CloseDateColumn: s.Board.CloseDateColumn,
		StatusLabel:     s.Board.StatusLabel,
		MaxItems:        s.Run.MaxItems,
	}
}

// Source lists resolved tickets from a board.
type Source struct {
	client *Client
	opts   Options
	log    *slog.Logger
}

// NewSource creates a ticket source.
func NewSource(client *Client, opts Options, log *slog.Logger) *Source {
	if opts.PageLimit <= 0 {
		opts.PageLimit = DefaultPageLimit
	}
	if log == nil {
		log = logger.New()
	}
	return &Source{client: client, opts: opts, log: log}
}

// ListTickets returns the board's tickets whose status matches the required
// label and whose open date falls in month. Tickets without attachments are skipped.
func (s *Source) ListTickets(ctx context.Context, month string) ([]domain.TicketRecord, error) {
	if month == "" {
		return nil, fmt.Errorf("%w: month is required", domain.ErrInvalidInput)
	}

	statusIdx, err := s.StatusIndex(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug("status label resolved", "label", s.opts.StatusLabel, "index", statusIdx)

	items, err := s.allItems(ctx)
	if err != nil {
		return nil, err
	}

	var tickets []domain.TicketRecord
	for _, it := range items {
		if !s.qualifies(it, month, statusIdx) {
			continue
		}
		if len(it.Assets) == 0 {
			s.log.Debug("skipping ticket without attachments", "ticket_id", it.ID, "name", it.Name)
			continue
		}
		tickets = append(tickets, s.toRecord(it))
		if s.opts.MaxItems > 0 && len(tickets) >= s.opts.MaxItems {
			s.log.Info("max items reached", "max_items", s.opts.MaxItems)
			break
		}
	}

	s.log.Info("tickets listed", "month", month, "board_items", len(items), "tickets", len(tickets))
	return tickets, nil
}

// VerifyTickets re-reads the whole board and returns qualifying tickets with
// attachments that are not in found.
func (s *Source) VerifyTickets(ctx context.Context, month string, found []domain.TicketRecord) ([]domain.TicketRecord, error) {
	items, err := s.allItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	seen := make(map[string]bool, len(found))
	for _, t := range found {
		seen[t.ID] = true
	}

	var missing []domain.TicketRecord
	qualifying := 0
	for _, it := range items {
		if !s.qualifies(it, month, -1) || len(it.Assets) == 0 {
			continue
		}
		qualifying++
		if !seen[it.ID] {
			missing = append(missing, s.toRecord(it))
		}
	}

	s.log.Debug("verification complete", "month", month, "found", len(found), "qualifying", qualifying, "missing", len(missing))
	return missing, nil
}

// StatusIndex resolves the required status label to its index on the status column.
func (s *Source) StatusIndex(ctx context.Context) (int, error) {
	var data statusColumnData
	vars := map[string]any{
		"boardId": []string{s.opts.BoardID},
		"columns": []string{s.opts.StatusColumn},
	}
	if err := s.client.Query(ctx, statusColumnQuery, vars, &data); err != nil {
		return 0, fmt.Errorf("get status column: %w", err)
	}
	if len(data.Boards) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrBoardNotFound, s.opts.BoardID)
	}
	if len(data.Boards[0].Columns) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrStatusColumnNotFound, s.opts.StatusColumn)
	}
	return labelIndex(data.Boards[0].Columns[0].SettingsStr, s.opts.StatusLabel)
}

// labelIndex finds label (case-insensitive) in a status column's settings_str.
func labelIndex(settingsStr, label string) (int, error) {
	var settings statusSettings
	if err := json.Unmarshal([]byte(settingsStr), &settings); err != nil {
		return 0, fmt.Errorf("decode status settings: %w", err)
	}
	for idx, l := range settings.Labels {
		if strings.EqualFold(l, label) {
			n, err := strconv.Atoi(idx)
			if err != nil {
				return 0, fmt.Errorf("status index %q: %w", idx, err)
			}
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrStatusLabelNotFound, label)
}

// allItems pages through every item on the board.
func (s *Source) allItems(ctx context.Context) ([]item, error) {
	vars := map[string]any{
		"boardId": []string{s.opts.BoardID},
		"limit":   s.opts.PageLimit,
		"columns": s.columns(),
	}

	var first itemsPageData
	if err := s.client.Query(ctx, itemsPageQuery, vars, &first); err != nil {
		return nil, fmt.Errorf("get items page: %w", err)
	}
	if len(first.Boards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, s.opts.BoardID)
	}

	page := first.Boards[0].ItemsPage
	items := page.Items
	cursor := page.Cursor
	pages := 1

	for cursor != "" {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		var next nextItemsPageData
		vars := map[string]any{
			"cursor":  cursor,
			"limit":   s.opts.PageLimit,
			"columns": s.columns(),
		}
		if err := s.client.Query(ctx, nextItemsPageQuery, vars, &next); err != nil {
			return nil, fmt.Errorf("get next items page: %w", err)
		}
		items = append(items, next.NextItemsPage.Items...)
		cursor = next.NextItemsPage.Cursor
		pages++
	}

	s.log.Debug("board items fetched", "board_id", s.opts.BoardID, "items", len(items), "pages", pages)
	return items, nil
}

func (s *Source) columns() []string {
	cols := []string{s.opts.DateColumn, s.opts.StatusColumn}
	if s.opts.CloseDateColumn != "" {
		cols = append(cols, s.opts.CloseDateColumn)
	}
	return cols
}

// qualifies matches the status by label text, or by index when statusIdx >= 0,
// and the month by substring of the open date.
func (s *Source) qualifies(it item, month string, statusIdx int) bool {
	status, ok := s.value(it, s.opts.StatusColumn)
	if !ok {
		return false
	}
	label := status.Text
	if label == "" {
		label = status.Label
	}
	matched := label != "" && strings.EqualFold(label, s.opts.StatusLabel)
	if !matched && statusIdx >= 0 && status.Index != nil {
		matched = *status.Index == statusIdx
	}
	if !matched {
		return false
	}

	open, ok := s.value(it, s.opts.DateColumn)
	return ok && open.Text != "" && strings.Contains(open.Text, month)
}

func (s *Source) value(it item, columnID string) (columnValue, bool) {
	for _, cv := range it.ColumnValues {
		if cv.ID == columnID {
			return cv, true
		}
	}
	return columnValue{}, false
}

func (s *Source) toRecord(it item) domain.TicketRecord {
	rec := domain.TicketRecord{
		ID:   it.ID,
		Name: it.Name,
	}
	if v, ok := s.value(it, s.opts.StatusColumn); ok {
		rec.Status = v.Text
		if rec.Status == "" {
			rec.Status = v.Label
		}
	}
	if v, ok := s.value(it, s.opts.DateColumn); ok {
		rec.OpenDate = v.Text
	}
	if s.opts.CloseDateColumn != "" {
		if v, ok := s.value(it, s.opts.CloseDateColumn); ok {
			rec.CloseDate = v.Text
		}
	}

	type key struct{ id, name string }
	seen := make(map[key]bool, len(it.Assets))
	for _, a := range it.Assets {
		k := key{a.ID, a.Name}
		if seen[k] {
			continue
		}
		seen[k] = true
		rec.Attachments = append(rec.Attachments, toReference(it.ID, a))
	}
	return rec
}

// toReference prefers the pre-signed public URL, which needs no API token.
func toReference(ticketID string, a asset) domain.AttachmentReference {
	url := a.PublicURL
	if url == "" {
		url = a.URL
	}
	ext := strings.TrimPrefix(strings.ToLower(a.FileExtension), ".")
	ref := domain.AttachmentReference{
		TicketID:  ticketID,
		AssetID:   a.ID,
		URL:       url,
		Filename:  a.Name,
		Extension: ext,
	}
	if ext != "" {
		ref.MIMEHint = mime.TypeByExtension("." + ext)
	}
	return ref
}
