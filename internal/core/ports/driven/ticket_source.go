package driven

import (
	"context"

	"github.com/custodia-labs/snowreport/internal/core/domain"
)

// TicketSource lists the tickets that qualify for a monthly report.
// Qualification (status label, month, attachments present) is the source's concern.
type TicketSource interface {
	// ListTickets returns qualifying tickets for a YYYY-MM month in board order.
	ListTickets(ctx context.Context, month string) ([]domain.TicketRecord, error)

	// VerifyTickets re-reads the whole board and returns qualifying tickets
	// that are missing from found.
	VerifyTickets(ctx context.Context, month string, found []domain.TicketRecord) ([]domain.TicketRecord, error)
}
