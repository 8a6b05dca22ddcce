package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"honeypot-api/internal/domain"
)

// IntelligenceRepository archiva reportes finales de sesiones terminadas.
// No guarda estado de sesiones vivas: el store sigue siendo in-memory.
type IntelligenceRepository interface {
	SaveReport(ctx context.Context, report domain.FinalReport) error
	ListBySessionID(ctx context.Context, sessionID string) ([]domain.FinalReport, error)
}

// PgIntelligenceRepository implementa IntelligenceRepository usando pgxpool.
type PgIntelligenceRepository struct {
	pool *pgxpool.Pool
}

func NewPgIntelligenceRepository(pool *pgxpool.Pool) *PgIntelligenceRepository {
	return &PgIntelligenceRepository{pool: pool}
}

func (r *PgIntelligenceRepository) SaveReport(ctx context.Context, report domain.FinalReport) error {
	const query = `
		INSERT INTO intelligence_reports
			(id, session_id, scam_detected, total_messages,
			 bank_accounts, upi_ids, phone_numbers, phishing_urls,
			 agent_notes, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		uuid.NewString(),
		report.SessionID,
		report.ScamDetected,
		report.TotalMessages,
		report.Intelligence.BankAccounts,
		report.Intelligence.UPIIDs,
		report.Intelligence.PhoneNumbers,
		report.Intelligence.PhishingURLs,
		report.AgentNotes,
		report.StartedAt,
		report.EndedAt,
	)
	return err
}

func (r *PgIntelligenceRepository) ListBySessionID(ctx context.Context, sessionID string) ([]domain.FinalReport, error) {
	const query = `
		SELECT session_id, scam_detected, total_messages,
		       bank_accounts, upi_ids, phone_numbers, phishing_urls,
		       agent_notes, started_at, ended_at
		FROM intelligence_reports
		WHERE session_id = $1
		ORDER BY ended_at ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.FinalReport
	for rows.Next() {
		var report domain.FinalReport
		err = rows.Scan(
			&report.SessionID,
			&report.ScamDetected,
			&report.TotalMessages,
			&report.Intelligence.BankAccounts,
			&report.Intelligence.UPIIDs,
			&report.Intelligence.PhoneNumbers,
			&report.Intelligence.PhishingURLs,
			&report.AgentNotes,
			&report.StartedAt,
			&report.EndedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}
