package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xiaot623/replyflow/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS marketplaces (
			marketplace_id TEXT PRIMARY KEY,
			seller_id TEXT NOT NULL,
			name TEXT,
			kill_switch_active INTEGER NOT NULL DEFAULT 0,
			kill_switch_reason TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			review_id TEXT PRIMARY KEY,
			marketplace_id TEXT NOT NULL,
			external_id TEXT NOT NULL,
			product_external_id TEXT NOT NULL,
			product_offer_id TEXT,
			product_name TEXT,
			author_name TEXT,
			text TEXT NOT NULL,
			rating INTEGER NOT NULL DEFAULT 0,
			is_answered INTEGER NOT NULL DEFAULT 0,
			fingerprint TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (marketplace_id) REFERENCES marketplaces(marketplace_id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_external ON reviews(marketplace_id, external_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_fingerprint ON reviews(marketplace_id, fingerprint)`,
		`CREATE TABLE IF NOT EXISTS questions (
			question_id TEXT PRIMARY KEY,
			marketplace_id TEXT NOT NULL,
			external_id TEXT NOT NULL,
			product_external_id TEXT NOT NULL,
			product_offer_id TEXT,
			product_name TEXT,
			author_name TEXT,
			text TEXT NOT NULL,
			is_answered INTEGER NOT NULL DEFAULT 0,
			fingerprint TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (marketplace_id) REFERENCES marketplaces(marketplace_id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_questions_external ON questions(marketplace_id, external_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_questions_fingerprint ON questions(marketplace_id, fingerprint)`,
		`CREATE TABLE IF NOT EXISTS replies (
			reply_id TEXT PRIMARY KEY,
			marketplace_id TEXT NOT NULL,
			review_id TEXT,
			question_id TEXT,
			content TEXT NOT NULL,
			tone TEXT,
			mode TEXT NOT NULL DEFAULT 'manual',
			status TEXT NOT NULL,
			error_message TEXT,
			scheduled_at DATETIME,
			can_cancel_until DATETIME,
			published_at DATETIME,
			outcome_reported_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (marketplace_id) REFERENCES marketplaces(marketplace_id),
			FOREIGN KEY (review_id) REFERENCES reviews(review_id),
			FOREIGN KEY (question_id) REFERENCES questions(question_id),
			CHECK ((review_id IS NULL) != (question_id IS NULL))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_replies_status_created ON replies(marketplace_id, status, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_replies_review ON replies(review_id)`,
		`CREATE INDEX IF NOT EXISTS idx_replies_question ON replies(question_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Add new columns for existing DBs (SQLite has limited ALTER TABLE support).
	if err := s.ensureColumn("replies", "outcome_reported_at", "ALTER TABLE replies ADD COLUMN outcome_reported_at DATETIME"); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) ensureColumn(tableName, columnName, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(ddl)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateMarketplace registers a seller account.
func (s *SQLiteStore) CreateMarketplace(ctx context.Context, m *domain.Marketplace) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO marketplaces (marketplace_id, seller_id, name, kill_switch_active, kill_switch_reason, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.MarketplaceID, m.SellerID, m.Name, m.KillSwitchActive, nullString(m.KillSwitchReason), m.CreatedAt)
	return err
}

// GetMarketplace retrieves a marketplace by ID.
func (s *SQLiteStore) GetMarketplace(ctx context.Context, marketplaceID string) (*domain.Marketplace, error) {
	var m domain.Marketplace
	var name, reason sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT marketplace_id, seller_id, name, kill_switch_active, kill_switch_reason, created_at FROM marketplaces WHERE marketplace_id = ?`,
		marketplaceID).Scan(&m.MarketplaceID, &m.SellerID, &name, &m.KillSwitchActive, &reason, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if name.Valid {
		m.Name = name.String
	}
	if reason.Valid {
		m.KillSwitchReason = reason.String
	}
	return &m, nil
}

// SetKillSwitch flips the marketplace automation flag.
func (s *SQLiteStore) SetKillSwitch(ctx context.Context, marketplaceID string, active bool, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE marketplaces SET kill_switch_active = ?, kill_switch_reason = ? WHERE marketplace_id = ?`,
		active, nullString(reason), marketplaceID)
	return err
}

// UpsertReview inserts a newly observed review or refreshes one already known
// by external id. A review with an unseen external id but a known content
// fingerprint is skipped. Returns true when a new row was inserted.
func (s *SQLiteStore) UpsertReview(ctx context.Context, review *domain.Review, fingerprint string) (bool, error) {
	var existingID string
	err := s.db.QueryRowContext(ctx,
		`SELECT review_id FROM reviews WHERE marketplace_id = ? AND external_id = ?`,
		review.MarketplaceID, review.ExternalID).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	if err == nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE reviews SET is_answered = ?, product_name = ?, product_offer_id = ? WHERE review_id = ?`,
			review.IsAnswered, nullString(review.ProductName), nullString(review.ProductOfferID), existingID)
		if err == nil {
			review.ReviewID = existingID
		}
		return false, err
	}

	var dup int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reviews WHERE marketplace_id = ? AND fingerprint = ?`,
		review.MarketplaceID, fingerprint).Scan(&dup)
	if err != nil {
		return false, err
	}
	if dup > 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reviews (review_id, marketplace_id, external_id, product_external_id, product_offer_id, product_name, author_name, text, rating, is_answered, fingerprint, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		review.ReviewID, review.MarketplaceID, review.ExternalID, review.ProductExternalID,
		nullString(review.ProductOfferID), nullString(review.ProductName), nullString(review.AuthorName),
		review.Text, review.Rating, review.IsAnswered, fingerprint, review.CreatedAt)
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpsertQuestion mirrors UpsertReview for questions.
func (s *SQLiteStore) UpsertQuestion(ctx context.Context, question *domain.Question, fingerprint string) (bool, error) {
	var existingID string
	err := s.db.QueryRowContext(ctx,
		`SELECT question_id FROM questions WHERE marketplace_id = ? AND external_id = ?`,
		question.MarketplaceID, question.ExternalID).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	if err == nil {
		_, err = s.db.ExecContext(ctx,
			`UPDATE questions SET is_answered = ?, product_name = ?, product_offer_id = ? WHERE question_id = ?`,
			question.IsAnswered, nullString(question.ProductName), nullString(question.ProductOfferID), existingID)
		if err == nil {
			question.QuestionID = existingID
		}
		return false, err
	}

	var dup int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM questions WHERE marketplace_id = ? AND fingerprint = ?`,
		question.MarketplaceID, fingerprint).Scan(&dup)
	if err != nil {
		return false, err
	}
	if dup > 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (question_id, marketplace_id, external_id, product_external_id, product_offer_id, product_name, author_name, text, is_answered, fingerprint, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		question.QuestionID, question.MarketplaceID, question.ExternalID, question.ProductExternalID,
		nullString(question.ProductOfferID), nullString(question.ProductName), nullString(question.AuthorName),
		question.Text, question.IsAnswered, fingerprint, question.CreatedAt)
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetReview retrieves a review by ID.
func (s *SQLiteStore) GetReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT review_id, marketplace_id, external_id, product_external_id, product_offer_id, product_name, author_name, text, rating, is_answered, created_at
		 FROM reviews WHERE review_id = ?`, reviewID)
	return scanReview(row)
}

// GetQuestion retrieves a question by ID.
func (s *SQLiteStore) GetQuestion(ctx context.Context, questionID string) (*domain.Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT question_id, marketplace_id, external_id, product_external_id, product_offer_id, product_name, author_name, text, is_answered, created_at
		 FROM questions WHERE question_id = ?`, questionID)
	return scanQuestion(row)
}

// ListUnansweredReviews returns unanswered reviews, oldest first.
func (s *SQLiteStore) ListUnansweredReviews(ctx context.Context, marketplaceID string, limit int) ([]domain.Review, error) {
	query := `SELECT review_id, marketplace_id, external_id, product_external_id, product_offer_id, product_name, author_name, text, rating, is_answered, created_at
		 FROM reviews WHERE marketplace_id = ? AND is_answered = 0 ORDER BY created_at ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query, marketplaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}

// ListUnansweredQuestions returns unanswered questions, oldest first.
func (s *SQLiteStore) ListUnansweredQuestions(ctx context.Context, marketplaceID string, limit int) ([]domain.Question, error) {
	query := `SELECT question_id, marketplace_id, external_id, product_external_id, product_offer_id, product_name, author_name, text, is_answered, created_at
		 FROM questions WHERE marketplace_id = ? AND is_answered = 0 ORDER BY created_at ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query, marketplaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// MarkItemAnswered durably flags the target item after a confirmed publish.
func (s *SQLiteStore) MarkItemAnswered(ctx context.Context, kind domain.ItemKind, itemID string) error {
	var query string
	switch kind {
	case domain.ItemKindQuestion:
		query = `UPDATE questions SET is_answered = 1 WHERE question_id = ?`
	default:
		query = `UPDATE reviews SET is_answered = 1 WHERE review_id = ?`
	}
	_, err := s.db.ExecContext(ctx, query, itemID)
	return err
}

// CreateReply creates a new reply in its initial status.
func (s *SQLiteStore) CreateReply(ctx context.Context, reply *domain.Reply) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO replies (reply_id, marketplace_id, review_id, question_id, content, tone, mode, status, scheduled_at, can_cancel_until, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reply.ReplyID, reply.MarketplaceID, nullString(reply.ReviewID), nullString(reply.QuestionID),
		reply.Content, nullString(reply.Tone), reply.Mode, reply.Status,
		nullTime(reply.ScheduledAt), nullTime(reply.CanCancelUntil), reply.CreatedAt, reply.UpdatedAt)
	return err
}

// GetReply retrieves a reply by ID.
func (s *SQLiteStore) GetReply(ctx context.Context, replyID string) (*domain.Reply, error) {
	row := s.db.QueryRowContext(ctx, selectReply+` WHERE reply_id = ?`, replyID)
	r, err := scanReply(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// HasActiveReplyForTarget reports whether a non-terminal reply already
// targets the given item.
func (s *SQLiteStore) HasActiveReplyForTarget(ctx context.Context, kind domain.ItemKind, itemID string) (bool, error) {
	column := "review_id"
	if kind == domain.ItemKindQuestion {
		column = "question_id"
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(1) FROM replies WHERE %s = ? AND status IN (?, ?, ?)`, column),
		itemID, domain.ReplyStatusDrafted, domain.ReplyStatusScheduled, domain.ReplyStatusPublishing).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListScheduledReplies returns scheduled replies, oldest first.
func (s *SQLiteStore) ListScheduledReplies(ctx context.Context, marketplaceID string, limit int) ([]domain.Reply, error) {
	query := selectReply + ` WHERE marketplace_id = ? AND status = ? ORDER BY created_at ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query, marketplaceID, domain.ReplyStatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReplies(rows)
}

// ListActiveTargets returns the item ids that already have a reply in
// publishing or published status. Used as the claim dedup set.
func (s *SQLiteStore) ListActiveTargets(ctx context.Context, marketplaceID string) (map[string]bool, map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT review_id, question_id FROM replies WHERE marketplace_id = ? AND status IN (?, ?)`,
		marketplaceID, domain.ReplyStatusPublishing, domain.ReplyStatusPublished)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	reviewIDs := make(map[string]bool)
	questionIDs := make(map[string]bool)
	for rows.Next() {
		var reviewID, questionID sql.NullString
		if err := rows.Scan(&reviewID, &questionID); err != nil {
			return nil, nil, err
		}
		if reviewID.Valid {
			reviewIDs[reviewID.String] = true
		}
		if questionID.Valid {
			questionIDs[questionID.String] = true
		}
	}
	return reviewIDs, questionIDs, rows.Err()
}

// ListRepliesByStatus returns replies in the given status, oldest first.
func (s *SQLiteStore) ListRepliesByStatus(ctx context.Context, marketplaceID string, status domain.ReplyStatus) ([]domain.Reply, error) {
	rows, err := s.db.QueryContext(ctx,
		selectReply+` WHERE marketplace_id = ? AND status = ? ORDER BY created_at ASC`,
		marketplaceID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReplies(rows)
}

// ScheduleReply promotes a drafted reply to scheduled.
func (s *SQLiteStore) ScheduleReply(ctx context.Context, replyID string, mode domain.ReplyMode, scheduledAt time.Time) (bool, error) {
	return s.conditionalUpdate(ctx,
		`UPDATE replies SET status = ?, mode = ?, scheduled_at = ?, updated_at = ? WHERE reply_id = ? AND status = ?`,
		domain.ReplyStatusScheduled, mode, scheduledAt, time.Now(), replyID, domain.ReplyStatusDrafted)
}

// DemoteReply returns a scheduled reply to drafted for manual review.
func (s *SQLiteStore) DemoteReply(ctx context.Context, replyID string) (bool, error) {
	return s.conditionalUpdate(ctx,
		`UPDATE replies SET status = ?, mode = ?, scheduled_at = NULL, updated_at = ? WHERE reply_id = ? AND status = ?`,
		domain.ReplyStatusDrafted, domain.ReplyModeManual, time.Now(), replyID, domain.ReplyStatusScheduled)
}

// ClaimReply transitions one reply scheduled -> publishing. This is the
// mutual-exclusion boundary: of two racing claimants exactly one sees true.
func (s *SQLiteStore) ClaimReply(ctx context.Context, replyID string) (bool, error) {
	return s.conditionalUpdate(ctx,
		`UPDATE replies SET status = ?, updated_at = ? WHERE reply_id = ? AND status = ?`,
		domain.ReplyStatusPublishing, time.Now(), replyID, domain.ReplyStatusScheduled)
}

// RevertStaleClaims returns publishing replies whose claim went stale back to
// scheduled, so a later claim cycle can pick them up.
func (s *SQLiteStore) RevertStaleClaims(ctx context.Context, marketplaceID string, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE replies SET status = ?, updated_at = ? WHERE marketplace_id = ? AND status = ? AND updated_at < ?`,
		domain.ReplyStatusScheduled, time.Now(), marketplaceID, domain.ReplyStatusPublishing, olderThan)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// RevertAllStaleClaims is the marketplace-agnostic variant used by the
// background sweep.
func (s *SQLiteStore) RevertAllStaleClaims(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE replies SET status = ?, updated_at = ? WHERE status = ? AND updated_at < ?`,
		domain.ReplyStatusScheduled, time.Now(), domain.ReplyStatusPublishing, olderThan)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// MarkReplyFailed fails a non-terminal reply with a machine-readable reason.
func (s *SQLiteStore) MarkReplyFailed(ctx context.Context, replyID string, reason string) (bool, error) {
	return s.conditionalUpdate(ctx,
		`UPDATE replies SET status = ?, error_message = ?, updated_at = ? WHERE reply_id = ? AND status IN (?, ?, ?)`,
		domain.ReplyStatusFailed, reason, time.Now(), replyID,
		domain.ReplyStatusDrafted, domain.ReplyStatusScheduled, domain.ReplyStatusPublishing)
}

// FinishReplyPublished records a confirmed publish outcome exactly once. The
// outcome_reported_at guard makes a duplicate report match zero rows.
func (s *SQLiteStore) FinishReplyPublished(ctx context.Context, replyID string) (bool, error) {
	now := time.Now()
	return s.conditionalUpdate(ctx,
		`UPDATE replies SET status = ?, published_at = ?, outcome_reported_at = ?, updated_at = ? WHERE reply_id = ? AND status = ? AND outcome_reported_at IS NULL`,
		domain.ReplyStatusPublished, now, now, now, replyID, domain.ReplyStatusPublishing)
}

// FinishReplyFailed records a failed publish outcome exactly once.
func (s *SQLiteStore) FinishReplyFailed(ctx context.Context, replyID string, errorMessage string) (bool, error) {
	now := time.Now()
	return s.conditionalUpdate(ctx,
		`UPDATE replies SET status = ?, error_message = ?, outcome_reported_at = ?, updated_at = ? WHERE reply_id = ? AND status = ? AND outcome_reported_at IS NULL`,
		domain.ReplyStatusFailed, errorMessage, now, now, replyID, domain.ReplyStatusPublishing)
}

// DiscardDraft deletes a drafted reply. Drafts are the only replies a user
// may delete.
func (s *SQLiteStore) DiscardDraft(ctx context.Context, replyID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM replies WHERE reply_id = ? AND status = ?`,
		replyID, domain.ReplyStatusDrafted)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SQLiteStore) conditionalUpdate(ctx context.Context, query string, args ...interface{}) (bool, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

const selectReply = `SELECT reply_id, marketplace_id, review_id, question_id, content, tone, mode, status, error_message, scheduled_at, can_cancel_until, published_at, outcome_reported_at, created_at, updated_at FROM replies`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReply(row rowScanner) (*domain.Reply, error) {
	var r domain.Reply
	var reviewID, questionID, tone, errorMessage sql.NullString
	var scheduledAt, canCancelUntil, publishedAt, outcomeReportedAt sql.NullTime
	err := row.Scan(&r.ReplyID, &r.MarketplaceID, &reviewID, &questionID, &r.Content, &tone,
		&r.Mode, &r.Status, &errorMessage, &scheduledAt, &canCancelUntil, &publishedAt,
		&outcomeReportedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if reviewID.Valid {
		r.ReviewID = reviewID.String
	}
	if questionID.Valid {
		r.QuestionID = questionID.String
	}
	if tone.Valid {
		r.Tone = tone.String
	}
	if errorMessage.Valid {
		r.ErrorMessage = errorMessage.String
	}
	if scheduledAt.Valid {
		r.ScheduledAt = &scheduledAt.Time
	}
	if canCancelUntil.Valid {
		r.CanCancelUntil = &canCancelUntil.Time
	}
	if publishedAt.Valid {
		r.PublishedAt = &publishedAt.Time
	}
	if outcomeReportedAt.Valid {
		r.OutcomeReportedAt = &outcomeReportedAt.Time
	}
	return &r, nil
}

func collectReplies(rows *sql.Rows) ([]domain.Reply, error) {
	var replies []domain.Reply
	for rows.Next() {
		r, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		replies = append(replies, *r)
	}
	return replies, rows.Err()
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var r domain.Review
	var offerID, productName, authorName sql.NullString
	err := row.Scan(&r.ReviewID, &r.MarketplaceID, &r.ExternalID, &r.ProductExternalID,
		&offerID, &productName, &authorName, &r.Text, &r.Rating, &r.IsAnswered, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if offerID.Valid {
		r.ProductOfferID = offerID.String
	}
	if productName.Valid {
		r.ProductName = productName.String
	}
	if authorName.Valid {
		r.AuthorName = authorName.String
	}
	return &r, nil
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	var q domain.Question
	var offerID, productName, authorName sql.NullString
	err := row.Scan(&q.QuestionID, &q.MarketplaceID, &q.ExternalID, &q.ProductExternalID,
		&offerID, &productName, &authorName, &q.Text, &q.IsAnswered, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if offerID.Valid {
		q.ProductOfferID = offerID.String
	}
	if productName.Valid {
		q.ProductName = productName.String
	}
	if authorName.Valid {
		q.AuthorName = authorName.String
	}
	return &q, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
