package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nezqt3/MiniAppShopTgBot/internal/domain/models"
	"github.com/nezqt3/MiniAppShopTgBot/internal/repository"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	db           *pgxpool.Pool
	queryTimeout time.Duration
}

func NewPostgres(ctx context.Context, conn string, queryTimeout time.Duration) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := pgxpool.New(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, queryTimeout: queryTimeout}, nil
}

// withTimeout ограничивает каждый запрос к базе, вечных ожиданий быть не должно.
func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.queryTimeout)
}

// wrapStoreErr переводит сетевые и таймаутные ошибки в ErrStoreUnavailable,
// чтобы вызывающие могли отличить повторяемую ошибку от всех остальных.
func wrapStoreErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, repository.ErrStoreUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %v", op, repository.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func (s *Storage) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	const op = "storage.Postgres.SaveUser"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Insert("users").
		Columns("id", "username", "referred_by", "photo_url", "referral_link", "created_at").
		Values(user.ID, user.Username, user.ReferredBy, user.PhotoURL, user.ReferralLink, user.CreatedAt).
		Suffix("RETURNING id, username, referred_by, photo_url, referral_link, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var saved models.User
	err = s.db.QueryRow(ctx, sql, args...).
		Scan(&saved.ID, &saved.Username, &saved.ReferredBy, &saved.PhotoURL, &saved.ReferralLink, &saved.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, fmt.Errorf("%s: %w", op, repository.ErrUserAlreadyExists)
		}

		return models.User{}, wrapStoreErr(op, err)
	}

	return saved, nil
}

func (s *Storage) GetUserByID(ctx context.Context, userID int64) (models.User, error) {
	const op = "storage.Postgres.GetUserByID"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Select("id", "username", "referred_by", "photo_url", "referral_link", "created_at").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	err = s.db.QueryRow(ctx, sql, args...).
		Scan(&user.ID, &user.Username, &user.ReferredBy, &user.PhotoURL, &user.ReferralLink, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, repository.ErrUserNotFound)
		}

		return models.User{}, wrapStoreErr(op, err)
	}

	return user, nil
}

func (s *Storage) UpdateUser(ctx context.Context, userID int64, patch map[string]any) (models.User, error) {
	const op = "storage.Postgres.UpdateUser"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Update("users").
		SetMap(patch).
		Where(squirrel.Eq{"id": userID}).
		Suffix("RETURNING id, username, referred_by, photo_url, referral_link, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	err = s.db.QueryRow(ctx, sql, args...).
		Scan(&user.ID, &user.Username, &user.ReferredBy, &user.PhotoURL, &user.ReferralLink, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, repository.ErrUserNotFound)
		}

		return models.User{}, wrapStoreErr(op, err)
	}

	return user, nil
}

func (s *Storage) GetLastUsers(ctx context.Context, limit int) ([]models.User, error) {
	const op = "storage.Postgres.GetLastUsers"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Select("id", "username", "referred_by", "photo_url", "referral_link", "created_at").
		From("users").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapStoreErr(op, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.ReferredBy, &user.PhotoURL, &user.ReferralLink, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, user)
	}

	return users, nil
}

func (s *Storage) SaveEntry(ctx context.Context, entry models.LedgerEntry) error {
	const op = "storage.Postgres.SaveEntry"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Insert("points").
		Columns("user_id", "count", "for_this", "referenced_user_id", "date").
		Values(entry.UserID, entry.Count, entry.ForThis, entry.ReferencedUserID, entry.Date).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.Exec(ctx, sql, args...)
	if err != nil {
		return wrapStoreErr(op, err)
	}

	return nil
}

func (s *Storage) GetEntries(ctx context.Context, userID int64) ([]models.LedgerEntry, error) {
	const op = "storage.Postgres.GetEntries"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	// порядок вставки: журнал append-only, id растёт монотонно
	sql, args, err := squirrel.Select("id", "user_id", "count", "for_this", "referenced_user_id", "date").
		From("points").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapStoreErr(op, err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Count, &entry.ForThis, &entry.ReferencedUserID, &entry.Date); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *Storage) GetBalance(ctx context.Context, userID int64) (int, error) {
	const op = "storage.Postgres.GetBalance"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Select("COALESCE(SUM(count), 0)").
		From("points").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var balance int
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&balance); err != nil {
		return 0, wrapStoreErr(op, err)
	}

	return balance, nil
}

func (s *Storage) SavePurchase(ctx context.Context, purchase models.Purchase) (models.Purchase, error) {
	const op = "storage.Postgres.SavePurchase"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sql, args, err := squirrel.Insert("purchases").
		Columns("user_id", "name", "count", "address", "size",
			"original_cost", "paid_cost", "points_used", "discount_amount", "date").
		Values(purchase.UserID, purchase.Name, purchase.Count, purchase.Address, purchase.Size,
			purchase.OriginalCost, purchase.PaidCost, purchase.PointsUsed, purchase.DiscountAmount, purchase.Date).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Purchase{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.db.QueryRow(ctx, sql, args...).Scan(&purchase.ID); err != nil {
		return models.Purchase{}, wrapStoreErr(op, err)
	}

	return purchase, nil
}

func (s *Storage) Close() error {
	s.db.Close()
	return nil
}
