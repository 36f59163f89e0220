package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	if err := RunMigrations(dsn); err != nil {
		logger.Errorf("failed to run migrations: %v", err)
		return nil, err
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() {
	p.pool.Close()
}

// --- UserRepository ---

func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT email, eight_access_token, eight_refresh_token, eight_token_expires_at, eight_user_id FROM users WHERE email = $1`, email)
	var u internal.User
	if err := row.Scan(&u.Email, &u.EightAccessToken, &u.EightRefreshToken, &u.EightTokenExpiresAt, &u.EightUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		p.logger.Errorf("failed to query user: %v", err)
		return nil, err
	}
	return &u, nil
}

// UpsertUser replaces the whole credential row in one statement so the
// access token, refresh token and expiry can never drift apart.
func (p *PostgresStorage) UpsertUser(ctx context.Context, user *internal.User) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO users (email, eight_access_token, eight_refresh_token, eight_token_expires_at, eight_user_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			eight_access_token = EXCLUDED.eight_access_token,
			eight_refresh_token = EXCLUDED.eight_refresh_token,
			eight_token_expires_at = EXCLUDED.eight_token_expires_at,
			eight_user_id = EXCLUDED.eight_user_id`,
		user.Email, user.EightAccessToken, user.EightRefreshToken, user.EightTokenExpiresAt, user.EightUserID)
	if err != nil {
		p.logger.Errorf("failed to upsert user: %v", err)
		return err
	}
	return nil
}

// --- ProfileRepository ---

func (p *PostgresStorage) GetProfile(ctx context.Context, email string) (*internal.TemperatureProfile, error) {
	row := p.pool.QueryRow(ctx, `SELECT email, bed_time, wakeup_time, initial_sleep_level, mid_stage_sleep_level, final_sleep_level, timezone_tz, updated_at FROM user_temperature_profiles WHERE email = $1`, email)
	var tp internal.TemperatureProfile
	if err := row.Scan(&tp.Email, &tp.BedTime, &tp.WakeupTime, &tp.InitialSleepLevel, &tp.MidStageSleepLevel, &tp.FinalSleepLevel, &tp.TimezoneTZ, &tp.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		p.logger.Errorf("failed to query profile: %v", err)
		return nil, err
	}
	return &tp, nil
}

func (p *PostgresStorage) UpsertProfile(ctx context.Context, profile *internal.TemperatureProfile) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO user_temperature_profiles (email, bed_time, wakeup_time, initial_sleep_level, mid_stage_sleep_level, final_sleep_level, timezone_tz, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			bed_time = EXCLUDED.bed_time,
			wakeup_time = EXCLUDED.wakeup_time,
			initial_sleep_level = EXCLUDED.initial_sleep_level,
			mid_stage_sleep_level = EXCLUDED.mid_stage_sleep_level,
			final_sleep_level = EXCLUDED.final_sleep_level,
			timezone_tz = EXCLUDED.timezone_tz,
			updated_at = EXCLUDED.updated_at`,
		profile.Email, profile.BedTime, profile.WakeupTime, profile.InitialSleepLevel, profile.MidStageSleepLevel, profile.FinalSleepLevel, profile.TimezoneTZ, profile.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to upsert profile: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) DeleteProfile(ctx context.Context, email string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM user_temperature_profiles WHERE email = $1`, email)
	if err != nil {
		p.logger.Errorf("failed to delete profile: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) ListProfiles(ctx context.Context) ([]internal.TemperatureProfile, error) {
	rows, err := p.pool.Query(ctx, `SELECT email, bed_time, wakeup_time, initial_sleep_level, mid_stage_sleep_level, final_sleep_level, timezone_tz, updated_at FROM user_temperature_profiles`)
	if err != nil {
		p.logger.Errorf("failed to query profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var profiles []internal.TemperatureProfile
	for rows.Next() {
		var tp internal.TemperatureProfile
		if err := rows.Scan(&tp.Email, &tp.BedTime, &tp.WakeupTime, &tp.InitialSleepLevel, &tp.MidStageSleepLevel, &tp.FinalSleepLevel, &tp.TimezoneTZ, &tp.UpdatedAt); err != nil {
			p.logger.Errorf("failed to scan profile: %v", err)
			return nil, err
		}
		profiles = append(profiles, tp)
	}
	return profiles, rows.Err()
}

// --- Compile-time assertions ---
var _ UserRepository = (*PostgresStorage)(nil)
var _ ProfileRepository = (*PostgresStorage)(nil)
