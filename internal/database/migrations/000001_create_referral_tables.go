package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createReferralTables creates the users, deposits and referral_earnings tables
func createReferralTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_referral_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

				CREATE TABLE IF NOT EXISTS users (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					email VARCHAR(255) NOT NULL UNIQUE,
					referral_code VARCHAR(6) NOT NULL UNIQUE,
					referred_by_code VARCHAR(6),
					balance DECIMAL(20, 2) NOT NULL DEFAULT 0,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_users_email ON users(email);
				CREATE INDEX idx_users_referral_code ON users(referral_code);
				CREATE INDEX idx_users_referred_by_code ON users(referred_by_code);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS deposits (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					user_id UUID NOT NULL REFERENCES users(id),
					amount DECIMAL(20, 2) NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'completed',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_deposits_user_id ON deposits(user_id);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS referral_earnings (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					referrer_id UUID NOT NULL REFERENCES users(id),
					referred_user_id UUID NOT NULL REFERENCES users(id),
					deposit_id UUID NOT NULL REFERENCES deposits(id),
					level SMALLINT NOT NULL,
					percentage DECIMAL(5, 2) NOT NULL,
					amount DECIMAL(20, 2) NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					claimed_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_referral_earnings_referrer_status ON referral_earnings(referrer_id, status);
				CREATE INDEX idx_referral_earnings_deposit_id ON referral_earnings(deposit_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS referral_earnings").Error; err != nil {
				return err
			}
			if err := tx.Exec("DROP TABLE IF EXISTS deposits").Error; err != nil {
				return err
			}
			return tx.Exec("DROP TABLE IF EXISTS users").Error
		},
	}
}
